package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/invoicely/internal/clock"
	invoicedomain "github.com/smallbiznis/invoicely/internal/invoice/domain"
	"github.com/smallbiznis/invoicely/internal/ledgererr"
	"github.com/smallbiznis/invoicely/internal/migration"
	organizationdomain "github.com/smallbiznis/invoicely/internal/organization/domain"
	profiledomain "github.com/smallbiznis/invoicely/internal/profile/domain"
	profilerepository "github.com/smallbiznis/invoicely/internal/profile/repository"
	"github.com/smallbiznis/invoicely/internal/summary/domain"
	"github.com/smallbiznis/invoicely/internal/summary/repository"
	"github.com/smallbiznis/invoicely/internal/summary/service"
	"github.com/smallbiznis/invoicely/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	conn      *gorm.DB
	node      *snowflake.Node
	svc       domain.Service
	profileID snowflake.ID
	seq       int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, migration.AutoMigrate(conn))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	f := &fixture{
		conn: conn,
		node: node,
		svc: service.New(service.Params{
			DB:          conn,
			Log:         zap.NewNop(),
			Clock:       clock.NewFakeClock(time.Date(2024, time.June, 30, 12, 0, 0, 0, time.UTC)),
			Repo:        repository.Provide(),
			ProfileRepo: profilerepository.Provide(),
		}),
	}
	f.profileID = f.newProfile(t, "Maple Consulting")
	return f
}

func (f *fixture) newProfile(t *testing.T, name string) snowflake.ID {
	t.Helper()
	now := time.Now().UTC()
	p := profiledomain.Profile{ID: f.node.Generate(), BusinessName: name, BusinessEmail: name + "@example.com", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, f.conn.Create(&p).Error)
	return p.ID
}

func (f *fixture) newOrg(t *testing.T, profileID snowflake.ID, name string) snowflake.ID {
	t.Helper()
	now := time.Now().UTC()
	o := organizationdomain.Organization{
		ID:          f.node.Generate(),
		ProfileID:   profileID,
		CompanyName: name,
		HourlyRate:  decimal.NewFromInt(100),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, f.conn.Create(&o).Error)
	return o.ID
}

type taxLine struct {
	taxType invoicedomain.TaxType
	amount  string
	region  *string
}

func (f *fixture) newInvoice(t *testing.T, profileID, orgID snowflake.ID, createdAt time.Time, currency, rate, subtotal string, taxes ...taxLine) {
	t.Helper()
	f.seq++

	total := decimal.RequireFromString(subtotal)
	var details []invoicedomain.TaxDetail
	for _, tl := range taxes {
		amount := decimal.RequireFromString(tl.amount)
		total = total.Add(amount)
		details = append(details, invoicedomain.TaxDetail{
			ID:        f.node.Generate(),
			TaxType:   tl.taxType,
			Amount:    amount,
			Region:    tl.region,
			CreatedAt: createdAt,
			UpdatedAt: createdAt,
		})
	}

	inv := invoicedomain.Invoice{
		ID:             f.node.Generate(),
		ProfileID:      profileID,
		OrganizationID: orgID,
		InvoiceNumber:  "INV-" + string(rune('A'+f.seq)),
		Status:         invoicedomain.InvoiceStatusWaiting,
		Subtotal:       decimal.RequireFromString(subtotal),
		Total:          total,
		Currency:       currency,
		ExchangeRate:   decimal.RequireFromString(rate),
		CreatedAt:      createdAt,
		UpdatedAt:      createdAt,
		Taxes:          details,
	}
	require.NoError(t, f.conn.Create(&inv).Error)
}

func day(month time.Month, d int) time.Time {
	return time.Date(2024, month, d, 15, 30, 0, 0, time.UTC)
}

func TestSummaryTwoInvoicesSameMonth(t *testing.T) {
	f := newFixture(t)
	org := f.newOrg(t, f.profileID, "Acme Corp")
	f.newInvoice(t, f.profileID, org, day(time.March, 3), "CAD", "1", "500", taxLine{taxType: invoicedomain.TaxTypeGSTHST, amount: "65"})
	f.newInvoice(t, f.profileID, org, day(time.March, 20), "CAD", "1", "1000", taxLine{taxType: invoicedomain.TaxTypeGSTHST, amount: "130"})

	got, err := f.svc.GetFinancialSummary(context.Background(), f.profileID, "2024-03-01", "2024-03-31")
	require.NoError(t, err)

	assert.Equal(t, domain.Period{StartDate: "2024-03-01", EndDate: "2024-03-31"}, got.Period)
	assert.Equal(t, "1500", got.Income.TotalRevenue.String())
	assert.Equal(t, "195", got.Income.TotalTax.String())
	assert.Equal(t, "1695", got.Income.NetIncome.String())

	require.Len(t, got.Income.MonthlySummary, 1)
	assert.Equal(t, "2024-03", got.Income.MonthlySummary[0].Month)
	assert.True(t, got.Income.MonthlySummary[0].Revenue.Equal(got.Income.TotalRevenue))

	require.Len(t, got.Income.ClientSummary, 1)
	client := got.Income.ClientSummary[0]
	assert.Equal(t, org, client.OrganizationID)
	assert.Equal(t, "Acme Corp", client.OrganizationName)
	assert.True(t, client.TotalBilled.Equal(got.Income.TotalRevenue))
	assert.Equal(t, int64(2), client.InvoiceCount)

	assert.Equal(t, "195", got.Tax.TotalTaxCollected.String())
	require.Len(t, got.Tax.TaxByType, 1)
	assert.Equal(t, int64(2), got.Tax.TaxByType[0].Count)
	require.Len(t, got.Tax.QuarterlySummary, 1)
	assert.Equal(t, "2024-Q1", got.Tax.QuarterlySummary[0].Quarter)
	assert.Equal(t, "1695", got.Tax.QuarterlySummary[0].Amount.String())
}

func TestSummaryRangeBoundsAreInclusiveDays(t *testing.T) {
	f := newFixture(t)
	org := f.newOrg(t, f.profileID, "Acme Corp")
	f.newInvoice(t, f.profileID, org, time.Date(2024, time.February, 29, 23, 59, 0, 0, time.UTC), "CAD", "1", "100")
	f.newInvoice(t, f.profileID, org, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), "CAD", "1", "200")
	f.newInvoice(t, f.profileID, org, time.Date(2024, time.March, 31, 23, 59, 0, 0, time.UTC), "CAD", "1", "300")
	f.newInvoice(t, f.profileID, org, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), "CAD", "1", "400")

	got, err := f.svc.GetFinancialSummary(context.Background(), f.profileID, "2024-03-01", "2024-03-31")
	require.NoError(t, err)
	assert.Equal(t, "500", got.Income.TotalRevenue.String())
}

func TestSummaryGroupsClientsCurrenciesAndRegions(t *testing.T) {
	f := newFixture(t)
	zeta := f.newOrg(t, f.profileID, "Zeta Ltd")
	acme := f.newOrg(t, f.profileID, "Acme Corp")
	on := "ON"

	f.newInvoice(t, f.profileID, zeta, day(time.January, 10), "USD", "1.35", "100",
		taxLine{taxType: invoicedomain.TaxTypeGSTHST, amount: "13", region: &on},
		taxLine{taxType: invoicedomain.TaxTypeCorporateTax, amount: "5"},
	)
	f.newInvoice(t, f.profileID, acme, day(time.April, 2), "CAD", "1", "200",
		taxLine{taxType: invoicedomain.TaxTypeGSTHST, amount: "26", region: &on},
	)

	got, err := f.svc.GetFinancialSummary(context.Background(), f.profileID, "2024-01-01", "2024-06-30")
	require.NoError(t, err)

	require.Len(t, got.Income.ClientSummary, 2)
	assert.Equal(t, "Acme Corp", got.Income.ClientSummary[0].OrganizationName)
	assert.Equal(t, "Zeta Ltd", got.Income.ClientSummary[1].OrganizationName)

	require.Len(t, got.Income.CurrencySummary, 2)
	assert.Equal(t, "CAD", got.Income.CurrencySummary[0].Currency)
	usd := got.Income.CurrencySummary[1]
	assert.Equal(t, "USD", usd.Currency)
	assert.Equal(t, "118", usd.OriginalAmount.String())
	assert.Equal(t, "159.3", usd.ConvertedAmount.String())

	require.Len(t, got.Income.MonthlySummary, 2)
	assert.Equal(t, "2024-01", got.Income.MonthlySummary[0].Month)
	assert.Equal(t, "2024-04", got.Income.MonthlySummary[1].Month)

	require.Len(t, got.Tax.TaxByType, 2)
	assert.Equal(t, "CORPORATE_TAX", got.Tax.TaxByType[0].TaxType)
	assert.Equal(t, "GST_HST", got.Tax.TaxByType[1].TaxType)
	assert.Equal(t, "39", got.Tax.TaxByType[1].Amount.String())
	assert.Equal(t, int64(2), got.Tax.TaxByType[1].Count)

	require.Len(t, got.Tax.TaxByRegion, 2)
	assert.Equal(t, "", got.Tax.TaxByRegion[0].Region)
	assert.Equal(t, "ON", got.Tax.TaxByRegion[1].Region)

	require.Len(t, got.Tax.QuarterlySummary, 2)
	assert.Equal(t, "2024-Q1", got.Tax.QuarterlySummary[0].Quarter)
	assert.Equal(t, "2024-Q2", got.Tax.QuarterlySummary[1].Quarter)
}

func TestSummaryIgnoresOtherProfiles(t *testing.T) {
	f := newFixture(t)
	other := f.newProfile(t, "Birch Studio")
	org := f.newOrg(t, other, "Globex")
	f.newInvoice(t, other, org, day(time.March, 3), "CAD", "1", "999")

	got, err := f.svc.GetFinancialSummary(context.Background(), f.profileID, "2024-01-01", "2024-12-31")
	require.NoError(t, err)
	assert.True(t, got.Income.TotalRevenue.IsZero())
}

func TestSummaryEmptyRange(t *testing.T) {
	f := newFixture(t)

	got, err := f.svc.GetFinancialSummary(context.Background(), f.profileID, "2024-01-01", "2024-01-31")
	require.NoError(t, err)

	assert.True(t, got.Income.TotalRevenue.IsZero())
	assert.True(t, got.Tax.TotalTaxCollected.IsZero())
	assert.NotNil(t, got.Income.MonthlySummary)
	assert.NotNil(t, got.Income.ClientSummary)
	assert.NotNil(t, got.Income.CurrencySummary)
	assert.NotNil(t, got.Tax.TaxByType)
	assert.NotNil(t, got.Tax.TaxByRegion)
	assert.NotNil(t, got.Tax.QuarterlySummary)
	assert.Empty(t, got.Income.MonthlySummary)
}

func TestSummaryDefaultsToYearToDate(t *testing.T) {
	f := newFixture(t)

	got, err := f.svc.GetFinancialSummary(context.Background(), f.profileID, "", "")
	require.NoError(t, err)
	assert.Equal(t, domain.Period{StartDate: "2024-01-01", EndDate: "2024-06-30"}, got.Period)
}

func TestSummaryRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.GetFinancialSummary(ctx, f.profileID, "2024-03-31", "2024-03-01")
	require.ErrorIs(t, err, domain.ErrInvalidRange)
	assert.True(t, ledgererr.IsValidation(err))

	_, err = f.svc.GetFinancialSummary(ctx, f.profileID, "March", "")
	require.ErrorIs(t, err, domain.ErrInvalidStartDate)

	_, err = f.svc.GetFinancialSummary(ctx, f.profileID, "", "2024-13-01")
	require.ErrorIs(t, err, domain.ErrInvalidEndDate)

	_, err = f.svc.GetFinancialSummary(ctx, f.node.Generate(), "2024-01-01", "2024-01-31")
	require.ErrorIs(t, err, profiledomain.ErrNotFound)
}
