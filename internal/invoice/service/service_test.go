package service_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/bwmarrin/snowflake"
	redis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/invoicely/internal/clock"
	"github.com/smallbiznis/invoicely/internal/config"
	"github.com/smallbiznis/invoicely/internal/invoice/domain"
	"github.com/smallbiznis/invoicely/internal/invoice/repository"
	"github.com/smallbiznis/invoicely/internal/invoice/sequence"
	"github.com/smallbiznis/invoicely/internal/invoice/service"
	"github.com/smallbiznis/invoicely/internal/ledgererr"
	"github.com/smallbiznis/invoicely/internal/lock"
	"github.com/smallbiznis/invoicely/internal/migration"
	organizationdomain "github.com/smallbiznis/invoicely/internal/organization/domain"
	organizationrepository "github.com/smallbiznis/invoicely/internal/organization/repository"
	organizationservice "github.com/smallbiznis/invoicely/internal/organization/service"
	profiledomain "github.com/smallbiznis/invoicely/internal/profile/domain"
	profilerepository "github.com/smallbiznis/invoicely/internal/profile/repository"
	profileservice "github.com/smallbiznis/invoicely/internal/profile/service"
	"github.com/smallbiznis/invoicely/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	conn    *gorm.DB
	clock   *clock.FakeClock
	node    *snowflake.Node
	invoice domain.Service
	profile profiledomain.Service
	org     organizationdomain.Service

	profileID snowflake.ID
	orgID     snowflake.ID
}

func newFixture(t *testing.T, gen sequence.Generator) *fixture {
	t.Helper()
	return newLockedFixture(t, gen, nil)
}

func newLockedFixture(t *testing.T, gen sequence.Generator, locker *lock.Locker) *fixture {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, migration.AutoMigrate(conn))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fc := clock.NewFakeClock(time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	profileRepo := profilerepository.Provide()
	orgRepo := organizationrepository.Provide()
	if gen == nil {
		gen = sequence.New()
	}

	profileSvc := profileservice.New(profileservice.Params{DB: conn, Log: log, GenID: node, Clock: fc, Repo: profileRepo})
	orgSvc := organizationservice.New(organizationservice.Params{DB: conn, Log: log, GenID: node, Clock: fc, Repo: orgRepo, ProfileRepo: profileRepo})
	invoiceSvc, err := service.New(service.Params{
		DB:    conn,
		Log:   log,
		GenID: node,
		Clock: fc,
		Config: config.Config{
			Invoice: config.InvoiceConfig{Prefix: "INV", NumberPeriod: "month", MaxAttempts: 3, DefaultCurrency: "CAD"},
			PDF:     config.PDFConfig{FormNumber: "F-1", Revision: "R2"},
		},
		Repo:             repository.Provide(),
		ProfileRepo:      profileRepo,
		OrganizationRepo: orgRepo,
		Sequence:         gen,
		Locker:           locker,
	})
	require.NoError(t, err)

	f := &fixture{conn: conn, clock: fc, node: node, invoice: invoiceSvc, profile: profileSvc, org: orgSvc}
	f.profileID = f.newProfile(t, "Maple Consulting", "owner@maple.ca")
	f.orgID = f.newOrg(t, f.profileID, "Acme Corp")
	return f
}

func (f *fixture) newProfile(t *testing.T, name, email string) snowflake.ID {
	t.Helper()
	p, err := f.profile.Create(context.Background(), profiledomain.CreateProfileRequest{
		BusinessName:         name,
		BusinessEmail:        email,
		BusinessRole:         "Consultant",
		BusinessAddress:      "1 King St",
		BusinessCity:         "Toronto",
		BusinessCountry:      "Canada",
		BusinessGSTHSTNumber: "123456789RT0001",
	})
	require.NoError(t, err)
	return p.ID
}

func (f *fixture) newOrg(t *testing.T, profileID snowflake.ID, name string) snowflake.ID {
	t.Helper()
	o, err := f.org.Create(context.Background(), profileID, organizationdomain.CreateOrganizationRequest{
		CompanyName:            name,
		CompanyEmailForInvoice: "ap@" + slugless(name) + ".com",
		City:                   "Ottawa",
		StateOrProvince:        "ON",
		PostalCode:             "K1A 0B1",
		HourlyRate:             decimal.NewFromInt(125),
		TaxRatePercentage:      decimal.NewFromInt(13),
	})
	require.NoError(t, err)
	return o.ID
}

func slugless(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		if r != ' ' {
			out = append(out, r)
		}
	}
	return string(out)
}

func (f *fixture) count(t *testing.T, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.conn.Table(table).Count(&n).Error)
	return n
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func decPtr(v string) *decimal.Decimal {
	d := dec(v)
	return &d
}

func gstRequest(orgID snowflake.ID, hours string) domain.CreateInvoiceRequest {
	return domain.CreateInvoiceRequest{
		OrganizationID: orgID,
		InvoiceName:    "January work",
		DueDate:        "2024-02-14",
		Items: []domain.ItemInput{
			{Date: "2024-01-10", Description: "Development", Hours: dec(hours)},
		},
		Taxes: []domain.TaxInput{
			{TaxType: domain.TaxTypeGSTHST, Rate: decPtr("13")},
		},
	}
}

func TestCreateComputesTotals(t *testing.T) {
	f := newFixture(t, nil)

	inv, err := f.invoice.Create(context.Background(), f.profileID, gstRequest(f.orgID, "4"))
	require.NoError(t, err)

	assert.Equal(t, "INV2024010001", inv.InvoiceNumber)
	assert.Equal(t, domain.InvoiceStatusWaiting, inv.Status)
	assert.Equal(t, "CAD", inv.Currency)
	require.Len(t, inv.Items, 1)
	assert.True(t, inv.Items[0].Rate.Equal(dec("125")))
	assert.True(t, inv.Items[0].Amount.Equal(dec("500")))
	require.Len(t, inv.Taxes, 1)
	assert.True(t, inv.Taxes[0].Amount.Equal(dec("65")))
	assert.True(t, inv.Subtotal.Equal(dec("500")), "subtotal %s", inv.Subtotal)
	assert.True(t, inv.Total.Equal(dec("565")), "total %s", inv.Total)

	stored, err := f.invoice.GetByID(context.Background(), f.profileID, inv.ID)
	require.NoError(t, err)
	assert.True(t, stored.Total.Equal(dec("565")))
	assert.Len(t, stored.Items, 1)
	assert.Len(t, stored.Taxes, 1)
}

func TestCreateRoundsHalfAwayFromZero(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	org, err := f.org.Create(ctx, f.profileID, organizationdomain.CreateOrganizationRequest{
		CompanyName: "Odd Rate Ltd",
		HourlyRate:  dec("33.33"),
	})
	require.NoError(t, err)

	inv, err := f.invoice.Create(ctx, f.profileID, domain.CreateInvoiceRequest{
		OrganizationID: org.ID,
		Items: []domain.ItemInput{
			{Date: "2024-01-10", Description: "Support", Hours: dec("1.5")},
		},
		Taxes: []domain.TaxInput{
			{TaxType: domain.TaxTypeGSTHST, Rate: decPtr("13")},
			{TaxType: domain.TaxTypeCorporateTax, Amount: decPtr("1.01")},
		},
	})
	require.NoError(t, err)

	// 1.5 * 33.33 = 49.995
	assert.True(t, inv.Subtotal.Equal(dec("50.00")), "subtotal %s", inv.Subtotal)
	assert.True(t, inv.Taxes[0].Amount.Equal(dec("6.50")), "gst %s", inv.Taxes[0].Amount)
	assert.True(t, inv.Taxes[1].Amount.Equal(dec("1.01")), "corporate %s", inv.Taxes[1].Amount)
	assert.True(t, inv.Total.Equal(dec("57.51")), "total %s", inv.Total)
}

func TestCreateKeepsInputPrecision(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	inv, err := f.invoice.Create(ctx, f.profileID, domain.CreateInvoiceRequest{
		OrganizationID: f.orgID,
		Items: []domain.ItemInput{
			{Date: "2024-01-10", Description: "Call", Hours: dec("1.004")},
			{Date: "2024-01-11", Description: "Build", Hours: dec("8")},
		},
		Taxes: []domain.TaxInput{
			{TaxType: domain.TaxTypeGSTHST, Rate: decPtr("12.345")},
		},
	})
	require.NoError(t, err)

	// 1.004 * 125 = 125.50, subtotal 1125.50, tax 1125.50 * 12.345% = 138.943...
	assert.True(t, inv.Items[0].Hours.Equal(dec("1.004")), "hours %s", inv.Items[0].Hours)
	assert.True(t, inv.Items[0].Amount.Equal(dec("125.50")), "amount %s", inv.Items[0].Amount)
	assert.True(t, inv.Subtotal.Equal(dec("1125.50")), "subtotal %s", inv.Subtotal)
	assert.True(t, inv.Taxes[0].Amount.Equal(dec("138.94")), "tax %s", inv.Taxes[0].Amount)
	assert.True(t, inv.Total.Equal(dec("1264.44")), "total %s", inv.Total)

	stored, err := f.invoice.GetByID(ctx, f.profileID, inv.ID)
	require.NoError(t, err)
	var hours []string
	for _, item := range stored.Items {
		hours = append(hours, item.Hours.String())
	}
	assert.Contains(t, hours, "1.004")
	require.Len(t, stored.Taxes, 1)
	assert.True(t, stored.Taxes[0].Rate.Decimal.Equal(dec("12.345")), "rate %s", stored.Taxes[0].Rate.Decimal)
	assert.True(t, stored.Total.Equal(dec("1264.44")))
}

func TestCreateTaxRateOnRoundSubtotal(t *testing.T) {
	f := newFixture(t, nil)

	inv, err := f.invoice.Create(context.Background(), f.profileID, domain.CreateInvoiceRequest{
		OrganizationID: f.orgID,
		Items:          []domain.ItemInput{{Date: "2024-01-10", Description: "Build", Hours: dec("8")}},
		Taxes:          []domain.TaxInput{{TaxType: domain.TaxTypeGSTHST, Rate: decPtr("12.345")}},
	})
	require.NoError(t, err)
	assert.True(t, inv.Taxes[0].Amount.Equal(dec("123.45")), "tax %s", inv.Taxes[0].Amount)
	assert.True(t, inv.Total.Equal(dec("1123.45")), "total %s", inv.Total)
}

func TestCreateWithoutItems(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	inv, err := f.invoice.Create(ctx, f.profileID, domain.CreateInvoiceRequest{
		OrganizationID: f.orgID,
		Taxes:          []domain.TaxInput{{TaxType: domain.TaxTypeGSTHST, Rate: decPtr("13")}},
	})
	require.NoError(t, err)
	assert.Empty(t, inv.Items)
	assert.True(t, inv.Subtotal.IsZero())
	assert.True(t, inv.Taxes[0].Amount.IsZero())
	assert.True(t, inv.Total.IsZero())
	assert.Equal(t, "INV2024010001", inv.InvoiceNumber)

	stored, err := f.invoice.GetByID(ctx, f.profileID, inv.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.Items)
	assert.Empty(t, stored.Items)
}

func TestCreateNumbersSequentiallyWithoutGaps(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		inv, err := f.invoice.Create(ctx, f.profileID, gstRequest(f.orgID, "1"))
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("INV202401%04d", i), inv.InvoiceNumber)
	}

	f.clock.Set(time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC))
	inv, err := f.invoice.Create(ctx, f.profileID, gstRequest(f.orgID, "1"))
	require.NoError(t, err)
	assert.Equal(t, "INV2024020001", inv.InvoiceNumber)
}

func TestCreateValidationLeavesNoRows(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	cases := []struct {
		name string
		req  domain.CreateInvoiceRequest
		want error
	}{
		{"bad hours", domain.CreateInvoiceRequest{OrganizationID: f.orgID, Items: []domain.ItemInput{{Description: "x", Hours: dec("0")}}}, domain.ErrInvalidItemHours},
		{"hours precision", domain.CreateInvoiceRequest{OrganizationID: f.orgID, Items: []domain.ItemInput{{Description: "x", Hours: dec("1.00001")}}}, domain.ErrInvalidItemHours},
		{"tax rate precision", domain.CreateInvoiceRequest{OrganizationID: f.orgID, Items: []domain.ItemInput{{Description: "x", Hours: dec("1")}}, Taxes: []domain.TaxInput{{TaxType: domain.TaxTypeVAT, Rate: decPtr("12.34567")}}}, domain.ErrInvalidTaxRate},
		{"tax amount precision", domain.CreateInvoiceRequest{OrganizationID: f.orgID, Items: []domain.ItemInput{{Description: "x", Hours: dec("1")}}, Taxes: []domain.TaxInput{{TaxType: domain.TaxTypeVAT, Amount: decPtr("1.005")}}}, domain.ErrInvalidTaxAmount},
		{"bad date", domain.CreateInvoiceRequest{OrganizationID: f.orgID, Items: []domain.ItemInput{{Date: "01/02/2024", Description: "x", Hours: dec("1")}}}, domain.ErrInvalidItemDate},
		{"bad tax type", domain.CreateInvoiceRequest{OrganizationID: f.orgID, Items: []domain.ItemInput{{Description: "x", Hours: dec("1")}}, Taxes: []domain.TaxInput{{TaxType: "SALES"}}}, domain.ErrInvalidTaxType},
		{"bad tax rate", domain.CreateInvoiceRequest{OrganizationID: f.orgID, Items: []domain.ItemInput{{Description: "x", Hours: dec("1")}}, Taxes: []domain.TaxInput{{TaxType: domain.TaxTypeVAT, Rate: decPtr("101")}}}, domain.ErrInvalidTaxRate},
		{"bad status", domain.CreateInvoiceRequest{OrganizationID: f.orgID, Status: "PAID", Items: []domain.ItemInput{{Description: "x", Hours: dec("1")}}}, domain.ErrInvalidStatus},
		{"bad currency", domain.CreateInvoiceRequest{OrganizationID: f.orgID, Currency: "dollars", Items: []domain.ItemInput{{Description: "x", Hours: dec("1")}}}, domain.ErrInvalidCurrency},
		{"bad due date", domain.CreateInvoiceRequest{OrganizationID: f.orgID, DueDate: "soon", Items: []domain.ItemInput{{Description: "x", Hours: dec("1")}}}, domain.ErrInvalidDueDate},
		{"missing org", domain.CreateInvoiceRequest{Items: []domain.ItemInput{{Description: "x", Hours: dec("1")}}}, domain.ErrInvalidOrganization},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.invoice.Create(ctx, f.profileID, tc.req)
			require.ErrorIs(t, err, tc.want)
			assert.True(t, ledgererr.IsValidation(err))
		})
	}

	assert.Equal(t, int64(0), f.count(t, "invoices"))
	assert.Equal(t, int64(0), f.count(t, "invoice_items"))
	assert.Equal(t, int64(0), f.count(t, "invoice_taxes"))
}

func TestCreateRejectsForeignOrganization(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	otherProfile := f.newProfile(t, "Other Co", "other@co.ca")
	otherOrg := f.newOrg(t, otherProfile, "Globex")

	_, err := f.invoice.Create(ctx, f.profileID, gstRequest(otherOrg, "1"))
	require.ErrorIs(t, err, organizationdomain.ErrNotFound)
	assert.True(t, ledgererr.IsNotFound(err))

	_, err = f.invoice.Create(ctx, f.node.Generate(), gstRequest(f.orgID, "1"))
	require.ErrorIs(t, err, profiledomain.ErrNotFound)

	assert.Equal(t, int64(0), f.count(t, "invoices"))
}

// fixedGenerator always hands out the same number.
type fixedGenerator struct {
	number string
	calls  int
}

func (g *fixedGenerator) Next(context.Context, *gorm.DB, string, string) (string, error) {
	g.calls++
	return g.number, nil
}

func TestCreateRetriesNumberCollisionThenGivesUp(t *testing.T) {
	gen := &fixedGenerator{number: "INV2024010001"}
	f := newFixture(t, gen)
	ctx := context.Background()

	_, err := f.invoice.Create(ctx, f.profileID, gstRequest(f.orgID, "4"))
	require.NoError(t, err)
	require.Equal(t, 1, gen.calls)

	_, err = f.invoice.Create(ctx, f.profileID, gstRequest(f.orgID, "2"))
	require.ErrorIs(t, err, domain.ErrDuplicateInvoiceNumber)
	assert.True(t, ledgererr.IsPersistence(err))
	assert.True(t, ledgererr.IsConflict(err))
	assert.Equal(t, 1+3, gen.calls)

	assert.Equal(t, int64(1), f.count(t, "invoices"))
	assert.Equal(t, int64(1), f.count(t, "invoice_items"))
	assert.Equal(t, int64(1), f.count(t, "invoice_taxes"))
}

// collidingOnceGenerator returns a taken number first, then defers to next.
type collidingOnceGenerator struct {
	taken string
	next  sequence.Generator
	calls int
}

func (g *collidingOnceGenerator) Next(ctx context.Context, tx *gorm.DB, prefix, period string) (string, error) {
	g.calls++
	if g.calls == 1 {
		return g.taken, nil
	}
	return g.next.Next(ctx, tx, prefix, period)
}

func TestCreateRecoversFromSingleCollision(t *testing.T) {
	gen := &collidingOnceGenerator{next: sequence.New()}
	f := newFixture(t, gen)
	ctx := context.Background()

	gen.calls = 1 // skip the collision for the seeding create
	first, err := f.invoice.Create(ctx, f.profileID, gstRequest(f.orgID, "1"))
	require.NoError(t, err)

	gen.taken = first.InvoiceNumber
	gen.calls = 0
	second, err := f.invoice.Create(ctx, f.profileID, gstRequest(f.orgID, "1"))
	require.NoError(t, err)
	assert.Equal(t, "INV2024010002", second.InvoiceNumber)
	assert.Equal(t, 2, gen.calls)
}

func TestCreateReturnsProfileBusyWhileLocked(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	f := newLockedFixture(t, nil, lock.NewLocker(client, time.Minute))
	ctx := context.Background()
	key := "invoicely:invoice:create:profile:" + f.profileID.String()

	require.NoError(t, mr.Set(key, "other-writer"))
	_, err := f.invoice.Create(ctx, f.profileID, gstRequest(f.orgID, "4"))
	require.ErrorIs(t, err, domain.ErrProfileBusy)
	assert.True(t, ledgererr.IsConflict(err))
	assert.Equal(t, int64(0), f.count(t, "invoices"))

	// Another profile is not blocked.
	otherProfile := f.newProfile(t, "Other Co", "other@co.ca")
	otherOrg := f.newOrg(t, otherProfile, "Globex")
	_, err = f.invoice.Create(ctx, otherProfile, gstRequest(otherOrg, "1"))
	require.NoError(t, err)

	mr.Del(key)
	inv, err := f.invoice.Create(ctx, f.profileID, gstRequest(f.orgID, "4"))
	require.NoError(t, err)
	assert.Equal(t, "INV2024010002", inv.InvoiceNumber)
	assert.False(t, mr.Exists(key), "lock must be released after create")
}

func TestUpdateItemsOnlyKeepsTaxSet(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	inv, err := f.invoice.Create(ctx, f.profileID, gstRequest(f.orgID, "4"))
	require.NoError(t, err)
	taxID := inv.Taxes[0].ID

	items := []domain.ItemInput{
		{Date: "2024-01-12", Description: "Review", Hours: dec("2")},
		{Date: "2024-01-11", Description: "Design", Hours: dec("6")},
	}
	updated, err := f.invoice.Update(ctx, f.profileID, inv.ID, domain.InvoicePatch{Items: &items})
	require.NoError(t, err)

	assert.True(t, updated.Subtotal.Equal(dec("1000")), "subtotal %s", updated.Subtotal)
	assert.True(t, updated.Total.Equal(dec("1130")), "total %s", updated.Total)

	stored, err := f.invoice.GetByID(ctx, f.profileID, inv.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 2)
	assert.Equal(t, "2024-01-11", stored.Items[0].Date)
	assert.Equal(t, "2024-01-12", stored.Items[1].Date)
	require.Len(t, stored.Taxes, 1)
	assert.Equal(t, taxID, stored.Taxes[0].ID)
	assert.True(t, stored.Taxes[0].Rate.Decimal.Equal(dec("13")))
	assert.True(t, stored.Taxes[0].Amount.Equal(dec("130")))
	assert.True(t, stored.Total.Equal(stored.Subtotal.Add(stored.Taxes[0].Amount)))
	assert.Equal(t, int64(2), f.count(t, "invoice_items"))
}

func TestUpdateTaxesOnlyRecomputesTotal(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	inv, err := f.invoice.Create(ctx, f.profileID, gstRequest(f.orgID, "4"))
	require.NoError(t, err)

	region := "ON"
	taxes := []domain.TaxInput{
		{TaxType: domain.TaxTypeGSTHST, Rate: decPtr("5"), Region: &region},
		{TaxType: domain.TaxTypeVAT, Amount: decPtr("10")},
	}
	updated, err := f.invoice.Update(ctx, f.profileID, inv.ID, domain.InvoicePatch{Taxes: &taxes})
	require.NoError(t, err)

	assert.True(t, updated.Subtotal.Equal(dec("500")))
	assert.True(t, updated.Total.Equal(dec("535")), "total %s", updated.Total)
	assert.Equal(t, int64(2), f.count(t, "invoice_taxes"))
	assert.Equal(t, int64(1), f.count(t, "invoice_items"))
}

func TestUpdateScalarFields(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	inv, err := f.invoice.Create(ctx, f.profileID, gstRequest(f.orgID, "4"))
	require.NoError(t, err)

	status := domain.InvoiceStatus("received_payment")
	name := "  Paid in full "
	updated, err := f.invoice.Update(ctx, f.profileID, inv.ID, domain.InvoicePatch{
		Status:      &status,
		InvoiceName: &name,
		Metadata:    map[string]any{"po": "PO-7"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusReceivedPayment, updated.Status)
	assert.Equal(t, "Paid in full", updated.InvoiceName)
	assert.True(t, updated.Total.Equal(dec("565")))

	stored, err := f.invoice.GetByID(ctx, f.profileID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "PO-7", stored.Metadata["po"])

	bad := domain.InvoiceStatus("ARCHIVED")
	_, err = f.invoice.Update(ctx, f.profileID, inv.ID, domain.InvoicePatch{Status: &bad})
	require.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestUpdateMovesToOwnOrganizationOnly(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	inv, err := f.invoice.Create(ctx, f.profileID, gstRequest(f.orgID, "4"))
	require.NoError(t, err)

	otherProfile := f.newProfile(t, "Other Co", "other@co.ca")
	foreignOrg := f.newOrg(t, otherProfile, "Globex")
	_, err = f.invoice.Update(ctx, f.profileID, inv.ID, domain.InvoicePatch{OrganizationID: &foreignOrg})
	require.ErrorIs(t, err, organizationdomain.ErrNotFound)

	ownOrg := f.newOrg(t, f.profileID, "Initech")
	updated, err := f.invoice.Update(ctx, f.profileID, inv.ID, domain.InvoicePatch{OrganizationID: &ownOrg})
	require.NoError(t, err)
	assert.Equal(t, ownOrg, updated.OrganizationID)
}

func TestUpdateFailureRollsBack(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	inv, err := f.invoice.Create(ctx, f.profileID, gstRequest(f.orgID, "4"))
	require.NoError(t, err)

	// Fail the header write, which runs after items were replaced.
	writeErr := errors.New("disk full")
	require.NoError(t, f.conn.Callback().Raw().Before("gorm:raw").Register("test:fail_invoice_update", func(tx *gorm.DB) {
		if strings.HasPrefix(strings.TrimSpace(tx.Statement.SQL.String()), "UPDATE invoices") {
			_ = tx.AddError(writeErr)
		}
	}))

	items := []domain.ItemInput{{Date: "2024-01-12", Description: "Review", Hours: dec("2")}}
	_, err = f.invoice.Update(ctx, f.profileID, inv.ID, domain.InvoicePatch{Items: &items})
	require.Error(t, err)
	assert.True(t, ledgererr.IsPersistence(err))
	require.NoError(t, f.conn.Callback().Raw().Remove("test:fail_invoice_update"))

	stored, err := f.invoice.GetByID(ctx, f.profileID, inv.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, "Development", stored.Items[0].Description)
	assert.True(t, stored.Taxes[0].Amount.Equal(dec("65")))
	assert.True(t, stored.Total.Equal(dec("565")))
}

func TestUpdateValidatesPatchBeforeLoading(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	missing := f.node.Generate()

	currency := "euro"
	_, err := f.invoice.Update(ctx, f.profileID, missing, domain.InvoicePatch{Currency: &currency})
	require.ErrorIs(t, err, domain.ErrInvalidCurrency)

	rate := dec("0")
	_, err = f.invoice.Update(ctx, f.profileID, missing, domain.InvoicePatch{ExchangeRate: &rate})
	require.ErrorIs(t, err, domain.ErrInvalidExchangeRate)

	due := "tomorrow"
	_, err = f.invoice.Update(ctx, f.profileID, missing, domain.InvoicePatch{DueDate: &due})
	require.ErrorIs(t, err, domain.ErrInvalidDueDate)

	// Clearing a date is allowed.
	empty := ""
	_, err = f.invoice.Update(ctx, f.profileID, missing, domain.InvoicePatch{DueDate: &empty})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateToEmptyItemsZeroesTotals(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	inv, err := f.invoice.Create(ctx, f.profileID, gstRequest(f.orgID, "4"))
	require.NoError(t, err)

	items := []domain.ItemInput{}
	updated, err := f.invoice.Update(ctx, f.profileID, inv.ID, domain.InvoicePatch{Items: &items})
	require.NoError(t, err)
	assert.True(t, updated.Subtotal.IsZero())
	assert.True(t, updated.Total.IsZero(), "total %s", updated.Total)
	assert.Equal(t, int64(0), f.count(t, "invoice_items"))
	assert.Equal(t, int64(1), f.count(t, "invoice_taxes"))
}

func TestUpdateMissingInvoice(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.invoice.Update(context.Background(), f.profileID, f.node.Generate(), domain.InvoicePatch{})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteScopedToProfile(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	inv, err := f.invoice.Create(ctx, f.profileID, gstRequest(f.orgID, "4"))
	require.NoError(t, err)
	otherProfile := f.newProfile(t, "Other Co", "other@co.ca")

	deleted, err := f.invoice.Delete(ctx, otherProfile, inv.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = f.invoice.Delete(ctx, f.profileID, inv.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = f.invoice.Delete(ctx, f.profileID, inv.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	assert.Equal(t, int64(0), f.count(t, "invoice_items"))
	assert.Equal(t, int64(0), f.count(t, "invoice_taxes"))
}

func TestDeleteAllByOrganizationKeepsOthers(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	second := f.newOrg(t, f.profileID, "Initech")

	_, err := f.invoice.Create(ctx, f.profileID, gstRequest(f.orgID, "1"))
	require.NoError(t, err)
	_, err = f.invoice.Create(ctx, f.profileID, gstRequest(f.orgID, "2"))
	require.NoError(t, err)
	kept, err := f.invoice.Create(ctx, f.profileID, gstRequest(second, "3"))
	require.NoError(t, err)

	n, err := f.invoice.DeleteAllByOrganization(ctx, f.profileID, f.orgID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	remaining, err := f.invoice.List(ctx, f.profileID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, kept.ID, remaining[0].ID)

	byOrg, err := f.invoice.ListByOrganization(ctx, f.profileID, f.orgID)
	require.NoError(t, err)
	assert.Empty(t, byOrg)
	assert.NotNil(t, byOrg)

	_, err = f.invoice.DeleteAllByOrganization(ctx, f.profileID, f.node.Generate())
	require.ErrorIs(t, err, organizationdomain.ErrNotFound)
}

func TestDeleteAllByProfile(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.invoice.Create(ctx, f.profileID, gstRequest(f.orgID, "1"))
		require.NoError(t, err)
	}

	n, err := f.invoice.DeleteAllByProfile(ctx, f.profileID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, int64(0), f.count(t, "invoice_items"))
	assert.Equal(t, int64(1), f.count(t, "organizations"))

	_, err = f.invoice.DeleteAllByProfile(ctx, f.node.Generate())
	require.ErrorIs(t, err, profiledomain.ErrNotFound)
}

func TestProfileDeleteCascades(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.invoice.Create(ctx, f.profileID, gstRequest(f.orgID, "4"))
	require.NoError(t, err)

	deleted, err := f.profile.Delete(ctx, f.profileID)
	require.NoError(t, err)
	assert.True(t, deleted)

	for _, table := range []string{"organizations", "invoices", "invoice_items", "invoice_taxes"} {
		assert.Equal(t, int64(0), f.count(t, table), table)
	}
}

func TestOrganizationDeleteRemovesOnlyItsInvoices(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	second := f.newOrg(t, f.profileID, "Initech")

	_, err := f.invoice.Create(ctx, f.profileID, gstRequest(f.orgID, "4"))
	require.NoError(t, err)
	_, err = f.invoice.Create(ctx, f.profileID, gstRequest(second, "4"))
	require.NoError(t, err)

	deleted, err := f.org.Delete(ctx, f.profileID, f.orgID)
	require.NoError(t, err)
	assert.True(t, deleted)

	assert.Equal(t, int64(1), f.count(t, "invoices"))
	assert.Equal(t, int64(1), f.count(t, "invoice_items"))
	assert.Equal(t, int64(1), f.count(t, "invoice_taxes"))
}

func TestListOrdersNewestFirst(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	first, err := f.invoice.Create(ctx, f.profileID, gstRequest(f.orgID, "1"))
	require.NoError(t, err)
	f.clock.Advance(time.Hour)
	second, err := f.invoice.Create(ctx, f.profileID, gstRequest(f.orgID, "2"))
	require.NoError(t, err)

	list, err := f.invoice.List(ctx, f.profileID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
	assert.Len(t, list[0].Items, 1)
	assert.Len(t, list[0].Taxes, 1)

	_, err = f.invoice.List(ctx, f.node.Generate())
	require.ErrorIs(t, err, profiledomain.ErrNotFound)
}

func TestGetByIDOtherProfileIsNotFound(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	inv, err := f.invoice.Create(ctx, f.profileID, gstRequest(f.orgID, "1"))
	require.NoError(t, err)
	other := f.newProfile(t, "Other Co", "other@co.ca")

	_, err = f.invoice.GetByID(ctx, other, inv.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.True(t, errors.Is(err, ledgererr.ErrNotFound))
}

func TestGetDocument(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	inv, err := f.invoice.Create(ctx, f.profileID, gstRequest(f.orgID, "4"))
	require.NoError(t, err)

	doc, err := f.invoice.GetDocument(ctx, f.profileID, inv.ID)
	require.NoError(t, err)

	assert.Equal(t, "acme-corp-inv2024010001.pdf", doc.FileName)
	assert.Equal(t, "Maple Consulting", doc.From.Name)
	assert.Equal(t, "Consultant", doc.From.Role)
	assert.Equal(t, "123456789RT0001", doc.From.GST)
	assert.Equal(t, "Acme Corp", doc.To.Company)
	assert.Equal(t, "Ottawa, ON - K1A 0B1", doc.To.AddressLine2)
	assert.Equal(t, "ap@AcmeCorp.com", doc.To.Email)
	assert.Equal(t, "INV2024010001", doc.Info.Number)
	assert.Equal(t, "N/A", doc.Info.Date)
	assert.Equal(t, "2024-02-14", doc.Info.DueDate)
	assert.Equal(t, "F-1", doc.Info.FormNumber)
	assert.Equal(t, "R2", doc.Info.Revision)
	assert.Equal(t, domain.DocumentNotes, doc.Notes)
	assert.True(t, doc.Totals.TaxRate.Equal(dec("13")))
	assert.True(t, doc.Totals.Tax.Equal(dec("65")))
	assert.True(t, doc.Totals.Total.Equal(dec("565")))
	assert.Len(t, doc.Items, 1)
}

func TestGetDocumentFallsBackToOrganizationRate(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	inv, err := f.invoice.Create(ctx, f.profileID, domain.CreateInvoiceRequest{
		OrganizationID: f.orgID,
		Items:          []domain.ItemInput{{Description: "Work", Hours: dec("1")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", inv.Items[0].Date)

	doc, err := f.invoice.GetDocument(ctx, f.profileID, inv.ID)
	require.NoError(t, err)
	assert.True(t, doc.Totals.TaxRate.Equal(dec("13")))
	assert.True(t, doc.Totals.Tax.IsZero())
	assert.True(t, doc.Totals.Total.Equal(dec("125")))
}
