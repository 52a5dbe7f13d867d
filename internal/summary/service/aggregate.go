package service

import (
	"fmt"
	"sort"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/invoicely/internal/summary/domain"
)

const scale = 2

func incomeSummary(invoices []domain.InvoiceRow) domain.IncomeSummary {
	out := domain.IncomeSummary{
		TotalRevenue:    decimal.Zero,
		TotalTax:        decimal.Zero,
		NetIncome:       decimal.Zero,
		MonthlySummary:  []domain.MonthlySummary{},
		ClientSummary:   []domain.ClientSummary{},
		CurrencySummary: []domain.CurrencySummary{},
	}

	months := map[string]*domain.MonthlySummary{}
	clients := map[snowflake.ID]*domain.ClientSummary{}
	currencies := map[string]*domain.CurrencySummary{}

	for _, inv := range invoices {
		tax := inv.Total.Sub(inv.Subtotal)
		out.TotalRevenue = out.TotalRevenue.Add(inv.Subtotal)
		out.TotalTax = out.TotalTax.Add(tax)
		out.NetIncome = out.NetIncome.Add(inv.Total)

		key := inv.CreatedAt.UTC().Format("2006-01")
		m, ok := months[key]
		if !ok {
			m = &domain.MonthlySummary{Month: key}
			months[key] = m
		}
		m.Revenue = m.Revenue.Add(inv.Subtotal)
		m.Tax = m.Tax.Add(tax)
		m.Net = m.Net.Add(inv.Total)

		c, ok := clients[inv.OrganizationID]
		if !ok {
			c = &domain.ClientSummary{OrganizationID: inv.OrganizationID, OrganizationName: inv.OrganizationName}
			clients[inv.OrganizationID] = c
		}
		c.TotalBilled = c.TotalBilled.Add(inv.Subtotal)
		c.TotalTax = c.TotalTax.Add(tax)
		c.InvoiceCount++

		cur, ok := currencies[inv.Currency]
		if !ok {
			cur = &domain.CurrencySummary{Currency: inv.Currency}
			currencies[inv.Currency] = cur
		}
		cur.OriginalAmount = cur.OriginalAmount.Add(inv.Total)
		cur.ConvertedAmount = cur.ConvertedAmount.Add(inv.Total.Mul(inv.ExchangeRate))
	}

	out.TotalRevenue = out.TotalRevenue.Round(scale)
	out.TotalTax = out.TotalTax.Round(scale)
	out.NetIncome = out.NetIncome.Round(scale)

	for _, m := range months {
		m.Revenue, m.Tax, m.Net = m.Revenue.Round(scale), m.Tax.Round(scale), m.Net.Round(scale)
		out.MonthlySummary = append(out.MonthlySummary, *m)
	}
	sort.Slice(out.MonthlySummary, func(i, j int) bool {
		return out.MonthlySummary[i].Month < out.MonthlySummary[j].Month
	})

	for _, c := range clients {
		c.TotalBilled, c.TotalTax = c.TotalBilled.Round(scale), c.TotalTax.Round(scale)
		out.ClientSummary = append(out.ClientSummary, *c)
	}
	sort.Slice(out.ClientSummary, func(i, j int) bool {
		a, b := out.ClientSummary[i], out.ClientSummary[j]
		if a.OrganizationName != b.OrganizationName {
			return a.OrganizationName < b.OrganizationName
		}
		return a.OrganizationID < b.OrganizationID
	})

	for _, cur := range currencies {
		cur.OriginalAmount, cur.ConvertedAmount = cur.OriginalAmount.Round(scale), cur.ConvertedAmount.Round(scale)
		out.CurrencySummary = append(out.CurrencySummary, *cur)
	}
	sort.Slice(out.CurrencySummary, func(i, j int) bool {
		return out.CurrencySummary[i].Currency < out.CurrencySummary[j].Currency
	})

	return out
}

type taxBucket struct {
	amount   decimal.Decimal
	invoices map[snowflake.ID]struct{}
}

func (b *taxBucket) add(invoiceID snowflake.ID, amount decimal.Decimal) {
	b.amount = b.amount.Add(amount)
	b.invoices[invoiceID] = struct{}{}
}

func taxSummary(invoices []domain.InvoiceRow, taxes []domain.TaxRow) domain.TaxSummary {
	out := domain.TaxSummary{
		TotalTaxCollected: decimal.Zero,
		TaxByType:         []domain.TaxTypeSummary{},
		TaxByRegion:       []domain.TaxRegionSummary{},
		QuarterlySummary:  []domain.QuarterlySummary{},
	}

	byType := map[string]*taxBucket{}
	byRegion := map[string]*taxBucket{}
	bucket := func(m map[string]*taxBucket, key string) *taxBucket {
		b, ok := m[key]
		if !ok {
			b = &taxBucket{invoices: map[snowflake.ID]struct{}{}}
			m[key] = b
		}
		return b
	}

	for _, t := range taxes {
		out.TotalTaxCollected = out.TotalTaxCollected.Add(t.Amount)
		bucket(byType, t.TaxType).add(t.InvoiceID, t.Amount)

		region := ""
		if t.Region != nil {
			region = *t.Region
		}
		bucket(byRegion, region).add(t.InvoiceID, t.Amount)
	}
	out.TotalTaxCollected = out.TotalTaxCollected.Round(scale)

	for taxType, b := range byType {
		out.TaxByType = append(out.TaxByType, domain.TaxTypeSummary{
			TaxType: taxType,
			Amount:  b.amount.Round(scale),
			Count:   int64(len(b.invoices)),
		})
	}
	sort.Slice(out.TaxByType, func(i, j int) bool {
		return out.TaxByType[i].TaxType < out.TaxByType[j].TaxType
	})

	for region, b := range byRegion {
		out.TaxByRegion = append(out.TaxByRegion, domain.TaxRegionSummary{
			Region: region,
			Amount: b.amount.Round(scale),
			Count:  int64(len(b.invoices)),
		})
	}
	sort.Slice(out.TaxByRegion, func(i, j int) bool {
		return out.TaxByRegion[i].Region < out.TaxByRegion[j].Region
	})

	quarters := map[string]*domain.QuarterlySummary{}
	for _, inv := range invoices {
		key := quarterKey(inv)
		q, ok := quarters[key]
		if !ok {
			q = &domain.QuarterlySummary{Quarter: key}
			quarters[key] = q
		}
		q.TaxCollected = q.TaxCollected.Add(inv.Total.Sub(inv.Subtotal))
		q.Amount = q.Amount.Add(inv.Total)
	}
	for _, q := range quarters {
		q.TaxCollected, q.Amount = q.TaxCollected.Round(scale), q.Amount.Round(scale)
		out.QuarterlySummary = append(out.QuarterlySummary, *q)
	}
	sort.Slice(out.QuarterlySummary, func(i, j int) bool {
		return out.QuarterlySummary[i].Quarter < out.QuarterlySummary[j].Quarter
	})

	return out
}

// quarterKey formats YYYY-Qn from the invoice's UTC creation month.
func quarterKey(inv domain.InvoiceRow) string {
	t := inv.CreatedAt.UTC()
	return fmt.Sprintf("%04d-Q%d", t.Year(), (int(t.Month())-1)/3+1)
}
