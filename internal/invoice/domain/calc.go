package domain

import "github.com/shopspring/decimal"

// Scale is the number of decimal places kept for every derived money value.
const Scale = 2

// RateScale is the most decimal places accepted for hours and tax rates.
// Inputs are stored as given; only derived values are rounded.
const RateScale = 4

var hundred = decimal.NewFromInt(100)

// ItemAmount is round(hours * rate, 2).
func ItemAmount(hours, rate decimal.Decimal) decimal.Decimal {
	return hours.Mul(rate).Round(Scale)
}

// Subtotal is round(sum of item amounts, 2).
func Subtotal(items []InvoiceItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.Amount)
	}
	return sum.Round(Scale)
}

// TaxAmount is round(subtotal * rate / 100, 2).
func TaxAmount(subtotal, rate decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(rate).Div(hundred).Round(Scale)
}

// Total is round(subtotal + sum of tax amounts, 2).
func Total(subtotal decimal.Decimal, taxes []TaxDetail) decimal.Decimal {
	sum := subtotal
	for _, tax := range taxes {
		sum = sum.Add(tax.Amount)
	}
	return sum.Round(Scale)
}

// Reprice recomputes rated tax amounts against subtotal. Taxes without a
// rate keep their stored amount.
func Reprice(taxes []TaxDetail, subtotal decimal.Decimal) {
	for i := range taxes {
		if taxes[i].Rate.Valid {
			taxes[i].Amount = TaxAmount(subtotal, taxes[i].Rate.Decimal)
		}
	}
}

// FitsScale reports whether d has no more than places decimal digits.
func FitsScale(d decimal.Decimal, places int32) bool {
	return d.Equal(d.Truncate(places))
}
