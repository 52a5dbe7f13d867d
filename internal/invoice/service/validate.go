package service

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/invoicely/internal/invoice/domain"
	"gorm.io/datatypes"
)

var maxTaxRate = decimal.NewFromInt(100)

// validateCreate normalizes req and rejects it before any transaction opens.
func (s *Service) validateCreate(req domain.CreateInvoiceRequest) (createDraft, error) {
	if req.OrganizationID == 0 {
		return createDraft{}, domain.ErrInvalidOrganization
	}

	items, err := normalizeItems(req.Items, s.today())
	if err != nil {
		return createDraft{}, err
	}
	taxes, err := normalizeTaxes(req.Taxes)
	if err != nil {
		return createDraft{}, err
	}

	req.Status = domain.InvoiceStatus(strings.ToUpper(strings.TrimSpace(string(req.Status))))
	if req.Status == "" {
		req.Status = domain.InvoiceStatusWaiting
	}
	req.Currency = strings.ToUpper(strings.TrimSpace(req.Currency))
	if req.Currency == "" {
		req.Currency = s.defaultCurrency
	}
	if req.ExchangeRate == nil {
		one := decimal.NewFromInt(1)
		req.ExchangeRate = &one
	}
	req.DueDate = strings.TrimSpace(req.DueDate)
	req.InvoiceSubmissionDate = strings.TrimSpace(req.InvoiceSubmissionDate)
	if req.Metadata == nil {
		req.Metadata = map[string]any{}
	}

	header := domain.Invoice{
		Status:                req.Status,
		Currency:              req.Currency,
		ExchangeRate:          *req.ExchangeRate,
		DueDate:               req.DueDate,
		InvoiceSubmissionDate: req.InvoiceSubmissionDate,
	}
	if err := s.validateHeader(&header); err != nil {
		return createDraft{}, err
	}

	return createDraft{req: req, items: items, taxes: taxes}, nil
}

// validateHeader checks the scalar invoice fields a create or patch can set.
func (s *Service) validateHeader(inv *domain.Invoice) error {
	if !inv.Status.Valid() {
		return domain.ErrInvalidStatus
	}
	if !isCurrencyCode(inv.Currency) {
		return domain.ErrInvalidCurrency
	}
	if !inv.ExchangeRate.IsPositive() {
		return domain.ErrInvalidExchangeRate
	}
	if !isDateOrEmpty(inv.DueDate) {
		return domain.ErrInvalidDueDate
	}
	if !isDateOrEmpty(inv.InvoiceSubmissionDate) {
		return domain.ErrInvalidSubmissionDate
	}
	ensureMetadata(inv)
	return nil
}

// validatePatch checks only the scalar fields the patch sets, so it can run
// before the stored invoice is loaded.
func validatePatch(p domain.InvoicePatch) error {
	var inv domain.Invoice
	p.Apply(&inv)
	if p.Status != nil && !inv.Status.Valid() {
		return domain.ErrInvalidStatus
	}
	if p.Currency != nil && !isCurrencyCode(inv.Currency) {
		return domain.ErrInvalidCurrency
	}
	if p.ExchangeRate != nil && !inv.ExchangeRate.IsPositive() {
		return domain.ErrInvalidExchangeRate
	}
	if p.DueDate != nil && !isDateOrEmpty(inv.DueDate) {
		return domain.ErrInvalidDueDate
	}
	if p.InvoiceSubmissionDate != nil && !isDateOrEmpty(inv.InvoiceSubmissionDate) {
		return domain.ErrInvalidSubmissionDate
	}
	return nil
}

func ensureMetadata(inv *domain.Invoice) {
	if inv.Metadata == nil {
		inv.Metadata = datatypes.JSONMap{}
	}
}

// normalizeItems checks each line. An empty list is allowed and bills nothing;
// an empty date means today.
func normalizeItems(inputs []domain.ItemInput, today string) ([]domain.ItemInput, error) {
	out := make([]domain.ItemInput, 0, len(inputs))
	for _, in := range inputs {
		in.Date = strings.TrimSpace(in.Date)
		if in.Date == "" {
			in.Date = today
		}
		if !isDate(in.Date) {
			return nil, domain.ErrInvalidItemDate
		}
		in.Description = strings.TrimSpace(in.Description)
		if in.Description == "" {
			return nil, domain.ErrInvalidItemDescription
		}
		if !in.Hours.IsPositive() || !domain.FitsScale(in.Hours, domain.RateScale) {
			return nil, domain.ErrInvalidItemHours
		}
		out = append(out, in)
	}
	return out, nil
}

func normalizeTaxes(inputs []domain.TaxInput) ([]domain.TaxInput, error) {
	out := make([]domain.TaxInput, 0, len(inputs))
	for _, in := range inputs {
		in.TaxType = domain.TaxType(strings.ToUpper(strings.TrimSpace(string(in.TaxType))))
		if !in.TaxType.Valid() {
			return nil, domain.ErrInvalidTaxType
		}
		if in.Rate != nil && (in.Rate.IsNegative() || in.Rate.GreaterThan(maxTaxRate) || !domain.FitsScale(*in.Rate, domain.RateScale)) {
			return nil, domain.ErrInvalidTaxRate
		}
		if in.Amount != nil && (in.Amount.IsNegative() || !domain.FitsScale(*in.Amount, domain.Scale)) {
			return nil, domain.ErrInvalidTaxAmount
		}
		if in.Region != nil {
			region := strings.TrimSpace(*in.Region)
			if region == "" {
				in.Region = nil
			} else {
				in.Region = &region
			}
		}
		out = append(out, in)
	}
	return out, nil
}

func isCurrencyCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func isDate(value string) bool {
	_, err := time.Parse(domain.DateLayout, value)
	return err == nil
}

func isDateOrEmpty(value string) bool {
	return value == "" || isDate(value)
}
