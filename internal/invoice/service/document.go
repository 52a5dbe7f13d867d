package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/invoicely/internal/invoice/domain"
	"github.com/smallbiznis/invoicely/internal/ledgererr"
	organizationdomain "github.com/smallbiznis/invoicely/internal/organization/domain"
	profiledomain "github.com/smallbiznis/invoicely/internal/profile/domain"
)

const notAvailable = "N/A"

// GetDocument assembles the printable view of an invoice. Nothing is rendered here.
func (s *Service) GetDocument(ctx context.Context, profileID, invoiceID snowflake.ID) (domain.Document, error) {
	invoice, err := s.GetByID(ctx, profileID, invoiceID)
	if err != nil {
		return domain.Document{}, err
	}

	profile, err := s.profileRepo.FindByID(ctx, s.db, profileID)
	if err != nil {
		return domain.Document{}, ledgererr.Persistence("load profile", err)
	}
	if profile == nil {
		return domain.Document{}, profiledomain.ErrNotFound
	}
	org, err := s.orgRepo.FindByID(ctx, s.db, profileID, invoice.OrganizationID)
	if err != nil {
		return domain.Document{}, ledgererr.Persistence("load organization", err)
	}
	if org == nil {
		return domain.Document{}, organizationdomain.ErrNotFound
	}

	return buildDocument(invoice, *profile, *org, s.formNumber, s.revision), nil
}

func buildDocument(inv domain.Invoice, profile profiledomain.Profile, org organizationdomain.Organization, formNumber, revision string) domain.Document {
	role := org.BusinessRole
	if strings.TrimSpace(role) == "" {
		role = profile.BusinessRole
	}

	taxRate := org.TaxRatePercentage
	tax := decimal.Zero
	if gst := findGSTHST(inv.Taxes); gst != nil {
		tax = gst.Amount
		if gst.Rate.Valid && !gst.Rate.Decimal.IsZero() {
			taxRate = gst.Rate.Decimal
		}
	}

	items := inv.Items
	if items == nil {
		items = []domain.InvoiceItem{}
	}

	return domain.Document{
		FileName: documentFileName(org.CompanyName, inv.InvoiceNumber),
		From: domain.DocumentFrom{
			Name:         profile.BusinessName,
			Role:         role,
			AddressLine1: profile.BusinessAddress,
			AddressLine2: addressLine2(profile.BusinessCity, profile.BusinessStateOrProvince, profile.BusinessPostalCode),
			Country:      profile.BusinessCountry,
			Phone:        profile.BusinessPhone,
			GST:          profile.BusinessGSTHSTNumber,
		},
		To: domain.DocumentTo{
			Company:      org.CompanyName,
			AddressLine1: org.Address,
			AddressLine2: addressLine2(org.City, org.StateOrProvince, org.PostalCode),
			Country:      org.Country,
			Email:        org.CompanyEmailForInvoice,
		},
		Info: domain.DocumentInfo{
			Number:     inv.InvoiceNumber,
			Date:       orNotAvailable(inv.InvoiceSubmissionDate),
			DueDate:    orNotAvailable(inv.DueDate),
			FormNumber: formNumber,
			Revision:   revision,
			Currency:   orNotAvailable(inv.Currency),
		},
		Items: items,
		Notes: domain.DocumentNotes,
		Totals: domain.DocumentTotals{
			Subtotal: inv.Subtotal,
			TaxRate:  taxRate,
			Tax:      tax,
			Total:    inv.Total,
		},
	}
}

func findGSTHST(taxes []domain.TaxDetail) *domain.TaxDetail {
	for i := range taxes {
		if taxes[i].TaxType == domain.TaxTypeGSTHST {
			return &taxes[i]
		}
	}
	return nil
}

// addressLine2 renders "city, province - postal".
func addressLine2(city, stateOrProvince, postalCode string) string {
	return city + ", " + stateOrProvince + " - " + postalCode
}

func orNotAvailable(value string) string {
	if strings.TrimSpace(value) == "" {
		return notAvailable
	}
	return value
}

func documentFileName(company, number string) string {
	name := slug.Make(strings.TrimSpace(company + " " + number))
	if name == "" {
		name = "invoice"
	}
	return name + ".pdf"
}
