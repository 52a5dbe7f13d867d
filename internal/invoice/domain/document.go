package domain

import "github.com/shopspring/decimal"

// DocumentNotes is printed under the totals of every rendered invoice.
const DocumentNotes = "Payment is due within 30 days. Please include invoice number with payment."

// Document is the render-ready projection of an invoice handed to a PDF
// renderer. Nothing here is persisted.
type Document struct {
	FileName string         `json:"file_name"`
	From     DocumentFrom   `json:"from"`
	To       DocumentTo     `json:"to"`
	Info     DocumentInfo   `json:"info"`
	Items    []InvoiceItem  `json:"items"`
	Notes    string         `json:"notes"`
	Totals   DocumentTotals `json:"totals"`
}

type DocumentFrom struct {
	Name         string `json:"name"`
	Role         string `json:"role"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2"`
	Country      string `json:"country"`
	Phone        string `json:"phone"`
	GST          string `json:"gst"`
}

type DocumentTo struct {
	Company      string `json:"company"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2"`
	Country      string `json:"country"`
	Email        string `json:"email"`
}

type DocumentInfo struct {
	Number     string `json:"number"`
	Date       string `json:"date"`
	DueDate    string `json:"due_date"`
	FormNumber string `json:"form_number"`
	Revision   string `json:"revision"`
	Currency   string `json:"currency"`
}

type DocumentTotals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	TaxRate  decimal.Decimal `json:"tax_rate"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}
