// Package sequence allocates per-period invoice numbers such as INV2024010007.
package sequence

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Width is the zero-padded width of the numeric suffix.
const Width = 4

type Granularity string

const (
	GranularityYear  Granularity = "year"
	GranularityMonth Granularity = "month"
)

// ParseGranularity accepts "year" or "month"; empty defaults to month.
func ParseGranularity(raw string) (Granularity, error) {
	switch Granularity(strings.ToLower(strings.TrimSpace(raw))) {
	case GranularityYear:
		return GranularityYear, nil
	case GranularityMonth, "":
		return GranularityMonth, nil
	default:
		return "", fmt.Errorf("unsupported invoice number period %q", raw)
	}
}

// PeriodKey segments the numbering space: 2024 for year, 202401 for month.
func PeriodKey(t time.Time, g Granularity) string {
	t = t.UTC()
	if g == GranularityYear {
		return t.Format("2006")
	}
	return t.Format("200601")
}

// Generator hands out the next number for prefix+period. Callers pass the
// transaction that will insert the invoice so the read and the write commit together.
type Generator interface {
	Next(ctx context.Context, tx *gorm.DB, prefix, period string) (string, error)
}

type storeGenerator struct{}

func New() Generator {
	return storeGenerator{}
}

func (storeGenerator) Next(ctx context.Context, tx *gorm.DB, prefix, period string) (string, error) {
	base := prefix + period

	// Longer numbers sort first so INV20240110000 beats INV2024019999.
	var last string
	err := tx.WithContext(ctx).Raw(
		`SELECT invoice_number FROM invoices
		 WHERE invoice_number LIKE ? ESCAPE '!'
		 ORDER BY LENGTH(invoice_number) DESC, invoice_number DESC, id DESC
		 LIMIT 1`,
		escapeLike(base)+"%",
	).Scan(&last).Error
	if err != nil {
		return "", err
	}

	return Format(base, nextSequence(last, base)), nil
}

// Format renders base followed by seq padded to Width digits.
func Format(base string, seq int) string {
	return fmt.Sprintf("%s%0*d", base, Width, seq)
}

func nextSequence(last, base string) int {
	if last == "" {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimPrefix(last, base))
	if err != nil || n < 0 {
		return 1
	}
	return n + 1
}

func escapeLike(value string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return r.Replace(value)
}
