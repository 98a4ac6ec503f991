package services

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// CurrencySymbol prefixes amounts in views and reports.
const CurrencySymbol = "RM"

// FormatAmount renders a monetary amount with thousands grouping and
// exactly 2 decimals, e.g. "RM 1,234.50" or "-RM 20.00".
func FormatAmount(amount float64) string {
	if amount < 0 {
		return "-" + CurrencySymbol + " " + FormatNumber(-amount)
	}
	return CurrencySymbol + " " + FormatNumber(amount)
}

// FormatNumber renders v with thousands grouping and 2 decimals.
func FormatNumber(v float64) string {
	return humanize.FormatFloat("#,###.##", v)
}

// FormatQty renders an integer quantity with thousands grouping.
func FormatQty(q int) string {
	return humanize.Comma(int64(q))
}

// FormatPercent renders a margin percentage with 2 decimals.
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.2f%%", p)
}

// FormatDisplayDate renders a PR date as DD/MM/YYYY, or "—" when missing.
func FormatDisplayDate(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Format("02/01/2006")
}
