package services

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/xuri/excelize/v2"
)

// Entry is one PO margin comparison line.
type Entry struct {
	ID              string
	QuotationNo     string
	POHuawei        string
	LinkedPRSubcon  string
	PRDate          time.Time // zero when missing
	VendorName      string
	Project         string
	SiteID          string
	LineItem        string
	ClientUnitPrice float64
	RequestedQty    int
	ClientTotal     float64
	SubconUnitPrice float64
	SubconQty       int
	SubTotal        float64
	Profit          float64
	MarginPct       float64
	Status          string
	MarginReason    string
}

// Recalculate overwrites the derived fields from the four input fields.
func (e *Entry) Recalculate() {
	calc := CalcMargin(e.ClientUnitPrice, e.RequestedQty, e.SubconUnitPrice, e.SubconQty)
	e.ClientTotal = calc.ClientTotal
	e.SubTotal = calc.SubTotal
	e.Profit = calc.Profit
	e.MarginPct = calc.MarginPct
}

// Class returns the margin classification of the entry.
func (e Entry) Class() MarginClass {
	return Classify(e.MarginPct)
}

// HasPRDate reports whether the PR date is set.
func (e Entry) HasPRDate() bool {
	return !e.PRDate.IsZero()
}

// Value returns the typed value of a canonical column, for export.
// Missing dates are returned as "".
func (e Entry) Value(key string) any {
	switch key {
	case ColQuotationNo:
		return e.QuotationNo
	case ColPOHuawei:
		return e.POHuawei
	case ColLinkedPRSubcon:
		return e.LinkedPRSubcon
	case ColPRDate:
		if e.PRDate.IsZero() {
			return ""
		}
		return e.PRDate
	case ColVendorName:
		return e.VendorName
	case ColProject:
		return e.Project
	case ColSiteID:
		return e.SiteID
	case ColLineItem:
		return e.LineItem
	case ColClientUnitPrice:
		return e.ClientUnitPrice
	case ColRequestedQty:
		return e.RequestedQty
	case ColClientTotal:
		return e.ClientTotal
	case ColSubconUnitPrice:
		return e.SubconUnitPrice
	case ColSubconQty:
		return e.SubconQty
	case ColSubTotal:
		return e.SubTotal
	case ColProfit:
		return e.Profit
	case ColMarginPct:
		return e.MarginPct
	case ColStatus:
		return e.Status
	case ColMarginReason:
		return e.MarginReason
	}
	return nil
}

// entryFromCells builds an entry from raw cell text keyed by column key.
// Numbers that do not parse become 0, dates that do not parse become
// missing. Derived columns are ignored and recomputed.
func entryFromCells(cells map[string]string) Entry {
	text := func(key string) string { return strings.TrimSpace(cells[key]) }

	e := Entry{
		QuotationNo:     text(ColQuotationNo),
		POHuawei:        text(ColPOHuawei),
		LinkedPRSubcon:  text(ColLinkedPRSubcon),
		PRDate:          ParseDate(cells[ColPRDate]),
		VendorName:      text(ColVendorName),
		Project:         NormalizeProject(cells[ColProject]),
		SiteID:          text(ColSiteID),
		LineItem:        text(ColLineItem),
		ClientUnitPrice: CoercePrice(cells[ColClientUnitPrice]),
		RequestedQty:    CoerceQty(cells[ColRequestedQty]),
		SubconUnitPrice: CoercePrice(cells[ColSubconUnitPrice]),
		SubconQty:       CoerceQty(cells[ColSubconQty]),
		Status:          text(ColStatus),
		MarginReason:    text(ColMarginReason),
	}
	e.Recalculate()
	return e
}

// CoerceFloat parses s as a number, tolerating thousands separators and a
// trailing percent sign. Invalid input yields 0.
func CoerceFloat(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0
	}
	v, err := cast.ToFloat64E(s)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// CoercePrice is CoerceFloat clamped at 0; unit prices are never negative.
func CoercePrice(s string) float64 {
	return math.Max(CoerceFloat(s), 0)
}

// CoerceQty parses an integer quantity. Fractional input is truncated.
func CoerceQty(s string) int {
	return int(CoerceFloat(s))
}

// dateLayouts are tried in order; day-first layouts come before
// month-first ones because the operators enter DD/MM/YYYY.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"02.01.2006",
	"2006/01/02",
	"02-Jan-2006",
	"2 Jan 2006",
	"02-01-06",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseDate parses a PR date from spreadsheet or form text. Excel serial
// numbers are accepted. Unparseable input returns the zero time.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nat") || strings.EqualFold(s, "none") {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return truncateToDate(t)
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial <= 0 {
			return time.Time{}
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}
		}
		return truncateToDate(t)
	}
	if t, err := cast.ToTimeE(s); err == nil {
		return truncateToDate(t)
	}
	return time.Time{}
}

// FormatDate renders a date as YYYY-MM-DD, or "" when missing.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
