package services

import "strings"

// ColumnKind is the semantic type of a canonical column. It drives import
// coercion, the default used for unmapped columns and export formatting.
type ColumnKind int

const (
	KindText ColumnKind = iota
	KindDate
	KindProject
	KindStatus
	KindMoney   // unit prices, entered by the operator
	KindDerived // totals and profit, always recomputed
	KindQty
	KindPercent
)

// Column is one entry of the canonical schema.
type Column struct {
	Key    string
	Header string
	Kind   ColumnKind
}

// Canonical column keys.
const (
	ColQuotationNo     = "quotation_no"
	ColPOHuawei        = "po_huawei"
	ColLinkedPRSubcon  = "linked_pr_subcon"
	ColPRDate          = "pr_date"
	ColVendorName      = "vendor_name"
	ColProject         = "project"
	ColSiteID          = "site_id"
	ColLineItem        = "line_items"
	ColClientUnitPrice = "client_unit_price"
	ColRequestedQty    = "requested_qty"
	ColClientTotal     = "total"
	ColSubconUnitPrice = "subcon_unit_price"
	ColSubconQty       = "qty"
	ColSubTotal        = "sub_total"
	ColProfit          = "profit"
	ColMarginPct       = "margin_pct"
	ColStatus          = "status"
	ColMarginReason    = "margin_reason"
)

// CanonicalColumns is the ordered master-file schema. Import, export and
// the state file all use this order.
var CanonicalColumns = []Column{
	{ColQuotationNo, "Quotation No", KindText},
	{ColPOHuawei, "Po Huawei", KindText},
	{ColLinkedPRSubcon, "Linked PR Subcon", KindText},
	{ColPRDate, "Date of PR", KindDate},
	{ColVendorName, "Vendor Name", KindText},
	{ColProject, "Project", KindProject},
	{ColSiteID, "Site ID", KindText},
	{ColLineItem, "Line Items", KindText},
	{ColClientUnitPrice, "Po Huawei (Unit Price)", KindMoney},
	{ColRequestedQty, "Requested Qty", KindQty},
	{ColClientTotal, "Total", KindDerived},
	{ColSubconUnitPrice, "Po Subcon (Unit Price)", KindMoney},
	{ColSubconQty, "Qty", KindQty},
	{ColSubTotal, "Sub Total", KindDerived},
	{ColProfit, "Profit", KindDerived},
	{ColMarginPct, "Margin%", KindPercent},
	{ColStatus, "Status", KindStatus},
	{ColMarginReason, "Margin Reason", KindText},
}

// CanonicalHeaders returns the header row in schema order.
func CanonicalHeaders() []string {
	headers := make([]string, len(CanonicalColumns))
	for i, c := range CanonicalColumns {
		headers[i] = c.Header
	}
	return headers
}

// ColumnByKey looks up a canonical column.
func ColumnByKey(key string) (Column, bool) {
	for _, c := range CanonicalColumns {
		if c.Key == key {
			return c, true
		}
	}
	return Column{}, false
}

// DefaultCell is the raw value an unmapped column takes during
// reconciliation.
func (c Column) DefaultCell() string {
	switch c.Kind {
	case KindStatus:
		return StatusProcess
	case KindProject:
		return NonProjectCode
	case KindMoney, KindDerived, KindPercent:
		return "0.0"
	case KindQty:
		return "0"
	default:
		return ""
	}
}

// normalizeHeader lowercases a header and strips spaces and parentheses so
// "Po Huawei (Unit Price)" and "pohuaweiunitprice" compare equal.
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer(" ", "", "(", "", ")", "").Replace(h)
}
