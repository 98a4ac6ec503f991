package services

import "fmt"

// ColumnMapping maps a canonical column key to a source header. An empty
// source header means the column is ignored and gets its default.
type ColumnMapping map[string]string

// ReconcileResult is the outcome of matching an uploaded sheet against the
// canonical schema. Exactly one of Entries or NeedsMapping is meaningful.
type ReconcileResult struct {
	Entries      []Entry
	NeedsMapping bool
	Missing      []string // canonical headers absent from the sheet
	Proposal     ColumnMapping
}

// MissingColumns lists canonical headers not present (case-insensitively)
// in headers.
func MissingColumns(headers []string) []string {
	sheet := SheetData{Headers: headers}
	var missing []string
	for _, c := range CanonicalColumns {
		if sheet.HeaderIndex(c.Header) < 0 {
			missing = append(missing, c.Header)
		}
	}
	return missing
}

// Reconcile adopts the sheet directly when every canonical header is
// present and there is at least one data row. Otherwise it proposes a
// mapping for the operator to confirm.
func Reconcile(sheet *SheetData) ReconcileResult {
	missing := MissingColumns(sheet.Headers)
	if len(missing) == 0 && len(sheet.Rows) > 0 {
		mapping := make(ColumnMapping, len(CanonicalColumns))
		for _, c := range CanonicalColumns {
			mapping[c.Key] = sheet.Headers[sheet.HeaderIndex(c.Header)]
		}
		return ReconcileResult{Entries: buildEntries(sheet, mapping)}
	}

	return ReconcileResult{
		NeedsMapping: true,
		Missing:      missing,
		Proposal:     ProposeMapping(sheet.Headers),
	}
}

// ProposeMapping guesses a source header for every canonical column by
// comparing normalized names. Columns without a match are ignored.
func ProposeMapping(headers []string) ColumnMapping {
	mapping := make(ColumnMapping, len(CanonicalColumns))
	for _, c := range CanonicalColumns {
		mapping[c.Key] = ""
		want := normalizeHeader(c.Header)
		for _, h := range headers {
			if normalizeHeader(h) == want {
				mapping[c.Key] = h
				break
			}
		}
	}
	return mapping
}

// ApplyMapping builds entries column by column from a confirmed mapping.
// A mapping that names a header the sheet does not have is rejected.
func ApplyMapping(sheet *SheetData, mapping ColumnMapping) ([]Entry, error) {
	for key, source := range mapping {
		if _, ok := ColumnByKey(key); !ok {
			return nil, fmt.Errorf("unknown column %q", key)
		}
		if source != "" && sheet.HeaderIndex(source) < 0 {
			return nil, fmt.Errorf("source column %q not found in %s", source, sheet.FileName)
		}
	}
	return buildEntries(sheet, mapping), nil
}

func buildEntries(sheet *SheetData, mapping ColumnMapping) []Entry {
	sourceIdx := make(map[string]int, len(CanonicalColumns))
	for _, c := range CanonicalColumns {
		sourceIdx[c.Key] = -1
		if source := mapping[c.Key]; source != "" {
			sourceIdx[c.Key] = sheet.HeaderIndex(source)
		}
	}

	entries := make([]Entry, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		cells := make(map[string]string, len(CanonicalColumns))
		for _, c := range CanonicalColumns {
			if idx := sourceIdx[c.Key]; idx >= 0 {
				cells[c.Key] = sheet.Cell(row, idx)
			} else {
				cells[c.Key] = c.DefaultCell()
			}
		}
		entries = append(entries, entryFromCells(cells))
	}
	return entries
}
