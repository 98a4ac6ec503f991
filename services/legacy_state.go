package services

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cast"
)

// legacyState is the data file written by the spreadsheet-era tool: rows
// keyed by column header, plus the remembered filename.
type legacyState struct {
	Rows           []map[string]any `json:"df"`
	SourceFilename string           `json:"source_filename"`
}

// DecodeLegacyState converts a legacy data file into a snapshot. Headers
// are matched case-insensitively; derived columns are recomputed. A row
// whose Status holds margin-reason text keeps it as is.
func DecodeLegacyState(raw []byte) (Snapshot, error) {
	var state legacyState
	if err := json.Unmarshal(raw, &state); err != nil {
		return Snapshot{}, fmt.Errorf("decode legacy state: %w", err)
	}

	sheet := &SheetData{FileName: state.SourceFilename}
	seen := make(map[string]bool)
	for _, row := range state.Rows {
		for h := range row {
			if !seen[h] {
				seen[h] = true
				sheet.Headers = append(sheet.Headers, h)
			}
		}
	}
	for _, row := range state.Rows {
		values := make([]string, len(sheet.Headers))
		for i, h := range sheet.Headers {
			if v, ok := row[h]; ok && v != nil {
				values[i] = cast.ToString(v)
			}
		}
		sheet.Rows = append(sheet.Rows, values)
	}

	// Older files lack "Margin Reason" or "Date of PR"; the proposal
	// ignores those columns and they take their defaults.
	entries := buildEntries(sheet, ProposeMapping(sheet.Headers))
	return Snapshot{Entries: entries, SourceFilename: state.SourceFilename}, nil
}
