package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// JSONFilePersister keeps the snapshot in a single JSON state file.
type JSONFilePersister struct {
	Path string
}

// NewJSONFilePersister returns a persister for the state file at path.
func NewJSONFilePersister(path string) *JSONFilePersister {
	return &JSONFilePersister{Path: path}
}

// stateFile is the on-disk layout. Dates are YYYY-MM-DD text.
type stateFile struct {
	Entries        []stateEntry `json:"entries"`
	Catalog        []string     `json:"catalog"`
	SourceFilename string       `json:"source_filename"`
}

type stateEntry struct {
	ID              string  `json:"id"`
	QuotationNo     string  `json:"quotation_no"`
	POHuawei        string  `json:"po_huawei"`
	LinkedPRSubcon  string  `json:"linked_pr_subcon"`
	PRDate          string  `json:"pr_date"`
	VendorName      string  `json:"vendor_name"`
	Project         string  `json:"project"`
	SiteID          string  `json:"site_id"`
	LineItem        string  `json:"line_items"`
	ClientUnitPrice float64 `json:"client_unit_price"`
	RequestedQty    int     `json:"requested_qty"`
	ClientTotal     float64 `json:"total"`
	SubconUnitPrice float64 `json:"subcon_unit_price"`
	SubconQty       int     `json:"qty"`
	SubTotal        float64 `json:"sub_total"`
	Profit          float64 `json:"profit"`
	MarginPct       float64 `json:"margin_pct"`
	Status          string  `json:"status"`
	MarginReason    string  `json:"margin_reason"`
}

// Load reads the state file. A missing file is ErrNoState.
func (p *JSONFilePersister) Load() (Snapshot, error) {
	raw, err := os.ReadFile(p.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return Snapshot{}, ErrNoState
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("read state file: %w", err)
	}
	return DecodeState(raw)
}

// Save overwrites the state file. The data is written to a sibling temp
// file first and renamed into place.
func (p *JSONFilePersister) Save(snap Snapshot) error {
	raw, err := EncodeState(snap)
	if err != nil {
		return err
	}

	dir := filepath.Dir(p.Path)
	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close state file: %w", err)
	}
	if err := os.Rename(tmp.Name(), p.Path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}

// EncodeState serializes a snapshot to the state-file JSON format.
func EncodeState(snap Snapshot) ([]byte, error) {
	state := stateFile{
		Entries:        make([]stateEntry, len(snap.Entries)),
		Catalog:        snap.Catalog,
		SourceFilename: snap.SourceFilename,
	}
	if state.Catalog == nil {
		state.Catalog = []string{}
	}
	for i, e := range snap.Entries {
		state.Entries[i] = stateEntry{
			ID:              e.ID,
			QuotationNo:     e.QuotationNo,
			POHuawei:        e.POHuawei,
			LinkedPRSubcon:  e.LinkedPRSubcon,
			PRDate:          FormatDate(e.PRDate),
			VendorName:      e.VendorName,
			Project:         e.Project,
			SiteID:          e.SiteID,
			LineItem:        e.LineItem,
			ClientUnitPrice: e.ClientUnitPrice,
			RequestedQty:    e.RequestedQty,
			ClientTotal:     e.ClientTotal,
			SubconUnitPrice: e.SubconUnitPrice,
			SubconQty:       e.SubconQty,
			SubTotal:        e.SubTotal,
			Profit:          e.Profit,
			MarginPct:       e.MarginPct,
			Status:          e.Status,
			MarginReason:    e.MarginReason,
		}
	}

	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return raw, nil
}

// DecodeState parses the state-file JSON format.
func DecodeState(raw []byte) (Snapshot, error) {
	var state stateFile
	if err := json.Unmarshal(raw, &state); err != nil {
		return Snapshot{}, fmt.Errorf("decode state: %w", err)
	}

	snap := Snapshot{
		Entries:        make([]Entry, len(state.Entries)),
		Catalog:        state.Catalog,
		SourceFilename: state.SourceFilename,
	}
	for i, se := range state.Entries {
		snap.Entries[i] = Entry{
			ID:              se.ID,
			QuotationNo:     se.QuotationNo,
			POHuawei:        se.POHuawei,
			LinkedPRSubcon:  se.LinkedPRSubcon,
			PRDate:          ParseDate(se.PRDate),
			VendorName:      se.VendorName,
			Project:         se.Project,
			SiteID:          se.SiteID,
			LineItem:        se.LineItem,
			ClientUnitPrice: se.ClientUnitPrice,
			RequestedQty:    se.RequestedQty,
			ClientTotal:     se.ClientTotal,
			SubconUnitPrice: se.SubconUnitPrice,
			SubconQty:       se.SubconQty,
			SubTotal:        se.SubTotal,
			Profit:          se.Profit,
			MarginPct:       se.MarginPct,
			Status:          se.Status,
			MarginReason:    se.MarginReason,
		}
	}
	return snap, nil
}
