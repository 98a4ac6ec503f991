package services

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/pocketbase/pocketbase/core"
)

// Collection names used by RecordPersister. collections.Setup creates them.
const (
	EntriesCollection  = "margin_entries"
	CatalogCollection  = "line_item_catalog"
	AppStateCollection = "app_state"

	sourceFilenameKey = "source_filename"
)

// RecordPersister stores snapshots in PocketBase collections. Each save
// rewrites all three collections inside one transaction.
type RecordPersister struct {
	app core.App
}

// NewRecordPersister returns a persister backed by app's database.
func NewRecordPersister(app core.App) *RecordPersister {
	return &RecordPersister{app: app}
}

// Load reads all entries ordered by sort_order, the catalog and the
// remembered filename. An empty database is ErrNoState.
func (p *RecordPersister) Load() (Snapshot, error) {
	entryRecords, err := p.findSorted(EntriesCollection)
	if err != nil {
		return Snapshot{}, err
	}
	catalogRecords, err := p.findSorted(CatalogCollection)
	if err != nil {
		return Snapshot{}, err
	}
	filename, err := p.loadSetting(sourceFilenameKey)
	if err != nil {
		return Snapshot{}, err
	}

	if len(entryRecords) == 0 && len(catalogRecords) == 0 && filename == "" {
		return Snapshot{}, ErrNoState
	}

	snap := Snapshot{SourceFilename: filename}
	for _, r := range entryRecords {
		snap.Entries = append(snap.Entries, entryFromRecord(r))
	}
	for _, r := range catalogRecords {
		snap.Catalog = append(snap.Catalog, r.GetString("label"))
	}
	return snap, nil
}

// Save replaces the stored snapshot.
func (p *RecordPersister) Save(snap Snapshot) error {
	return p.app.RunInTransaction(func(txApp core.App) error {
		entriesCol, err := txApp.FindCollectionByNameOrId(EntriesCollection)
		if err != nil {
			return fmt.Errorf("%s collection not found: %w", EntriesCollection, err)
		}
		catalogCol, err := txApp.FindCollectionByNameOrId(CatalogCollection)
		if err != nil {
			return fmt.Errorf("%s collection not found: %w", CatalogCollection, err)
		}

		if err := deleteAll(txApp, entriesCol); err != nil {
			return err
		}
		for i, e := range snap.Entries {
			record := core.NewRecord(entriesCol)
			setEntryFields(record, e)
			record.Set("sort_order", i)
			if err := txApp.Save(record); err != nil {
				return fmt.Errorf("save entry %d: %w", i, err)
			}
		}

		if err := deleteAll(txApp, catalogCol); err != nil {
			return err
		}
		for i, label := range snap.Catalog {
			record := core.NewRecord(catalogCol)
			record.Set("label", label)
			record.Set("sort_order", i)
			if err := txApp.Save(record); err != nil {
				return fmt.Errorf("save catalog item %q: %w", label, err)
			}
		}

		return saveSetting(txApp, sourceFilenameKey, snap.SourceFilename)
	})
}

func (p *RecordPersister) findSorted(collection string) ([]*core.Record, error) {
	col, err := p.app.FindCollectionByNameOrId(collection)
	if err != nil {
		return nil, fmt.Errorf("%s collection not found: %w", collection, err)
	}
	records, err := p.app.FindAllRecords(col)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	slices.SortStableFunc(records, func(a, b *core.Record) int {
		return cmp.Compare(a.GetInt("sort_order"), b.GetInt("sort_order"))
	})
	return records, nil
}

func (p *RecordPersister) loadSetting(key string) (string, error) {
	records, err := p.app.FindRecordsByFilter(AppStateCollection, "key = {:key}", "", 1, 0,
		map[string]any{"key": key})
	if err != nil {
		return "", fmt.Errorf("query %s: %w", AppStateCollection, err)
	}
	if len(records) == 0 {
		return "", nil
	}
	return records[0].GetString("value"), nil
}

func saveSetting(txApp core.App, key, value string) error {
	records, err := txApp.FindRecordsByFilter(AppStateCollection, "key = {:key}", "", 1, 0,
		map[string]any{"key": key})
	if err != nil {
		return fmt.Errorf("query %s: %w", AppStateCollection, err)
	}

	var record *core.Record
	if len(records) > 0 {
		record = records[0]
	} else {
		col, err := txApp.FindCollectionByNameOrId(AppStateCollection)
		if err != nil {
			return fmt.Errorf("%s collection not found: %w", AppStateCollection, err)
		}
		record = core.NewRecord(col)
		record.Set("key", key)
	}
	record.Set("value", value)
	if err := txApp.Save(record); err != nil {
		return fmt.Errorf("save setting %s: %w", key, err)
	}
	return nil
}

func deleteAll(txApp core.App, col *core.Collection) error {
	records, err := txApp.FindAllRecords(col)
	if err != nil {
		return fmt.Errorf("query %s: %w", col.Name, err)
	}
	for _, r := range records {
		if err := txApp.Delete(r); err != nil {
			return fmt.Errorf("delete %s %s: %w", col.Name, r.Id, err)
		}
	}
	return nil
}

// setEntryFields copies an entry onto a margin_entries record.
func setEntryFields(record *core.Record, e Entry) {
	record.Set("entry_id", e.ID)
	record.Set("quotation_no", e.QuotationNo)
	record.Set("po_huawei", e.POHuawei)
	record.Set("linked_pr_subcon", e.LinkedPRSubcon)
	record.Set("pr_date", FormatDate(e.PRDate))
	record.Set("vendor_name", e.VendorName)
	record.Set("project", e.Project)
	record.Set("site_id", e.SiteID)
	record.Set("line_items", e.LineItem)
	record.Set("client_unit_price", e.ClientUnitPrice)
	record.Set("requested_qty", e.RequestedQty)
	record.Set("total", e.ClientTotal)
	record.Set("subcon_unit_price", e.SubconUnitPrice)
	record.Set("qty", e.SubconQty)
	record.Set("sub_total", e.SubTotal)
	record.Set("profit", e.Profit)
	record.Set("margin_pct", e.MarginPct)
	record.Set("status", e.Status)
	record.Set("margin_reason", e.MarginReason)
}

func entryFromRecord(r *core.Record) Entry {
	return Entry{
		ID:              r.GetString("entry_id"),
		QuotationNo:     r.GetString("quotation_no"),
		POHuawei:        r.GetString("po_huawei"),
		LinkedPRSubcon:  r.GetString("linked_pr_subcon"),
		PRDate:          ParseDate(r.GetString("pr_date")),
		VendorName:      r.GetString("vendor_name"),
		Project:         r.GetString("project"),
		SiteID:          r.GetString("site_id"),
		LineItem:        r.GetString("line_items"),
		ClientUnitPrice: r.GetFloat("client_unit_price"),
		RequestedQty:    r.GetInt("requested_qty"),
		ClientTotal:     r.GetFloat("total"),
		SubconUnitPrice: r.GetFloat("subcon_unit_price"),
		SubconQty:       r.GetInt("qty"),
		SubTotal:        r.GetFloat("sub_total"),
		Profit:          r.GetFloat("profit"),
		MarginPct:       r.GetFloat("margin_pct"),
		Status:          r.GetString("status"),
		MarginReason:    r.GetString("margin_reason"),
	}
}
