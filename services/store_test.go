package services

import (
	"errors"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

// memPersister keeps the last saved snapshot in memory and can be made to
// fail.
type memPersister struct {
	snap    *Snapshot
	loadErr error
	saveErr error
	saves   int
}

func (m *memPersister) Load() (Snapshot, error) {
	if m.loadErr != nil {
		return Snapshot{}, m.loadErr
	}
	if m.snap == nil {
		return Snapshot{}, ErrNoState
	}
	return *m.snap, nil
}

func (m *memPersister) Save(s Snapshot) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.snap = &s
	return nil
}

func sampleEntry(po string) Entry {
	return Entry{
		POHuawei:        po,
		VendorName:      "Acme",
		Project:         "bd",
		ClientUnitPrice: 100,
		RequestedQty:    10,
		SubconUnitPrice: 65,
		SubconQty:       10,
		Status:          StatusProcess,
		PRDate:          time.Date(2024, 3, 15, 14, 0, 0, 0, time.Local),
	}
}

func mustCreate(t *testing.T, s *Store, po string) Entry {
	t.Helper()
	e, res, err := s.Create(sampleEntry(po))
	if err != nil {
		t.Fatalf("Create(%s) error = %v", po, err)
	}
	if !res.OK() {
		t.Fatalf("Create(%s) save fault = %v", po, res.Fault)
	}
	return e
}

func TestOpenStore_Empty(t *testing.T) {
	s := OpenStore(&memPersister{})
	if s.Len() != 0 || s.SourceFilename() != DefaultSourceFilename {
		t.Errorf("expected empty store with default filename, got %d / %q", s.Len(), s.SourceFilename())
	}
	if err := s.TakeFault(); err != nil {
		t.Errorf("expected no fault, got %v", err)
	}
}

func TestOpenStore_CorruptFallsBackToEmpty(t *testing.T) {
	s := OpenStore(&memPersister{loadErr: errors.New("unexpected end of JSON input")})
	if s.Len() != 0 {
		t.Errorf("expected empty store, got %d entries", s.Len())
	}
	if err := s.TakeFault(); err == nil {
		t.Error("expected a pending load fault")
	}
	if err := s.TakeFault(); err != nil {
		t.Error("expected fault to be cleared after TakeFault")
	}
}

func TestOpenStore_RecomputesAndAssignsIDs(t *testing.T) {
	p := &memPersister{snap: &Snapshot{
		Entries: []Entry{{POHuawei: "PO-1", ClientUnitPrice: 100, RequestedQty: 10, SubconUnitPrice: 65, SubconQty: 10, MarginPct: 99}},
		Catalog: []string{"A", " A ", "", "B"},
	}}
	s := OpenStore(p)

	e := s.Entries()[0]
	if e.ID == "" {
		t.Error("expected loaded entry to get an ID")
	}
	if e.MarginPct != 35 {
		t.Errorf("expected margin recomputed to 35, got %v", e.MarginPct)
	}
	if got := s.CatalogItems(); !slices.Equal(got, []string{"A", "B"}) {
		t.Errorf("expected de-duplicated catalog, got %v", got)
	}
}

func TestStore_Create(t *testing.T) {
	p := &memPersister{}
	s := OpenStore(p)

	e := mustCreate(t, s, "  PO-1  ")
	if e.ID == "" {
		t.Error("expected an ID")
	}
	if e.POHuawei != "PO-1" || e.Project != "BD" {
		t.Errorf("expected sanitized entry, got %+v", e)
	}
	if e.ClientTotal != 1000 || e.SubTotal != 650 || e.Profit != 350 || e.MarginPct != 35 || e.Class() != MarginHealthy {
		t.Errorf("unexpected derived fields %+v", e)
	}
	if !e.PRDate.Equal(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected PR date truncated to the day, got %v", e.PRDate)
	}
	if p.saves != 1 || len(p.snap.Entries) != 1 {
		t.Errorf("expected one save with one entry, got %d saves", p.saves)
	}
}

func TestStore_CreateRejectsMissingPO(t *testing.T) {
	p := &memPersister{}
	s := OpenStore(p)

	_, _, err := s.Create(sampleEntry("   "))
	if err == nil {
		t.Fatal("expected validation error")
	}
	if s.Len() != 0 || p.saves != 0 {
		t.Errorf("expected no state change, got %d entries / %d saves", s.Len(), p.saves)
	}
}

func TestStore_UpdateIsIdempotent(t *testing.T) {
	s := OpenStore(&memPersister{})
	e := mustCreate(t, s, "PO-1")

	input := sampleEntry("PO-1-B")
	first, _, err := s.Update(e.ID, input)
	if err != nil {
		t.Fatalf("Update error = %v", err)
	}
	second, _, err := s.Update(e.ID, input)
	if err != nil {
		t.Fatalf("Update error = %v", err)
	}
	if first != second {
		t.Errorf("expected identical results, got %+v and %+v", first, second)
	}
	if first.ID != e.ID || s.Len() != 1 {
		t.Errorf("expected in-place replacement keeping the ID")
	}
}

func TestStore_UpdateUnknownID(t *testing.T) {
	s := OpenStore(&memPersister{})
	mustCreate(t, s, "PO-1")

	_, _, err := s.Update("missing", sampleEntry("PO-X"))
	if !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("expected ErrEntryNotFound, got %v", err)
	}
	if s.Entries()[0].POHuawei != "PO-1" {
		t.Error("expected store unchanged")
	}
}

func TestStore_DeleteShiftsLaterEntries(t *testing.T) {
	s := OpenStore(&memPersister{})
	a := mustCreate(t, s, "PO-A")
	b := mustCreate(t, s, "PO-B")
	c := mustCreate(t, s, "PO-C")

	if _, err := s.Delete(b.ID); err != nil {
		t.Fatalf("Delete error = %v", err)
	}
	if s.Len() != 2 || s.Position(a.ID) != 0 || s.Position(c.ID) != 1 || s.Position(b.ID) != -1 {
		t.Errorf("unexpected positions after delete: %v", s.Entries())
	}

	if _, err := s.Delete(b.ID); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("expected ErrEntryNotFound for second delete, got %v", err)
	}
	if s.Len() != 2 {
		t.Error("expected unknown delete to be a no-op")
	}
}

func TestStore_ClearKeepsCatalog(t *testing.T) {
	s := OpenStore(&memPersister{})
	mustCreate(t, s, "PO-1")
	s.AddCatalogItem("Survey")
	s.Replace(nil, "imported.xlsx")

	res := s.Clear()
	if !res.OK() {
		t.Fatalf("Clear fault = %v", res.Fault)
	}
	if s.Len() != 0 {
		t.Error("expected no entries")
	}
	if got := s.CatalogItems(); !slices.Equal(got, []string{"Survey"}) {
		t.Errorf("expected catalog kept, got %v", got)
	}
	if s.SourceFilename() != DefaultSourceFilename {
		t.Errorf("expected filename reset, got %q", s.SourceFilename())
	}
}

func TestStore_Replace(t *testing.T) {
	s := OpenStore(&memPersister{})
	old := mustCreate(t, s, "PO-OLD")

	res := s.Replace([]Entry{
		{POHuawei: "PO-1", ClientUnitPrice: 100, RequestedQty: 1, SubconUnitPrice: 75, SubconQty: 1, ID: old.ID},
		{POHuawei: "", ClientUnitPrice: -5, Project: "solar"},
	}, "  march.xlsx ")
	if !res.OK() {
		t.Fatalf("Replace fault = %v", res.Fault)
	}

	entries := s.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID == old.ID || entries[0].ID == entries[1].ID {
		t.Error("expected fresh unique IDs")
	}
	if entries[0].MarginPct != 25 || entries[0].Class() != MarginBelowTarget {
		t.Errorf("expected recomputed margin 25, got %v", entries[0].MarginPct)
	}
	if entries[1].ClientUnitPrice != 0 || entries[1].Project != "SOLAR" {
		t.Errorf("expected sanitized import row, got %+v", entries[1])
	}
	if s.SourceFilename() != "march.xlsx" {
		t.Errorf("expected filename march.xlsx, got %q", s.SourceFilename())
	}
}

func TestStore_Catalog(t *testing.T) {
	s := OpenStore(&memPersister{})

	if added, _, err := s.AddCatalogItem(" Survey "); !added || err != nil {
		t.Fatalf("AddCatalogItem = %v, %v", added, err)
	}
	if added, _, _ := s.AddCatalogItem("Survey"); added {
		t.Error("expected duplicate add to be a no-op")
	}
	if added, _, _ := s.AddCatalogItem("survey"); !added {
		t.Error("expected case-sensitive labels")
	}
	if _, _, err := s.AddCatalogItem("  "); !errors.Is(err, ErrEmptyLabel) {
		t.Errorf("expected ErrEmptyLabel, got %v", err)
	}
	if removed, _ := s.RemoveCatalogItem("Survey"); !removed {
		t.Error("expected remove to succeed")
	}
	if removed, _ := s.RemoveCatalogItem("Survey"); removed {
		t.Error("expected second remove to report false")
	}
	if got := s.CatalogItems(); !slices.Equal(got, []string{"survey"}) {
		t.Errorf("catalog = %v", got)
	}
}

func TestStore_SaveFaultKeepsMemoryState(t *testing.T) {
	p := &memPersister{saveErr: errors.New("disk full")}
	s := OpenStore(p)

	e, res, err := s.Create(sampleEntry("PO-1"))
	if err != nil {
		t.Fatalf("Create error = %v", err)
	}
	if res.OK() {
		t.Fatal("expected save fault")
	}
	if _, ok := s.Get(e.ID); !ok {
		t.Error("expected entry kept in memory")
	}
	if err := s.TakeFault(); err == nil {
		t.Error("expected pending fault")
	}
}

func TestStore_RoundTripThroughStateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s := OpenStore(NewJSONFilePersister(path))
	e := mustCreate(t, s, "PO-1")
	s.AddCatalogItem("Survey")
	s.Replace(s.Entries(), "march.xlsx")
	e = s.Entries()[0]

	reopened := OpenStore(NewJSONFilePersister(path))
	got, ok := reopened.Get(e.ID)
	if !ok {
		t.Fatal("expected entry after reload")
	}
	if got != e {
		t.Errorf("reloaded entry = %+v, want %+v", got, e)
	}
	if reopened.SourceFilename() != "march.xlsx" {
		t.Errorf("expected filename march.xlsx, got %q", reopened.SourceFilename())
	}
	if !slices.Equal(reopened.CatalogItems(), []string{"Survey"}) {
		t.Errorf("expected catalog after reload, got %v", reopened.CatalogItems())
	}
}

func TestEntries_ReturnsCopy(t *testing.T) {
	s := OpenStore(&memPersister{})
	mustCreate(t, s, "PO-1")

	entries := s.Entries()
	entries[0].POHuawei = "changed"
	if s.Entries()[0].POHuawei != "PO-1" {
		t.Error("expected Entries to return a copy")
	}
}
