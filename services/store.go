package services

import (
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// DefaultSourceFilename is the export filename used until a file is imported.
const DefaultSourceFilename = "master_file_data.xlsx"

var (
	// ErrEntryNotFound is returned when an ID does not address a stored entry.
	ErrEntryNotFound = errors.New("entry not found")
	// ErrEmptyLabel is returned when adding a blank catalog label.
	ErrEmptyLabel = errors.New("line item label is empty")
	// ErrNoState is returned by a Persister when nothing has been saved yet.
	ErrNoState = errors.New("no saved state")
)

// Snapshot is the unit of persistence: the ordered entries, the line-item
// catalog and the remembered export filename.
type Snapshot struct {
	Entries        []Entry
	Catalog        []string
	SourceFilename string
}

// Persister saves and loads full snapshots. Save always overwrites.
type Persister interface {
	Load() (Snapshot, error)
	Save(Snapshot) error
}

// SaveResult reports the outcome of the autosave that follows a mutation.
// A fault never undoes the in-memory change.
type SaveResult struct {
	Fault error
}

// OK reports whether the snapshot reached durable storage.
func (r SaveResult) OK() bool { return r.Fault == nil }

// Store owns the session's entries and catalog. All mutations go through
// it and are followed by a best-effort save.
type Store struct {
	mu             sync.RWMutex
	persister      Persister
	entries        []Entry
	catalog        []string
	sourceFilename string
	fault          error
	newID          func() string
}

// OpenStore loads the store from p. A missing snapshot yields an empty
// store; an unreadable one yields an empty store and a pending fault.
func OpenStore(p Persister) *Store {
	s := &Store{
		persister:      p,
		sourceFilename: DefaultSourceFilename,
		newID:          func() string { return uuid.NewString() },
	}

	snap, err := p.Load()
	switch {
	case errors.Is(err, ErrNoState):
		return s
	case err != nil:
		log.Printf("store: could not load saved data, starting empty: %v", err)
		s.fault = fmt.Errorf("saved data could not be read: %w", err)
		return s
	}

	for _, e := range snap.Entries {
		e = sanitizeEntry(e)
		if e.ID == "" {
			e.ID = s.newID()
		}
		e.Recalculate()
		s.entries = append(s.entries, e)
	}
	for _, label := range snap.Catalog {
		s.addCatalogLocked(label)
	}
	if snap.SourceFilename != "" {
		s.sourceFilename = snap.SourceFilename
	}
	return s
}

// Validate checks the fields a submitted entry must carry.
func (e Entry) Validate() error {
	return validation.Errors{
		ColPOHuawei: validation.Validate(strings.TrimSpace(e.POHuawei),
			validation.Required.Error("PO Huawei is required")),
	}.Filter()
}

// Create validates e, assigns it a new ID, computes its derived fields and
// appends it.
func (s *Store) Create(e Entry) (Entry, SaveResult, error) {
	e = sanitizeEntry(e)
	if err := e.Validate(); err != nil {
		return Entry{}, SaveResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e.ID = s.newID()
	e.Recalculate()
	s.entries = append(s.entries, e)
	return e, s.saveLocked(), nil
}

// Update replaces the entry with the given ID wholesale.
func (s *Store) Update(id string, e Entry) (Entry, SaveResult, error) {
	e = sanitizeEntry(e)
	if err := e.Validate(); err != nil {
		return Entry{}, SaveResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return Entry{}, SaveResult{}, ErrEntryNotFound
	}
	e.ID = id
	e.Recalculate()
	s.entries[idx] = e
	return e, s.saveLocked(), nil
}

// Delete removes the entry with the given ID; later entries move up one
// position.
func (s *Store) Delete(id string) (SaveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return SaveResult{}, ErrEntryNotFound
	}
	s.entries = slices.Delete(s.entries, idx, idx+1)
	return s.saveLocked(), nil
}

// Clear drops every entry and resets the export filename. The catalog is
// kept.
func (s *Store) Clear() SaveResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
	s.sourceFilename = DefaultSourceFilename
	return s.saveLocked()
}

// Replace adopts an imported entry set. Entries get fresh IDs and
// recomputed derived fields; filename becomes the export filename.
func (s *Store) Replace(entries []Entry, filename string) SaveResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make([]Entry, 0, len(entries))
	for _, e := range entries {
		e = sanitizeEntry(e)
		e.ID = s.newID()
		e.Recalculate()
		s.entries = append(s.entries, e)
	}
	if filename = strings.TrimSpace(filename); filename != "" {
		s.sourceFilename = filename
	}
	return s.saveLocked()
}

// Entries returns a copy of all entries in storage order.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.entries)
}

// Get returns the entry with the given ID.
func (s *Store) Get(id string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return Entry{}, false
	}
	return s.entries[idx], true
}

// Position returns the current 0-based position of an entry, or -1.
func (s *Store) Position(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexLocked(id)
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// SourceFilename is the filename offered for the next export.
func (s *Store) SourceFilename() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sourceFilename
}

// CatalogItems returns a copy of the line-item catalog.
func (s *Store) CatalogItems() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.catalog)
}

// AddCatalogItem appends label to the catalog. Adding an existing label
// changes nothing and reports added=false.
func (s *Store) AddCatalogItem(label string) (bool, SaveResult, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return false, SaveResult{}, ErrEmptyLabel
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.addCatalogLocked(label) {
		return false, SaveResult{}, nil
	}
	return true, s.saveLocked(), nil
}

// RemoveCatalogItem removes label from the catalog if present.
func (s *Store) RemoveCatalogItem(label string) (bool, SaveResult) {
	label = strings.TrimSpace(label)

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.Index(s.catalog, label)
	if idx < 0 {
		return false, SaveResult{}
	}
	s.catalog = slices.Delete(s.catalog, idx, idx+1)
	return true, s.saveLocked()
}

// TakeFault returns the pending persistence fault, if any, and clears it.
// Handlers call it to show a one-off warning.
func (s *Store) TakeFault() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.fault
	s.fault = nil
	return err
}

func (s *Store) addCatalogLocked(label string) bool {
	label = strings.TrimSpace(label)
	if label == "" || slices.Contains(s.catalog, label) {
		return false
	}
	s.catalog = append(s.catalog, label)
	return true
}

func (s *Store) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(s.entries, func(e Entry) bool { return e.ID == id })
}

func (s *Store) saveLocked() SaveResult {
	snap := Snapshot{
		Entries:        slices.Clone(s.entries),
		Catalog:        slices.Clone(s.catalog),
		SourceFilename: s.sourceFilename,
	}
	if err := s.persister.Save(snap); err != nil {
		log.Printf("store: autosave failed: %v", err)
		s.fault = fmt.Errorf("changes could not be saved: %w", err)
		return SaveResult{Fault: err}
	}
	return SaveResult{}
}

// sanitizeEntry trims text fields, clamps prices and normalizes the project
// code.
func sanitizeEntry(e Entry) Entry {
	e.QuotationNo = strings.TrimSpace(e.QuotationNo)
	e.POHuawei = strings.TrimSpace(e.POHuawei)
	e.LinkedPRSubcon = strings.TrimSpace(e.LinkedPRSubcon)
	e.VendorName = strings.TrimSpace(e.VendorName)
	e.Project = NormalizeProject(e.Project)
	e.SiteID = strings.TrimSpace(e.SiteID)
	e.LineItem = strings.TrimSpace(e.LineItem)
	e.Status = strings.TrimSpace(e.Status)
	e.MarginReason = strings.TrimSpace(e.MarginReason)
	if e.ClientUnitPrice < 0 {
		e.ClientUnitPrice = 0
	}
	if e.SubconUnitPrice < 0 {
		e.SubconUnitPrice = 0
	}
	if !e.PRDate.IsZero() {
		e.PRDate = truncateToDate(e.PRDate)
	}
	return e
}
