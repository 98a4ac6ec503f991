package collections

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/pocketbase/pocketbase"

	"margintracker/services"
)

// MigrateLegacyStateFile imports the data file of the spreadsheet-era tool
// into the collections. It only runs while margin_entries is empty and the
// file exists, so it is safe to call on every startup. The file itself is
// left in place.
func MigrateLegacyStateFile(app *pocketbase.PocketBase, path string) error {
	if path == "" {
		return nil
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate: could not read %s: %w", path, err)
	}

	existing, err := app.FindAllRecords(services.EntriesCollection)
	if err != nil {
		return fmt.Errorf("migrate: could not query entries: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	snap, err := services.DecodeLegacyState(raw)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if len(snap.Entries) == 0 {
		return nil
	}

	// Replace assigns IDs and keeps the seeded catalog.
	store := services.OpenStore(services.NewRecordPersister(app))
	if err := store.TakeFault(); err != nil {
		return fmt.Errorf("migrate: could not load current state: %w", err)
	}
	if res := store.Replace(snap.Entries, snap.SourceFilename); !res.OK() {
		return fmt.Errorf("migrate: could not save entries: %w", res.Fault)
	}

	log.Printf("migrate: imported %d entries from %s\n", len(snap.Entries), path)
	return nil
}
