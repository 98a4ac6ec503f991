package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"margintracker/services"
)

// defaultLineItems seeds the line-item catalog on a fresh install.
var defaultLineItems = []string{
	"Site Survey",
	"Installation & Commissioning",
	"Cabling Works",
	"Civil Works",
	"Dismantle & Relocation",
	"Drive Test",
	"Transportation",
}

// Seed fills the line-item catalog with the default labels. It is safe to
// call on every startup because it returns early once any entry or catalog
// record exists.
func Seed(app *pocketbase.PocketBase) error {
	catalogCol, err := app.FindCollectionByNameOrId(services.CatalogCollection)
	if err != nil {
		return fmt.Errorf("seed: could not find %s collection: %w", services.CatalogCollection, err)
	}
	existing, err := app.FindAllRecords(catalogCol)
	if err != nil {
		return fmt.Errorf("seed: could not query catalog: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	entries, err := app.FindAllRecords(services.EntriesCollection)
	if err != nil {
		return fmt.Errorf("seed: could not query entries: %w", err)
	}
	if len(entries) > 0 {
		return nil // catalog was emptied on purpose
	}

	log.Println("seed: line item catalog is empty – inserting defaults …")

	return app.RunInTransaction(func(txApp core.App) error {
		for i, label := range defaultLineItems {
			record := core.NewRecord(catalogCol)
			record.Set("label", label)
			record.Set("sort_order", i)
			if err := txApp.Save(record); err != nil {
				return fmt.Errorf("seed: could not save line item %q: %w", label, err)
			}
		}
		return nil
	})
}
