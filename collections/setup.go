package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"margintracker/services"
)

// Setup programmatically creates/ensures the margin_entries,
// line_item_catalog and app_state collections exist.
func Setup(app *pocketbase.PocketBase) {
	ensureCollection(app, services.EntriesCollection, func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "entry_id", Required: true})
		c.Fields.Add(&core.NumberField{Name: "sort_order", OnlyInt: true})
		c.Fields.Add(&core.TextField{Name: "quotation_no"})
		c.Fields.Add(&core.TextField{Name: "po_huawei"})
		c.Fields.Add(&core.TextField{Name: "linked_pr_subcon"})
		c.Fields.Add(&core.TextField{Name: "pr_date"})
		c.Fields.Add(&core.TextField{Name: "vendor_name"})
		c.Fields.Add(&core.SelectField{
			Name:      "project",
			Values:    services.ProjectCodes(),
			MaxSelect: 1,
		})
		c.Fields.Add(&core.TextField{Name: "site_id"})
		c.Fields.Add(&core.TextField{Name: "line_items"})
		c.Fields.Add(&core.NumberField{Name: "client_unit_price"})
		c.Fields.Add(&core.NumberField{Name: "requested_qty", OnlyInt: true})
		c.Fields.Add(&core.NumberField{Name: "total"})
		c.Fields.Add(&core.NumberField{Name: "subcon_unit_price"})
		c.Fields.Add(&core.NumberField{Name: "qty", OnlyInt: true})
		c.Fields.Add(&core.NumberField{Name: "sub_total"})
		c.Fields.Add(&core.NumberField{Name: "profit"})
		c.Fields.Add(&core.NumberField{Name: "margin_pct"})
		c.Fields.Add(&core.TextField{Name: "status"})
		c.Fields.Add(&core.TextField{Name: "margin_reason", Max: 2000})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	ensureCollection(app, services.CatalogCollection, func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "label", Required: true})
		c.Fields.Add(&core.NumberField{Name: "sort_order", OnlyInt: true})
		c.AddIndex("idx_line_item_catalog_label", true, "label", "")
	})

	ensureCollection(app, services.AppStateCollection, func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "key", Required: true})
		c.Fields.Add(&core.TextField{Name: "value"})
		c.AddIndex("idx_app_state_key", true, "key", "")
	})
}

// ensureCollection checks if a collection already exists by name. If it does,
// the existing collection is returned. Otherwise a new base collection is
// created, the addFields callback is invoked to populate its fields, and the
// collection is saved.
func ensureCollection(app *pocketbase.PocketBase, name string, addFields func(*core.Collection)) *core.Collection {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		log.Printf("Collection %q already exists, skipping creation.\n", name)
		return existing
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		log.Fatalf("Failed to create collection %q: %v", name, err)
	}

	fmt.Printf("Created collection %q (id=%s)\n", name, collection.Id)
	return collection
}
