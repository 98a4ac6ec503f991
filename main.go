package main

import (
	"log"
	"net/http"
	"os"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"margintracker/collections"
	"margintracker/handlers"
	"margintracker/services"
)

func main() {
	app := pocketbase.New()

	var (
		stateFile       string
		legacyStateFile string
		staticDir       string
	)
	app.RootCmd.PersistentFlags().StringVar(&stateFile, "stateFile", "",
		"keep entries in this JSON state file instead of the pb_data collections")
	app.RootCmd.PersistentFlags().StringVar(&legacyStateFile, "legacyStateFile", "uces_app_data.json",
		"data file of the spreadsheet tool, imported once into empty collections")
	app.RootCmd.PersistentFlags().StringVar(&staticDir, "staticDir", "./static",
		"directory served under /static")

	var store *services.Store

	// Create collections, seed and migrate data, then open the store
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		collections.Setup(app)
		if err := collections.Seed(app); err != nil {
			log.Printf("Warning: seed data failed: %v", err)
		}
		if err := collections.MigrateLegacyStateFile(app, legacyStateFile); err != nil {
			log.Printf("Warning: legacy state migration failed: %v", err)
		}

		var persister services.Persister
		if stateFile != "" {
			log.Printf("store: using state file %s\n", stateFile)
			persister = services.NewJSONFilePersister(stateFile)
		} else {
			persister = services.NewRecordPersister(app)
		}
		store = services.OpenStore(persister)
		log.Printf("store: loaded %d entries\n", store.Len())

		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		se.Router.GET("/static/{path...}", apis.Static(os.DirFS(staticDir), false))

		// Header data and pending save warnings
		se.Router.BindFunc(handlers.StoreMiddleware(store))

		// ── Entries ──────────────────────────────────────────────
		se.Router.GET("/entries", handlers.HandleEntryList(store))
		se.Router.GET("/entries/new", handlers.HandleEntryNew(store))
		se.Router.POST("/entries", handlers.HandleEntryCreate(store))
		se.Router.POST("/entries/preview", handlers.HandleEntryPreview(store))
		se.Router.POST("/entries/clear", handlers.HandleEntryClear(store))
		se.Router.GET("/entries/{id}/edit", handlers.HandleEntryEdit(store))
		se.Router.POST("/entries/{id}/save", handlers.HandleEntryUpdate(store))
		se.Router.DELETE("/entries/{id}", handlers.HandleEntryDelete(store))

		// ── Import ───────────────────────────────────────────────
		se.Router.GET("/import", handlers.HandleImportPage(store))
		se.Router.POST("/import", handlers.HandleImportUpload(store))
		se.Router.POST("/import/apply", handlers.HandleImportApply(store))

		// ── Export ───────────────────────────────────────────────
		se.Router.GET("/export/excel", handlers.HandleExportExcel(store))
		se.Router.GET("/export/pdf", handlers.HandleExportPDF(store))

		// ── Line item catalog ────────────────────────────────────
		se.Router.GET("/catalog", handlers.HandleCatalogList(store))
		se.Router.POST("/catalog", handlers.HandleCatalogAdd(store))
		se.Router.DELETE("/catalog/{label}", handlers.HandleCatalogRemove(store))

		// Redirect home to the entries table
		se.Router.GET("/", func(e *core.RequestEvent) error {
			return e.Redirect(http.StatusFound, "/entries")
		})

		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
