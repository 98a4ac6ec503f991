package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/pocketbase/pocketbase/core"

	"margintracker/services"
	"margintracker/templates"
)

func renderCatalog(e *core.RequestEvent, store *services.Store, data templates.CatalogData) error {
	data.Items = store.CatalogItems()
	if data.Errors == nil {
		data.Errors = make(map[string]string)
	}

	var component templ.Component
	if isHTMX(e) {
		component = templates.CatalogContent(data)
	} else {
		component = templates.CatalogPage(data, GetHeaderData(e.Request))
	}
	return component.Render(e.Request.Context(), e.Response)
}

func HandleCatalogList(store *services.Store) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		return renderCatalog(e, store, templates.CatalogData{})
	}
}

func HandleCatalogAdd(store *services.Store) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}

		label := strings.TrimSpace(e.Request.FormValue("label"))
		added, res, err := store.AddCatalogItem(label)
		if errors.Is(err, services.ErrEmptyLabel) {
			SetToast(e, ToastWarning, "Please fix the errors below")
			return renderCatalog(e, store, templates.CatalogData{
				Errors: map[string]string{"label": "Line item is required"},
			})
		}
		if err != nil {
			log.Printf("catalog: could not add %q: %v", label, err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		if !added {
			SetToast(e, ToastInfo, "\""+label+"\" is already in the catalog")
		} else {
			log.Printf("catalog: added %q\n", label)
			saveToast(e, store, res, "Line item added")
		}
		return renderCatalog(e, store, templates.CatalogData{})
	}
}

func HandleCatalogRemove(store *services.Store) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		label := e.Request.PathValue("label")
		if strings.TrimSpace(label) == "" {
			return ErrorToast(e, http.StatusBadRequest, "Missing line item")
		}

		removed, res := store.RemoveCatalogItem(label)
		if !removed {
			return ErrorToast(e, http.StatusNotFound, "Line item not found")
		}

		log.Printf("catalog: removed %q\n", label)
		saveToast(e, store, res, "Line item removed")
		return redirectTo(e, "/catalog")
	}
}
