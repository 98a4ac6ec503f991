package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase/core"

	"margintracker/services"
	"margintracker/templates"
)

type contextKey string

const HeaderDataKey contextKey = "headerData"

// GetHeaderData extracts the pre-built HeaderData from the request context.
func GetHeaderData(r *http.Request) templates.HeaderData {
	if val, ok := r.Context().Value(HeaderDataKey).(templates.HeaderData); ok {
		return val
	}
	return templates.HeaderData{}
}

// StoreMiddleware builds HeaderData from the store and keeps it in the
// request context. On page views it also surfaces a pending persistence
// fault once as a warning toast.
func StoreMiddleware(store *services.Store) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if e.Request.Method == http.MethodGet && showsToasts(e.Request.URL.Path) {
			if fault := store.TakeFault(); fault != nil {
				log.Printf("middleware: reporting persistence fault: %v", fault)
				SetToast(e, ToastWarning, persistenceWarning)
			}
		}

		headerData := templates.HeaderData{
			ActiveNav:      navSection(e.Request.URL.Path),
			EntryCount:     store.Len(),
			SourceFilename: store.SourceFilename(),
		}

		ctx := context.WithValue(e.Request.Context(), HeaderDataKey, headerData)
		e.Request = e.Request.WithContext(ctx)

		return e.Next()
	}
}

const persistenceWarning = "Your data could not be saved to disk. Changes are kept for this session only."

// saveToast reports a mutation's outcome: success, or a warning when the
// autosave failed. The pending fault is consumed so it is not shown twice.
func saveToast(e *core.RequestEvent, store *services.Store, res services.SaveResult, success string) {
	if res.OK() {
		SetToast(e, ToastSuccess, success)
		return
	}
	store.TakeFault()
	SetToast(e, ToastWarning, success+". "+persistenceWarning)
}

// showsToasts reports whether a GET response for path is a page the
// operator sees. Assets and file downloads drop the toast header.
func showsToasts(path string) bool {
	return !strings.HasPrefix(path, "/static/") && !strings.HasPrefix(path, "/export/")
}

func navSection(path string) string {
	switch {
	case strings.HasPrefix(path, "/import"):
		return "import"
	case strings.HasPrefix(path, "/catalog"):
		return "catalog"
	default:
		return "entries"
	}
}

// isHTMX reports whether the request was issued by HTMX.
func isHTMX(e *core.RequestEvent) bool {
	return e.Request.Header.Get("HX-Request") == "true"
}

// redirectTo sends the client to url after a mutation.
func redirectTo(e *core.RequestEvent, url string) error {
	if isHTMX(e) {
		e.Response.Header().Set("HX-Redirect", url)
		return e.String(http.StatusOK, "")
	}
	return e.Redirect(http.StatusFound, url)
}
