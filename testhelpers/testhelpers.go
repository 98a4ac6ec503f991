// Package testhelpers provides utilities for testing PocketBase-based applications.
package testhelpers

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase"

	"margintracker/collections"
	"margintracker/services"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	collections.Setup(app)

	return app
}

// NewTestStore opens an empty store persisted to a JSON state file in a
// temporary directory. It returns the store and the state file path.
func NewTestStore(t *testing.T) (*services.Store, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "state.json")
	return services.OpenStore(services.NewJSONFilePersister(path)), path
}

// NewRecordStore opens a store persisted to the collections of app.
func NewRecordStore(t *testing.T, app *pocketbase.PocketBase) *services.Store {
	t.Helper()
	return services.OpenStore(services.NewRecordPersister(app))
}

// CreateTestEntry adds an entry with the given PO reference and prices and
// returns it.
func CreateTestEntry(t *testing.T, store *services.Store, poHuawei string, clientPrice float64, reqQty int, subconPrice float64, subconQty int) services.Entry {
	t.Helper()

	entry, res, err := store.Create(services.Entry{
		POHuawei:        poHuawei,
		VendorName:      "Test Vendor",
		Project:         "BD",
		SiteID:          "SITE-" + poHuawei,
		LineItem:        "Site Survey",
		ClientUnitPrice: clientPrice,
		RequestedQty:    reqQty,
		SubconUnitPrice: subconPrice,
		SubconQty:       subconQty,
		Status:          services.StatusProcess,
	})
	if err != nil {
		t.Fatalf("failed to create test entry: %v", err)
	}
	if !res.OK() {
		t.Fatalf("failed to save test entry: %v", res.Fault)
	}

	return entry
}

// AssertHTMLContains checks that body contains all specified fragments.
func AssertHTMLContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if !strings.Contains(body, frag) {
			t.Errorf("expected HTML to contain %q, but it was not found\nbody (first 500 chars): %s",
				frag, truncate(body, 500))
		}
	}
}

// AssertHTMLNotContains checks that body contains none of the fragments.
func AssertHTMLNotContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if strings.Contains(body, frag) {
			t.Errorf("expected HTML not to contain %q\nbody (first 500 chars): %s",
				frag, truncate(body, 500))
		}
	}
}

// AssertHXRedirect checks that the response has an HX-Redirect header with the expected URL.
func AssertHXRedirect(t *testing.T, headerVal, expectedURL string) {
	t.Helper()

	if headerVal != expectedURL {
		t.Errorf("expected HX-Redirect %q, got %q", expectedURL, headerVal)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
