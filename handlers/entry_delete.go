package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"margintracker/services"
)

func HandleEntryDelete(store *services.Store) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		if id == "" {
			return ErrorToast(e, http.StatusBadRequest, "Missing entry ID")
		}

		position := store.Position(id) + 1
		res, err := store.Delete(id)
		if errors.Is(err, services.ErrEntryNotFound) {
			return ErrorToast(e, http.StatusNotFound, "Entry not found")
		}
		if err != nil {
			log.Printf("entry_delete: failed to delete entry %s: %v", id, err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		log.Printf("entry_delete: deleted entry %s\n", id)
		saveToast(e, store, res, fmt.Sprintf("Entry #%d deleted", position))
		return redirectTo(e, "/entries")
	}
}

func HandleEntryClear(store *services.Store) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		n := store.Len()
		res := store.Clear()

		log.Printf("entry_clear: cleared %d entries\n", n)
		saveToast(e, store, res, fmt.Sprintf("Cleared %d entries", n))
		return redirectTo(e, "/entries")
	}
}
