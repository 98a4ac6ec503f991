package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/pocketbase/core"

	"margintracker/services"
	"margintracker/templates"
)

// newEntryFormData returns form data with the selects and catalog filled in
// and the preview computed from the raw values.
func newEntryFormData(store *services.Store, d templates.EntryFormData) templates.EntryFormData {
	if d.Errors == nil {
		d.Errors = make(map[string]string)
	}
	d.Projects = templates.ProjectSelectOptions(services.NormalizeProject(d.Project))
	d.Statuses = templates.StatusOptions(d.Status, false)
	d.LineItems = store.CatalogItems()

	entry := formEntry(d)
	d.Preview = services.CalcMargin(entry.ClientUnitPrice, entry.RequestedQty, entry.SubconUnitPrice, entry.SubconQty)
	d.PreviewClass = services.Classify(d.Preview.MarginPct)
	return d
}

// formDataFromEntry fills the form with a stored entry for editing.
func formDataFromEntry(e services.Entry) templates.EntryFormData {
	return templates.EntryFormData{
		ID:              e.ID,
		IsEdit:          true,
		QuotationNo:     e.QuotationNo,
		POHuawei:        e.POHuawei,
		LinkedPRSubcon:  e.LinkedPRSubcon,
		PRDate:          services.FormatDate(e.PRDate),
		VendorName:      e.VendorName,
		Project:         e.Project,
		SiteID:          e.SiteID,
		LineItem:        e.LineItem,
		ClientUnitPrice: strconv.FormatFloat(e.ClientUnitPrice, 'f', -1, 64),
		RequestedQty:    strconv.Itoa(e.RequestedQty),
		SubconUnitPrice: strconv.FormatFloat(e.SubconUnitPrice, 'f', -1, 64),
		SubconQty:       strconv.Itoa(e.SubconQty),
		Status:          e.Status,
		MarginReason:    e.MarginReason,
	}
}

// formDataFromRequest reads the submitted form fields.
func formDataFromRequest(e *core.RequestEvent) templates.EntryFormData {
	field := func(name string) string { return strings.TrimSpace(e.Request.FormValue(name)) }
	return templates.EntryFormData{
		QuotationNo:     field(services.ColQuotationNo),
		POHuawei:        field(services.ColPOHuawei),
		LinkedPRSubcon:  field(services.ColLinkedPRSubcon),
		PRDate:          field(services.ColPRDate),
		VendorName:      field(services.ColVendorName),
		Project:         field(services.ColProject),
		SiteID:          field(services.ColSiteID),
		LineItem:        field(services.ColLineItem),
		ClientUnitPrice: field(services.ColClientUnitPrice),
		RequestedQty:    field(services.ColRequestedQty),
		SubconUnitPrice: field(services.ColSubconUnitPrice),
		SubconQty:       field(services.ColSubconQty),
		Status:          formStatus(field(services.ColStatus)),
		MarginReason:    field(services.ColMarginReason),
		Errors:          make(map[string]string),
	}
}

// formEntry coerces raw form values into an entry. Derived fields are left
// to the store.
func formEntry(d templates.EntryFormData) services.Entry {
	return services.Entry{
		QuotationNo:     d.QuotationNo,
		POHuawei:        d.POHuawei,
		LinkedPRSubcon:  d.LinkedPRSubcon,
		PRDate:          services.ParseDate(d.PRDate),
		VendorName:      d.VendorName,
		Project:         services.NormalizeProject(d.Project),
		SiteID:          d.SiteID,
		LineItem:        d.LineItem,
		ClientUnitPrice: services.CoercePrice(d.ClientUnitPrice),
		RequestedQty:    services.CoerceQty(d.RequestedQty),
		SubconUnitPrice: services.CoercePrice(d.SubconUnitPrice),
		SubconQty:       services.CoerceQty(d.SubconQty),
		Status:          formStatus(d.Status),
		MarginReason:    d.MarginReason,
	}
}

// formStatus canonicalizes a known status and defaults a blank one. An
// imported status outside the list is kept so editing does not lose it.
func formStatus(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return services.StatusWaiting
	}
	if n := services.NormalizeStatus(s); strings.EqualFold(n, s) {
		return n
	}
	return s
}

// validationErrors copies ozzo field errors into the template error map.
// It reports false when err is not a validation error.
func validationErrors(err error, into map[string]string) bool {
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return false
	}
	for field, ferr := range verrs {
		into[field] = ferr.Error()
	}
	return true
}

func renderEntryForm(e *core.RequestEvent, data templates.EntryFormData) error {
	var component templ.Component
	if isHTMX(e) {
		component = templates.EntryFormContent(data)
	} else {
		component = templates.EntryFormPage(data, GetHeaderData(e.Request))
	}
	return component.Render(e.Request.Context(), e.Response)
}

func HandleEntryNew(store *services.Store) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data := newEntryFormData(store, templates.EntryFormData{
			PRDate:  services.FormatDate(time.Now()),
			Project: services.NonProjectCode,
			Status:  services.StatusWaiting,
		})
		return renderEntryForm(e, data)
	}
}

// HandleEntryPreview recomputes the margin preview from the form values as
// they are typed. Nothing is stored.
// Route: POST /entries/preview
func HandleEntryPreview(store *services.Store) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}
		data := newEntryFormData(store, formDataFromRequest(e))
		return templates.EntryPreview(data).Render(e.Request.Context(), e.Response)
	}
}

func HandleEntryCreate(store *services.Store) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}

		data := formDataFromRequest(e)
		entry, res, err := store.Create(formEntry(data))
		if err != nil {
			if !validationErrors(err, data.Errors) {
				log.Printf("entry_form: could not create entry: %v", err)
				return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
			}
			SetToast(e, ToastWarning, "Please fix the errors below")
			return renderEntryForm(e, newEntryFormData(store, data))
		}

		log.Printf("entry_form: created entry %s (margin %.2f%%)\n", entry.ID, entry.MarginPct)
		saveToast(e, store, res, fmt.Sprintf("Entry #%d added", store.Position(entry.ID)+1))
		return redirectTo(e, "/entries")
	}
}

func HandleEntryEdit(store *services.Store) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		entry, ok := store.Get(id)
		if !ok {
			return ErrorToast(e, http.StatusNotFound, "Entry not found")
		}

		data := formDataFromEntry(entry)
		data.Position = store.Position(id) + 1
		return renderEntryForm(e, newEntryFormData(store, data))
	}
}

func HandleEntryUpdate(store *services.Store) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}

		data := formDataFromRequest(e)
		data.ID = id
		data.IsEdit = true
		data.Position = store.Position(id) + 1

		entry, res, err := store.Update(id, formEntry(data))
		switch {
		case errors.Is(err, services.ErrEntryNotFound):
			return ErrorToast(e, http.StatusNotFound, "Entry not found")
		case err != nil:
			if !validationErrors(err, data.Errors) {
				log.Printf("entry_form: could not update entry %s: %v", id, err)
				return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
			}
			SetToast(e, ToastWarning, "Please fix the errors below")
			return renderEntryForm(e, newEntryFormData(store, data))
		}

		log.Printf("entry_form: updated entry %s\n", entry.ID)
		saveToast(e, store, res, fmt.Sprintf("Entry #%d updated", data.Position))
		return redirectTo(e, "/entries")
	}
}
