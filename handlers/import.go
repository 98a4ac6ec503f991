package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"slices"

	"github.com/a-h/templ"
	"github.com/pocketbase/pocketbase/core"

	"margintracker/services"
	"margintracker/templates"
)

func renderImport(e *core.RequestEvent, data templates.ImportData) error {
	data.Headers = services.CanonicalHeaders()
	var component templ.Component
	if isHTMX(e) {
		component = templates.ImportContent(data)
	} else {
		component = templates.ImportPage(data, GetHeaderData(e.Request))
	}
	return component.Render(e.Request.Context(), e.Response)
}

func HandleImportPage(store *services.Store) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		return renderImport(e, templates.ImportData{})
	}
}

// HandleImportUpload reads the uploaded file and adopts it directly when its
// headers match the master file. Otherwise it renders the column mapping
// form, carrying the parsed sheet along as JSON.
// Route: POST /import
func HandleImportUpload(store *services.Store) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		// Parse multipart form (max 10MB)
		if err := e.Request.ParseMultipartForm(10 << 20); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "File too large or invalid form data")
		}

		file, header, err := e.Request.FormFile("file")
		if err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Please select a file to upload")
		}
		defer file.Close()

		sheet, err := services.ReadSheet(file, header.Filename)
		if err != nil {
			log.Printf("import: could not read %s: %v", header.Filename, err)
			msg := "Could not read the file. Please check it is a valid spreadsheet."
			if errors.Is(err, services.ErrUnsupportedFormat) || errors.Is(err, services.ErrNoHeader) {
				msg = err.Error()
			}
			return ErrorToast(e, http.StatusBadRequest, msg)
		}

		result := services.Reconcile(sheet)
		if !result.NeedsMapping {
			return adoptImport(e, store, result.Entries, sheet.FileName)
		}

		sheetJSON, err := json.Marshal(sheet)
		if err != nil {
			log.Printf("import: marshal sheet: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		data := mappingData(sheet, result.Proposal, result.Missing, string(sheetJSON))
		SetToast(e, ToastWarning, "Columns do not match the master file. Please map them.")

		var component templ.Component
		if isHTMX(e) {
			component = templates.MappingContent(data)
		} else {
			component = templates.MappingPage(data, GetHeaderData(e.Request))
		}
		return component.Render(e.Request.Context(), e.Response)
	}
}

// HandleImportApply builds entries from the confirmed column mapping.
// Route: POST /import/apply
func HandleImportApply(store *services.Store) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}

		var sheet services.SheetData
		if err := json.Unmarshal([]byte(e.Request.FormValue("sheet_json")), &sheet); err != nil {
			log.Printf("import_apply: invalid sheet payload: %v", err)
			return ErrorToast(e, http.StatusBadRequest, "The upload has expired. Please upload the file again.")
		}

		mapping := make(services.ColumnMapping, len(services.CanonicalColumns))
		for _, c := range services.CanonicalColumns {
			mapping[c.Key] = e.Request.FormValue("map_" + c.Key)
		}

		entries, err := services.ApplyMapping(&sheet, mapping)
		if err != nil {
			log.Printf("import_apply: %v", err)
			return ErrorToast(e, http.StatusBadRequest, err.Error())
		}
		return adoptImport(e, store, entries, sheet.FileName)
	}
}

func adoptImport(e *core.RequestEvent, store *services.Store, entries []services.Entry, fileName string) error {
	res := store.Replace(entries, fileName)
	log.Printf("import: adopted %d entries from %s\n", len(entries), fileName)
	saveToast(e, store, res, fmt.Sprintf("Imported %d entries from %s", len(entries), fileName))
	return redirectTo(e, "/entries")
}

func mappingData(sheet *services.SheetData, proposal services.ColumnMapping, missing []string, sheetJSON string) templates.MappingData {
	data := templates.MappingData{
		FileName:  sheet.FileName,
		SheetJSON: sheetJSON,
		RowCount:  len(sheet.Rows),
		Missing:   missing,
	}

	used := make(map[string]bool)
	for _, c := range services.CanonicalColumns {
		source := proposal[c.Key]
		used[source] = true
		data.Rows = append(data.Rows, templates.MappingRow{
			Key:     c.Key,
			Header:  c.Header,
			Missing: slices.Contains(missing, c.Header),
			Options: templates.HeaderOptions(sheet.Headers, source),
		})
	}
	for _, h := range sheet.Headers {
		if h != "" && !used[h] {
			data.Extra = append(data.Extra, h)
		}
	}
	return data
}
