package handlers

import (
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase/core"

	"margintracker/services"
)

// sanitizeFilename replaces characters that are unsafe in a
// Content-Disposition filename.
func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	s = strings.ReplaceAll(s, ":", "-")
	s = strings.ReplaceAll(s, `"`, "")
	return s
}

// exportFilename is the remembered source filename with an .xlsx extension.
func exportFilename(source string) string {
	name := sanitizeFilename(filepath.Base(source))
	if name == "" || name == "." {
		name = services.DefaultSourceFilename
	}
	if ext := strings.ToLower(filepath.Ext(name)); ext != ".xlsx" {
		name = strings.TrimSuffix(name, filepath.Ext(name)) + ".xlsx"
	}
	return name
}

// HandleExportExcel downloads the full master file.
func HandleExportExcel(store *services.Store) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		xlsxBytes, err := services.GenerateMasterExcel(store.Entries())
		if err != nil {
			log.Printf("export_excel: failed to generate: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to generate Excel file")
		}

		filename := exportFilename(store.SourceFilename())

		e.Response.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(xlsxBytes)
		return nil
	}
}

// HandleExportPDF downloads the margin report for the entries matching the
// current table filters.
func HandleExportPDF(store *services.Store) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		criteria := filterFromQuery(e.Request.URL.Query())
		entries := services.Filter(store.Entries(), criteria)

		title := "Margin Report"
		if !criteria.IsEmpty() {
			title = "Margin Report (filtered)"
		}
		now := time.Now()
		summary := services.Summarize(title, entries, now)

		pdfBytes, err := services.GenerateMarginReportPDF(summary, entries)
		if err != nil {
			log.Printf("export_pdf: failed to generate: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to generate PDF file")
		}

		base := strings.TrimSuffix(exportFilename(store.SourceFilename()), ".xlsx")
		filename := fmt.Sprintf("%s_margin_report_%s.pdf", base, now.Format("20060102"))

		e.Response.Header().Set("Content-Type", "application/pdf")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(pdfBytes)
		return nil
	}
}
