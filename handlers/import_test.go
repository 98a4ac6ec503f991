package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"margintracker/services"
	"margintracker/testhelpers"
)

func newUploadRequest(t *testing.T, fileName, content string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write([]byte(content))
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/import", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("HX-Request", "true")
	return req
}

func canonicalCSV(rows ...string) string {
	return strings.Join(append([]string{strings.Join(services.CanonicalHeaders(), ",")}, rows...), "\n")
}

func TestHandleImportPage(t *testing.T) {
	store, _ := testhelpers.NewTestStore(t)

	req := httptest.NewRequest(http.MethodGet, "/import", nil)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(req, rec)

	if err := HandleImportPage(store)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(), "Import Master File", "<li>Margin Reason</li>")
}

func TestHandleImportUpload_ExactMatch(t *testing.T) {
	store, _ := testhelpers.NewTestStore(t)
	testhelpers.CreateTestEntry(t, store, "PO-OLD", 1, 1, 1, 1)

	csv := canonicalCSV(
		"Q1,PO-1,PR-1,2024-01-05,Acme,BD,S1,Survey,100,10,0,65,10,0,0,0,Process,",
		"Q2,PO-2,PR-2,05/02/2024,Acme,cme,S2,Survey,100,10,0,75,10,0,0,0,Waiting,low price",
		"Q3,PO-3,PR-3,,Beta,XYZ,S3,Cabling,100,10,0,95,10,0,0,0,Claimed,",
	)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(newUploadRequest(t, "march.csv", csv), rec)

	if err := HandleImportUpload(store)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	testhelpers.AssertHXRedirect(t, rec.Header().Get("HX-Redirect"), "/entries")
	entries := store.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].POHuawei != "PO-1" || entries[0].MarginPct != 35 {
		t.Errorf("unexpected first entry %+v", entries[0])
	}
	if entries[1].Project != "CME" || entries[2].Project != services.NonProjectCode {
		t.Errorf("expected normalized projects, got %q and %q", entries[1].Project, entries[2].Project)
	}
	if store.SourceFilename() != "march.csv" {
		t.Errorf("expected source filename march.csv, got %q", store.SourceFilename())
	}
}

func TestHandleImportUpload_MissingColumnShowsMapping(t *testing.T) {
	store, _ := testhelpers.NewTestStore(t)
	testhelpers.CreateTestEntry(t, store, "PO-KEEP", 1, 1, 1, 1)

	csv := "po huawei,Vendor Name,Po Huawei(Unit Price),Requested Qty,Extra\nPO-9,Acme,100,2,x\n"
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(newUploadRequest(t, "partial.csv", csv), rec)

	if err := HandleImportUpload(store)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	body := rec.Body.String()
	testhelpers.AssertHTMLContains(t, body,
		"Match Columns", `name="map_po_huawei"`, `name="sheet_json"`,
		`<option value="po huawei" selected>`, "Not used: Extra")
	if store.Len() != 1 || store.Entries()[0].POHuawei != "PO-KEEP" {
		t.Error("expected store untouched while mapping is pending")
	}
}

func TestHandleImportUpload_UnsupportedFormat(t *testing.T) {
	store, _ := testhelpers.NewTestStore(t)

	rec := httptest.NewRecorder()
	e := newTestRequestEvent(newUploadRequest(t, "notes.txt", "hello"), rec)

	if err := HandleImportUpload(store)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
	if toast := decodeToast(t, rec); toast["message"] != services.ErrUnsupportedFormat.Error() {
		t.Errorf("unexpected toast %v", toast)
	}
}

func TestHandleImportApply(t *testing.T) {
	store, _ := testhelpers.NewTestStore(t)

	sheet := services.SheetData{
		FileName: "legacy.xlsx",
		Headers:  []string{"PO", "Vendor", "Client Price", "Req"},
		Rows: [][]string{
			{"PO-1", "Acme", "100", "10"},
			{"PO-2", "Beta", "50", "4"},
		},
	}
	raw, _ := json.Marshal(sheet)

	form := url.Values{}
	form.Set("sheet_json", string(raw))
	form.Set("map_"+services.ColPOHuawei, "PO")
	form.Set("map_"+services.ColVendorName, "Vendor")
	form.Set("map_"+services.ColClientUnitPrice, "Client Price")
	form.Set("map_"+services.ColRequestedQty, "Req")

	rec := httptest.NewRecorder()
	e := newTestRequestEvent(newFormRequest("/import/apply", form), rec)

	if err := HandleImportApply(store)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	testhelpers.AssertHXRedirect(t, rec.Header().Get("HX-Redirect"), "/entries")
	entries := store.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	got := entries[1]
	if got.VendorName != "Beta" || got.ClientTotal != 200 {
		t.Errorf("unexpected mapped entry %+v", got)
	}
	if got.Status != services.StatusProcess || got.Project != services.NonProjectCode {
		t.Errorf("expected defaults for ignored columns, got status %q project %q", got.Status, got.Project)
	}
	if store.SourceFilename() != "legacy.xlsx" {
		t.Errorf("expected source filename legacy.xlsx, got %q", store.SourceFilename())
	}
}

func TestHandleImportApply_BadPayload(t *testing.T) {
	store, _ := testhelpers.NewTestStore(t)

	form := url.Values{}
	form.Set("sheet_json", "{not json")
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(newFormRequest("/import/apply", form), rec)

	if err := HandleImportApply(store)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
}

func TestHandleImportApply_UnknownSourceColumn(t *testing.T) {
	store, _ := testhelpers.NewTestStore(t)

	raw, _ := json.Marshal(services.SheetData{FileName: "a.csv", Headers: []string{"PO"}, Rows: [][]string{{"1"}}})
	form := url.Values{}
	form.Set("sheet_json", string(raw))
	form.Set("map_"+services.ColPOHuawei, "Nope")
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(newFormRequest("/import/apply", form), rec)

	if err := HandleImportApply(store)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
	if store.Len() != 0 {
		t.Errorf("expected no entries, got %d", store.Len())
	}
}
