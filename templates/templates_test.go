package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"margintracker/services"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return buf.String()
}

func TestPagesWrapContentInLayout(t *testing.T) {
	header := HeaderData{ActiveNav: "catalog", EntryCount: 7, SourceFilename: "march.xlsx"}
	body := render(t, CatalogPage(CatalogData{Items: []string{"Drive Test"}}, header))

	for _, want := range []string{"<!DOCTYPE html>", `class="active">Line Items`, "7 entries", "march.xlsx", "<span>Drive Test</span>"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected page to contain %q", want)
		}
	}
}

func TestEntryListContent_EscapesText(t *testing.T) {
	e := services.Entry{ID: "abc", POHuawei: "<b>PO</b>", MarginPct: 12.5}
	data := EntryListData{
		Rows:  []EntryRow{{Position: 1, Entry: e, Class: e.Class()}},
		Total: 1,
	}
	body := render(t, EntryListContent(data))

	if strings.Contains(body, "<b>PO</b>") {
		t.Error("expected entry text to be HTML-escaped")
	}
	if !strings.Contains(body, "margin-loss") || !strings.Contains(body, "12.50%") {
		t.Error("expected loss-risk margin cell")
	}
	if !strings.Contains(body, `href="/export/pdf"`) {
		t.Error("expected unfiltered report link")
	}
}

func TestEntryListData_ReportURL(t *testing.T) {
	d := EntryListData{FilterQuery: "margin=loss&status=Process"}
	body := render(t, EntryListContent(d))
	if !strings.Contains(body, `href="/export/pdf?margin=loss&amp;status=Process"`) {
		t.Errorf("expected filtered report link, got body %s", body)
	}
}

func TestEntryFormContent_Errors(t *testing.T) {
	data := EntryFormData{
		IsEdit:   true,
		ID:       "id-1",
		Position: 3,
		Errors:   map[string]string{services.ColPOHuawei: "PO Huawei is required"},
		Projects: ProjectSelectOptions("BD"),
		Statuses: StatusOptions("Claimed", false),
	}
	body := render(t, EntryFormContent(data))

	for _, want := range []string{"Edit Entry #3", "/entries/id-1/save", "PO Huawei is required", `<option value="BD" selected>`, `<option value="Claimed" selected>`} {
		if !strings.Contains(body, want) {
			t.Errorf("expected form to contain %q", want)
		}
	}
}

func TestStatusOptions(t *testing.T) {
	opts := StatusOptions("Loss Risk", false)
	last := opts[len(opts)-1]
	if last.Value != "Loss Risk" || !last.Selected {
		t.Errorf("expected unknown status appended and selected, got %+v", last)
	}

	opts = StatusOptions("", true)
	if opts[0].Value != "All" || !opts[0].Selected {
		t.Errorf("expected All selected, got %+v", opts[0])
	}
	if len(opts) != len(services.StatusOptions)+1 {
		t.Errorf("expected %d options, got %d", len(services.StatusOptions)+1, len(opts))
	}
}

func TestHeaderOptions(t *testing.T) {
	opts := HeaderOptions([]string{"PO", "Vendor"}, "Vendor")
	if len(opts) != 3 {
		t.Fatalf("expected ignore plus 2 headers, got %d", len(opts))
	}
	if opts[0].Value != "" || opts[0].Selected {
		t.Errorf("unexpected ignore option %+v", opts[0])
	}
	if !opts[2].Selected {
		t.Error("expected Vendor selected")
	}
}

func TestMappingContent(t *testing.T) {
	data := MappingData{
		FileName:  "x.csv",
		SheetJSON: `{"headers":["PO"]}`,
		RowCount:  2,
		Missing:   []string{"Status", "Qty"},
		Rows: []MappingRow{
			{Key: services.ColStatus, Header: "Status", Missing: true, Options: HeaderOptions([]string{"PO"}, "")},
		},
	}
	body := render(t, MappingContent(data))

	for _, want := range []string{"Missing: Status, Qty", `name="map_status"`, "Import 2 rows", `class="missing"`} {
		if !strings.Contains(body, want) {
			t.Errorf("expected mapping form to contain %q", want)
		}
	}
}
