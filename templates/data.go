package templates

import (
	"html/template"

	"github.com/a-h/templ"

	"margintracker/services"
)

// HeaderData feeds the top bar of every full page.
type HeaderData struct {
	ActiveNav      string // "entries", "import" or "catalog"
	EntryCount     int
	SourceFilename string
}

// SelectOption is one <option> of a drop-down.
type SelectOption struct {
	Value    string
	Label    string
	Selected bool
}

// EntryRow is one table line. Position is 1-based and only for display.
type EntryRow struct {
	Position int
	Entry    services.Entry
	Class    services.MarginClass
}

// EntryListData is everything the entries table needs.
type EntryListData struct {
	Rows        []EntryRow
	Total       int
	Filtered    bool
	Filter      services.FilterCriteria
	Statuses    []SelectOption
	Projects    []services.ProjectOption // suggestions for the project search
	Buckets     []SelectOption
	Summary     services.MarginSummary
	FilterQuery string // encoded filter, reused by the PDF link
}

// ReportURL links to the margin report for the current filters.
func (d EntryListData) ReportURL() template.URL {
	if d.FilterQuery == "" {
		return "/export/pdf"
	}
	return template.URL("/export/pdf?" + d.FilterQuery)
}

// EntryFormData carries raw form values so invalid input is shown back
// unchanged.
type EntryFormData struct {
	ID       string
	Position int
	IsEdit   bool

	QuotationNo     string
	POHuawei        string
	LinkedPRSubcon  string
	PRDate          string
	VendorName      string
	Project         string
	SiteID          string
	LineItem        string
	ClientUnitPrice string
	RequestedQty    string
	SubconUnitPrice string
	SubconQty       string
	Status          string
	MarginReason    string

	Preview      services.MarginCalc
	PreviewClass services.MarginClass

	Projects  []SelectOption
	Statuses  []SelectOption
	LineItems []string

	Errors map[string]string
}

// Action is the URL the form posts to.
func (d EntryFormData) Action() string {
	if d.IsEdit {
		return "/entries/" + d.ID + "/save"
	}
	return "/entries"
}

// ImportData is the upload page.
type ImportData struct {
	Headers []string
	Error   string
}

// MappingRow is one canonical column and the source header chosen for it.
type MappingRow struct {
	Key     string
	Header  string
	Missing bool
	Options []SelectOption
}

// MappingData is the column reconciliation form shown when an upload does
// not match the canonical headers.
type MappingData struct {
	FileName  string
	SheetJSON string
	RowCount  int
	Missing   []string
	Extra     []string
	Rows      []MappingRow
}

// CatalogData lists the line-item catalog.
type CatalogData struct {
	Items  []string
	Label  string
	Errors map[string]string
}

// StatusOptions builds the status drop-down. withAll prepends the "All"
// choice used by the filter bar. A selected value outside the list, such as
// an imported status, is appended so it stays selectable.
func StatusOptions(selected string, withAll bool) []SelectOption {
	var opts []SelectOption
	if withAll {
		opts = append(opts, SelectOption{Value: "All", Label: "All", Selected: selected == "" || selected == "All"})
	}
	known := withAll && (selected == "" || selected == "All")
	for _, s := range services.StatusOptions {
		opts = append(opts, SelectOption{Value: s, Label: s, Selected: s == selected})
		known = known || s == selected
	}
	if !known && selected != "" {
		opts = append(opts, SelectOption{Value: selected, Label: selected, Selected: true})
	}
	return opts
}

// ProjectSelectOptions builds the project drop-down of the entry form.
func ProjectSelectOptions(selected string) []SelectOption {
	opts := make([]SelectOption, 0, len(services.ProjectOptions))
	for _, p := range services.ProjectOptions {
		opts = append(opts, SelectOption{
			Value:    p.Code,
			Label:    p.Code + " - " + p.Label,
			Selected: p.Code == selected,
		})
	}
	return opts
}

// BucketOptions builds the margin filter drop-down.
func BucketOptions(selected services.MarginBucket) []SelectOption {
	opts := make([]SelectOption, 0, len(services.MarginBucketOptions))
	for _, b := range services.MarginBucketOptions {
		opts = append(opts, SelectOption{Value: string(b.Value), Label: b.Label, Selected: b.Value == selected})
	}
	return opts
}

// HeaderOptions builds a source-header drop-down with an "ignore" choice.
func HeaderOptions(headers []string, selected string) []SelectOption {
	opts := []SelectOption{{Value: "", Label: "(ignore, use default)", Selected: selected == ""}}
	for _, h := range headers {
		opts = append(opts, SelectOption{Value: h, Label: h, Selected: h == selected})
	}
	return opts
}

func EntryListContent(data EntryListData) templ.Component {
	return view("entry_list", data)
}

func EntryListPage(data EntryListData, header HeaderData) templ.Component {
	return layout(header, EntryListContent(data))
}

func EntryFormContent(data EntryFormData) templ.Component {
	return view("entry_form", data)
}

func EntryFormPage(data EntryFormData, header HeaderData) templ.Component {
	return layout(header, EntryFormContent(data))
}

// EntryPreview is the margin preview block of the entry form.
func EntryPreview(data EntryFormData) templ.Component {
	return view("entry_preview", data)
}

func ImportContent(data ImportData) templ.Component {
	return view("import", data)
}

func ImportPage(data ImportData, header HeaderData) templ.Component {
	return layout(header, ImportContent(data))
}

func MappingContent(data MappingData) templ.Component {
	return view("mapping", data)
}

func MappingPage(data MappingData, header HeaderData) templ.Component {
	return layout(header, MappingContent(data))
}

func CatalogContent(data CatalogData) templ.Component {
	return view("catalog", data)
}

func CatalogPage(data CatalogData, header HeaderData) templ.Component {
	return layout(header, CatalogContent(data))
}
