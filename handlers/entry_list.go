package handlers

import (
	"net/url"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/pocketbase/pocketbase/core"

	"margintracker/services"
	"margintracker/templates"
)

// filterFromQuery reads the table filters from the query string.
func filterFromQuery(q url.Values) services.FilterCriteria {
	return services.FilterCriteria{
		Status:  strings.TrimSpace(q.Get("status")),
		Project: strings.TrimSpace(q.Get("project")),
		Vendor:  strings.TrimSpace(q.Get("vendor")),
		Site:    strings.TrimSpace(q.Get("site")),
		Bucket:  services.ParseMarginBucket(q.Get("margin")),
	}
}

// encodeFilter is the inverse of filterFromQuery; inactive filters are left
// out.
func encodeFilter(c services.FilterCriteria) string {
	q := url.Values{}
	if c.Status != "" && c.Status != "All" {
		q.Set("status", c.Status)
	}
	if c.Project != "" {
		q.Set("project", c.Project)
	}
	if c.Vendor != "" {
		q.Set("vendor", c.Vendor)
	}
	if c.Site != "" {
		q.Set("site", c.Site)
	}
	if c.Bucket != services.BucketAll {
		q.Set("margin", string(c.Bucket))
	}
	return q.Encode()
}

func HandleEntryList(store *services.Store) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		criteria := filterFromQuery(e.Request.URL.Query())

		all := store.Entries()
		var rows []templates.EntryRow
		var shown []services.Entry
		for i, entry := range all {
			if !criteria.Match(entry) {
				continue
			}
			shown = append(shown, entry)
			rows = append(rows, templates.EntryRow{
				Position: i + 1,
				Entry:    entry,
				Class:    entry.Class(),
			})
		}

		data := templates.EntryListData{
			Rows:        rows,
			Total:       len(all),
			Filtered:    !criteria.IsEmpty(),
			Filter:      criteria,
			Statuses:    templates.StatusOptions(criteria.Status, true),
			Projects:    services.ProjectOptions,
			Buckets:     templates.BucketOptions(criteria.Bucket),
			Summary:     services.Summarize("", shown, time.Now()),
			FilterQuery: encodeFilter(criteria),
		}

		var component templ.Component
		if isHTMX(e) {
			component = templates.EntryListContent(data)
		} else {
			component = templates.EntryListPage(data, GetHeaderData(e.Request))
		}
		return component.Render(e.Request.Context(), e.Response)
	}
}
