// Package templates renders the HTML views. Every exported view is a
// templ.Component so handlers can pick the partial or the full-page variant
// and call Render the same way for both.
package templates

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"strings"

	"github.com/a-h/templ"

	"margintracker/services"
)

//go:embed views/*.html
var viewFS embed.FS

var views = template.Must(template.New("views").Funcs(template.FuncMap{
	"amount":      services.FormatAmount,
	"number":      services.FormatNumber,
	"qty":         services.FormatQty,
	"percent":     services.FormatPercent,
	"displayDate": services.FormatDisplayDate,
	"isoDate":     services.FormatDate,
	"projectName": services.ProjectLabel,
	"classCSS":    classCSS,
	"pathEscape":  url.PathEscape,
	"lower":       strings.ToLower,
}).ParseFS(viewFS, "views/*.html"))

// view returns a component that executes the named template with data.
func view(name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := views.ExecuteTemplate(w, name, data); err != nil {
			return fmt.Errorf("render %s: %w", name, err)
		}
		return nil
	})
}

type page struct {
	Header HeaderData
	Body   template.HTML
}

// layout renders content inside the application shell.
func layout(header HeaderData, content templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var body bytes.Buffer
		if err := content.Render(ctx, &body); err != nil {
			return err
		}
		return view("layout", page{Header: header, Body: template.HTML(body.String())}).Render(ctx, w)
	})
}

func classCSS(c services.MarginClass) string {
	switch c {
	case services.MarginHealthy:
		return "margin-healthy"
	case services.MarginBelowTarget:
		return "margin-below"
	default:
		return "margin-loss"
	}
}
