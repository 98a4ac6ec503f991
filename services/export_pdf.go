package services

import (
	"fmt"
	"strconv"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// pdfClassColors mirrors the spreadsheet margin palette.
var pdfClassColors = map[MarginClass]*props.Color{
	MarginHealthy:     {Red: 198, Green: 246, Blue: 213},
	MarginBelowTarget: {Red: 255, Green: 243, Blue: 205},
	MarginLossRisk:    {Red: 248, Green: 215, Blue: 218},
}

// GenerateMarginReportPDF renders a landscape A4 margin report: summary
// figures for all entries followed by one line per flagged entry, that is
// every entry below the healthy threshold.
func GenerateMarginReportPDF(summary MarginSummary, entries []Entry) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Horizontal).
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).
		WithTopMargin(10).
		WithRightMargin(10).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)

	addReportHeader(m, summary)
	addReportSummary(m, summary)
	addEntryTableHeader(m)
	flagged := 0
	for i, e := range entries {
		if e.Class() == MarginHealthy {
			continue
		}
		addEntryRow(m, i+1, e)
		flagged++
	}
	if flagged == 0 {
		m.AddRows(row.New(8).Add(
			col.New(12).Add(text.New("No flagged entries.", props.Text{Size: 8, Align: align.Center})),
		))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

func addReportHeader(m core.Maroto, s MarginSummary) {
	m.AddRows(
		row.New(12).Add(
			col.New(12).Add(
				text.New(s.Title, props.Text{
					Size:  16,
					Style: fontstyle.Bold,
					Align: align.Center,
				}),
			),
		),
	)

	grey := &props.Color{Red: 80, Green: 80, Blue: 80}
	m.AddRows(
		row.New(8).Add(
			col.New(6).Add(
				text.New(fmt.Sprintf("Entries: %d", s.EntryCount), props.Text{
					Size: 9, Align: align.Left, Color: grey,
				}),
			),
			col.New(6).Add(
				text.New(fmt.Sprintf("Generated on %s", s.GeneratedDate), props.Text{
					Size: 9, Align: align.Right, Color: grey,
				}),
			),
		),
	)
	m.AddRows(row.New(4))
}

func addReportSummary(m core.Maroto, s MarginSummary) {
	label := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}
	value := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}
	bg := &props.Cell{BackgroundColor: &props.Color{Red: 240, Green: 240, Blue: 240}}

	lines := []struct{ label, value string }{
		{"Total Client PO", FormatAmount(s.TotalClient)},
		{"Total Subcon PO", FormatAmount(s.TotalSubcon)},
		{"Total Profit", FormatAmount(s.TotalProfit)},
		{"Overall Margin", FormatPercent(s.OverallMarginPct)},
	}
	for _, l := range lines {
		m.AddRows(
			row.New(7).Add(
				col.New(8).Add(text.New(l.label, label)).WithStyle(bg),
				col.New(4).Add(text.New(l.value, value)).WithStyle(bg),
			),
		)
	}

	m.AddRows(row.New(3))
	classText := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Center}
	var cols []core.Col
	for _, class := range []MarginClass{MarginHealthy, MarginBelowTarget, MarginLossRisk} {
		cols = append(cols,
			col.New(4).Add(
				text.New(fmt.Sprintf("%s: %d", class, s.ClassCounts[class]), classText),
			).WithStyle(&props.Cell{BackgroundColor: pdfClassColors[class]}),
		)
	}
	m.AddRows(row.New(8).Add(cols...))
	m.AddRows(row.New(6))
}

func addEntryTableHeader(m core.Maroto) {
	headerCell := &props.Cell{BackgroundColor: &props.Color{Red: 33, Green: 37, Blue: 41}}
	headerText := props.Text{
		Size:  8,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
	}

	headers := []struct {
		title string
		size  int
	}{
		{"#", 1}, {"PO Huawei", 2}, {"Vendor", 2}, {"Project", 1}, {"Site ID", 1},
		{"Total", 1}, {"Sub Total", 1}, {"Profit", 1}, {"Margin%", 1}, {"Status", 1},
	}
	var cols []core.Col
	for _, h := range headers {
		cols = append(cols, col.New(h.size).Add(text.New(h.title, headerText)).WithStyle(headerCell))
	}
	m.AddRows(row.New(8).Add(cols...))
}

func addEntryRow(m core.Maroto, n int, e Entry) {
	base := props.Text{Size: 7, Align: align.Center}
	left := base
	left.Align = align.Left
	right := base
	right.Align = align.Right
	marginText := base
	marginText.Style = fontstyle.Bold

	m.AddRows(
		row.New(7).Add(
			col.New(1).Add(text.New(strconv.Itoa(n), base)),
			col.New(2).Add(text.New(e.POHuawei, left)),
			col.New(2).Add(text.New(e.VendorName, left)),
			col.New(1).Add(text.New(e.Project, base)),
			col.New(1).Add(text.New(e.SiteID, base)),
			col.New(1).Add(text.New(FormatNumber(e.ClientTotal), right)),
			col.New(1).Add(text.New(FormatNumber(e.SubTotal), right)),
			col.New(1).Add(text.New(FormatNumber(e.Profit), right)),
			col.New(1).Add(text.New(FormatPercent(e.MarginPct), marginText)).
				WithStyle(&props.Cell{BackgroundColor: pdfClassColors[e.Class()]}),
			col.New(1).Add(text.New(e.Status, base)),
		),
	)
}
