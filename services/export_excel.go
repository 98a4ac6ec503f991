package services

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// MasterSheetName is the worksheet name used by the master file export.
const MasterSheetName = "Master File"

// Number formats of the exported master file.
const (
	numFmtGeneral  = 0 // General
	numFmtInteger  = 1 // 0
	numFmtDecimal2 = 2 // 0.00
	numFmtGrouped2 = 4 // #,##0.00
)

const dateNumFmt = "dd/mm/yyyy"

// marginPalette is the fill and font colour per margin class.
var marginPalette = map[MarginClass]struct{ Fill, Font string }{
	MarginHealthy:     {"#C6F6D5", "#006400"},
	MarginBelowTarget: {"#FFF3CD", "#856404"},
	MarginLossRisk:    {"#F8D7DA", "#FFFFFF"},
}

// GenerateMasterExcel writes all entries to a single-sheet workbook in
// canonical column order and returns the file contents.
func GenerateMasterExcel(entries []Entry) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := MasterSheetName
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	styles, err := newMasterStyles(f)
	if err != nil {
		return nil, err
	}

	widths := make([]int, len(CanonicalColumns))

	// ── Header row ──────────────────────────────────────────────────────
	for i, c := range CanonicalColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, c.Header)
		widths[i] = utf8.RuneCountInString(c.Header)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(CanonicalColumns))
	f.SetCellStyle(sheet, "A1", lastCol+"1", styles.header)

	// ── Data rows ───────────────────────────────────────────────────────
	for r, e := range entries {
		row := r + 2
		for i, c := range CanonicalColumns {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			// Text goes in as a plain string cell, never a formula.
			value := e.Value(c.Key)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("set %s: %w", cell, err)
			}
			if err := f.SetCellStyle(sheet, cell, cell, styles.forColumn(c, e)); err != nil {
				return nil, fmt.Errorf("style %s: %w", cell, err)
			}
			if n := utf8.RuneCountInString(stringifyCell(value)); n > widths[i] {
				widths[i] = n
			}
		}
	}

	// ── Project drop-down ───────────────────────────────────────────────
	if len(entries) > 0 {
		if err := addProjectValidation(f, sheet, len(entries)+1); err != nil {
			return nil, err
		}
	}

	// ── Column widths ───────────────────────────────────────────────────
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, ColumnWidth(w)); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

// ColumnWidth is the auto-size rule: longest value plus padding, scaled.
func ColumnWidth(maxLen int) float64 {
	return float64(maxLen+2) * 1.2
}

type masterStyles struct {
	header, text, money, qty, date int
	margin                          map[MarginClass]int
}

func newMasterStyles(f *excelize.File) (*masterStyles, error) {
	unlocked := &excelize.Protection{Locked: false}
	dateFmt := dateNumFmt

	s := &masterStyles{margin: make(map[MarginClass]int, len(marginPalette))}
	var err error

	if s.header, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Size: 11},
		Border: thinBorders(),
	}); err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	if s.text, err = f.NewStyle(&excelize.Style{NumFmt: numFmtGeneral, Protection: unlocked}); err != nil {
		return nil, fmt.Errorf("create text style: %w", err)
	}
	if s.money, err = f.NewStyle(&excelize.Style{NumFmt: numFmtGrouped2, Protection: unlocked}); err != nil {
		return nil, fmt.Errorf("create money style: %w", err)
	}
	if s.qty, err = f.NewStyle(&excelize.Style{NumFmt: numFmtInteger, Protection: unlocked}); err != nil {
		return nil, fmt.Errorf("create qty style: %w", err)
	}
	if s.date, err = f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt, Protection: unlocked}); err != nil {
		return nil, fmt.Errorf("create date style: %w", err)
	}
	for class, colours := range marginPalette {
		id, err := f.NewStyle(&excelize.Style{
			NumFmt:     numFmtDecimal2,
			Protection: unlocked,
			Font:       &excelize.Font{Bold: true, Color: colours.Font},
			Fill:       excelize.Fill{Type: "pattern", Color: []string{colours.Fill}, Pattern: 1},
		})
		if err != nil {
			return nil, fmt.Errorf("create %s margin style: %w", class, err)
		}
		s.margin[class] = id
	}
	return s, nil
}

func (s *masterStyles) forColumn(c Column, e Entry) int {
	switch c.Kind {
	case KindMoney, KindDerived:
		return s.money
	case KindQty:
		return s.qty
	case KindPercent:
		return s.margin[e.Class()]
	case KindDate:
		return s.date
	default:
		return s.text
	}
}

func addProjectValidation(f *excelize.File, sheet string, lastRow int) error {
	idx := -1
	for i, c := range CanonicalColumns {
		if c.Key == ColProject {
			idx = i
		}
	}
	col, _ := excelize.ColumnNumberToName(idx + 1)

	dv := excelize.NewDataValidation(true)
	dv.Sqref = fmt.Sprintf("%s2:%s%d", col, col, lastRow)
	if err := dv.SetDropList(ProjectCodes()); err != nil {
		return fmt.Errorf("project drop list: %w", err)
	}
	dv.SetError(excelize.DataValidationErrorStyleStop, "Invalid Entry", "Your entry is not in list")
	dv.SetInput("Project Selection", "Please select from the list")
	if err := f.AddDataValidation(sheet, dv); err != nil {
		return fmt.Errorf("add project validation: %w", err)
	}
	return nil
}

// stringifyCell renders a cell value the way the width rule measures it.
// Floats always carry a decimal part and dates a time of day.
func stringifyCell(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		s := strconv.FormatFloat(x, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	case int:
		return strconv.Itoa(x)
	case time.Time:
		return x.Format("2006-01-02 15:04:05")
	}
	return fmt.Sprint(v)
}

// thinBorders returns a slice of excelize.Border for thin borders on all four sides.
func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{
			Type:  side,
			Color: "#000000",
			Style: 1, // thin
		}
	}
	return borders
}
