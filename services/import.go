package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrUnsupportedFormat is returned for uploads that are neither .xlsx nor .csv.
	ErrUnsupportedFormat = errors.New("unsupported file format: must be .xlsx or .csv")
	// ErrNoHeader is returned when a file has no header row.
	ErrNoHeader = errors.New("file must contain a header row")
)

// SheetData is an uploaded table: a header row plus raw data rows.
// It round-trips through JSON between the upload and mapping steps.
type SheetData struct {
	FileName string     `json:"file_name"`
	Headers  []string   `json:"headers"`
	Rows     [][]string `json:"rows"`
}

// ReadSheet parses an uploaded .xlsx (first sheet) or .csv file. Blank
// rows are dropped. Zero data rows is not an error here; reconciliation
// decides what to do with an empty sheet.
func ReadSheet(r io.Reader, fileName string) (*SheetData, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx", ".xlsm":
		rows, err = readExcelRows(r)
	case ".csv":
		rows, err = readCSVRows(r)
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 || isBlankRow(rows[0]) {
		return nil, ErrNoHeader
	}

	sheet := &SheetData{FileName: filepath.Base(fileName)}
	for _, h := range rows[0] {
		sheet.Headers = append(sheet.Headers, strings.TrimSpace(h))
	}
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet, nil
}

// Cell returns the value at column idx of row, or "" past the end of a
// short row.
func (s *SheetData) Cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// HeaderIndex returns the position of the first header equal to name
// (case-insensitive), or -1.
func (s *SheetData) HeaderIndex(name string) int {
	for i, h := range s.Headers {
		if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(name)) {
			return i
		}
	}
	return -1
}

func readExcelRows(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	// Raw values keep dates as serial numbers and numbers ungrouped.
	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	return rows, nil
}

func readCSVRows(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return rows, nil
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
