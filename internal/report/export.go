package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/erazemk/cssd/internal/model"
)

// ExportHeaders are the column headers of an exported consumption report.
var ExportHeaders = []string{
	"Surgery ID", "Surgery Type", "Department", "Date",
	"Before Count", "After Count", "Consumed", "Items Used",
}

const utf8BOM = "\ufeff"

// ExportDate formats a record date as DD/MM/YYYY. Dates that do not parse
// are returned unchanged.
func ExportDate(s string) string {
	day, ok := ParseDay(s)
	if !ok {
		return s
	}
	return day.Format("02/01/2006")
}

func exportCount(c model.Count) string {
	if c == 0 {
		return ""
	}
	return strconv.Itoa(int(c))
}

func exportRow(r model.ConsumptionRecord) []string {
	return []string{
		r.ID,
		r.Type,
		r.Dept,
		ExportDate(r.Date),
		exportCount(r.Before),
		exportCount(r.After),
		exportCount(r.Used),
		r.Items.Display(),
	}
}

// WriteCSV writes records as a spreadsheet-friendly CSV with a UTF-8 BOM.
func WriteCSV(w io.Writer, records []model.ConsumptionRecord) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeaders); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(exportRow(r)); err != nil {
			return fmt.Errorf("writing csv row %s: %w", r.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}

// Sheet names used by WriteXLSX.
const (
	RecordsSheet = "Consumption"
	SummarySheet = "Summary"
)

// WriteXLSX writes the report as an Excel workbook with a records sheet and a
// summary sheet.
func WriteXLSX(w io.Writer, rep ConsumptionReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", RecordsSheet); err != nil {
		return fmt.Errorf("naming records sheet: %w", err)
	}
	boldStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	records := &sheetWriter{f: f, sheet: RecordsSheet}
	for i, h := range ExportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		records.value(col+"1", h)
		records.style(col+"1", col+"1", boldStyle)
	}
	for i, r := range rep.Records {
		row := i + 2
		records.value(fmt.Sprintf("A%d", row), r.ID)
		records.value(fmt.Sprintf("B%d", row), r.Type)
		records.value(fmt.Sprintf("C%d", row), r.Dept)
		records.value(fmt.Sprintf("D%d", row), ExportDate(r.Date))
		records.value(fmt.Sprintf("E%d", row), int(r.Before))
		records.value(fmt.Sprintf("F%d", row), int(r.After))
		records.value(fmt.Sprintf("G%d", row), int(r.Used))
		records.value(fmt.Sprintf("H%d", row), r.Items.Display())
	}
	widths := []float64{14, 20, 18, 12, 13, 12, 11, 40}
	for i, width := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		records.width(col, width)
	}
	if records.err != nil {
		return records.err
	}

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("creating summary sheet: %w", err)
	}
	summary := &sheetWriter{f: f, sheet: SummarySheet}
	lines := [][]any{
		{"Total Consumption", rep.Summary.TotalConsumption},
		{"Total Surgeries", rep.Summary.TotalSurgeries},
		{"Average per Surgery", rep.Summary.AveragePerSurgery},
	}
	for i, line := range lines {
		row := i + 1
		summary.value(fmt.Sprintf("A%d", row), line[0])
		summary.value(fmt.Sprintf("B%d", row), line[1])
		summary.style(fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), boldStyle)
	}
	row := len(lines) + 2
	summary.value(fmt.Sprintf("A%d", row), "Department")
	summary.value(fmt.Sprintf("B%d", row), "Consumed")
	summary.style(fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), boldStyle)
	for _, d := range rep.Departments {
		row++
		summary.value(fmt.Sprintf("A%d", row), d.Department)
		summary.value(fmt.Sprintf("B%d", row), d.Count)
	}
	summary.width("A", 22)
	if summary.err != nil {
		return summary.err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// sheetWriter writes cells to one sheet and keeps the first error. Later
// writes are skipped once one has failed.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	err   error
}

func (s *sheetWriter) value(cell string, v any) {
	if s.err != nil {
		return
	}
	if err := s.f.SetCellValue(s.sheet, cell, v); err != nil {
		s.err = fmt.Errorf("writing %s!%s: %w", s.sheet, cell, err)
	}
}

func (s *sheetWriter) style(from, to string, style int) {
	if s.err != nil {
		return
	}
	if err := s.f.SetCellStyle(s.sheet, from, to, style); err != nil {
		s.err = fmt.Errorf("styling %s!%s:%s: %w", s.sheet, from, to, err)
	}
}

func (s *sheetWriter) width(col string, w float64) {
	if s.err != nil {
		return
	}
	if err := s.f.SetColWidth(s.sheet, col, col, w); err != nil {
		s.err = fmt.Errorf("sizing %s column %s: %w", s.sheet, col, err)
	}
}
