package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet  = "Summary"
	findingsSheet = "Findings"
)

// XLSXExporter renders reports into a workbook with a summary sheet and a findings sheet.
type XLSXExporter struct{}

// NewXLSXExporter constructs an XLSX exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// Render produces the workbook bytes.
func (e *XLSXExporter) Render(report Report) ([]byte, error) {
	if len(report.Table.Headers) == 0 {
		return nil, fmt.Errorf("xlsx requires at least one header")
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("rename summary sheet: %w", err)
	}
	if _, err := f.NewSheet(findingsSheet); err != nil {
		return nil, fmt.Errorf("create findings sheet: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	row := 1
	if report.Title != "" {
		if err := f.SetCellValue(summarySheet, "A1", report.Title); err != nil {
			return nil, fmt.Errorf("set title: %w", err)
		}
		row++
	}
	if report.Subtitle != "" {
		if err := f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), report.Subtitle); err != nil {
			return nil, fmt.Errorf("set subtitle: %w", err)
		}
		row++
	}
	for _, field := range report.Summary {
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", row), &[]interface{}{field.Label, field.Value}); err != nil {
			return nil, fmt.Errorf("set summary row: %w", err)
		}
		row++
	}
	if err := f.SetColWidth(summarySheet, "A", "A", 28); err != nil {
		return nil, fmt.Errorf("set summary width: %w", err)
	}
	if err := f.SetColWidth(summarySheet, "B", "B", 60); err != nil {
		return nil, fmt.Errorf("set summary width: %w", err)
	}

	headers := make([]interface{}, len(report.Table.Headers))
	for i, h := range report.Table.Headers {
		headers[i] = h
	}
	if err := f.SetSheetRow(findingsSheet, "A1", &headers); err != nil {
		return nil, fmt.Errorf("set findings header: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return nil, fmt.Errorf("resolve header range: %w", err)
	}
	if err := f.SetCellStyle(findingsSheet, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, fmt.Errorf("style findings header: %w", err)
	}
	if err := f.SetColWidth(findingsSheet, "A", lastCol, 24); err != nil {
		return nil, fmt.Errorf("set findings width: %w", err)
	}
	for i := range report.Table.Rows {
		values := report.Table.row(i)
		cells := make([]interface{}, len(values))
		for j, v := range values {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("resolve row cell: %w", err)
		}
		if err := f.SetSheetRow(findingsSheet, cell, &cells); err != nil {
			return nil, fmt.Errorf("set findings row: %w", err)
		}
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
