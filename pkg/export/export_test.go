package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleReport() Report {
	return Report{
		Title:    "Facility Compliance Report",
		Subtitle: "Desert Bloom BHRF",
		Summary: []Field{
			{Label: "In compliance", Value: "No"},
			{Label: "Period", Value: "2025-03-15"},
		},
		Table: Dataset{
			Headers: []string{"Category", "Item", "Finding"},
			Rows: []map[string]string{
				{"Category": "Obligation", "Item": "Fire drill", "Finding": "missing PM shift for March 2025"},
				{"Category": "Document", "Item": "Fire inspection", "Finding": "EXPIRED"},
			},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleReport())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "In compliance,No", lines[0])
	assert.Equal(t, "", strings.TrimSpace(lines[2]))
	assert.Equal(t, "Category,Item,Finding", lines[3])
	assert.Equal(t, "Obligation,Fire drill,missing PM shift for March 2025", lines[4])
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Report{})
	require.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleReport())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestPDFExporterRequiresHeaders(t *testing.T) {
	_, err := NewPDFExporter().Render(Report{Title: "empty"})
	require.Error(t, err)
}

func TestXLSXExporterRender(t *testing.T) {
	out, err := NewXLSXExporter().Render(sampleReport())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue(summarySheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Facility Compliance Report", title)

	label, err := f.GetCellValue(summarySheet, "A3")
	require.NoError(t, err)
	assert.Equal(t, "In compliance", label)

	rows, err := f.GetRows(findingsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Category", "Item", "Finding"}, rows[0])
	assert.Equal(t, "EXPIRED", rows[2][2])
}
