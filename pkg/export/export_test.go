package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Columns: []Column{
			{Key: "recorded_at", Title: "Recorded At", Weight: 2},
			{Key: "location", Title: "Location", Weight: 2},
			{Key: "students", Title: "Students"},
		},
		Rows: []map[string]string{
			{"recorded_at": "2024-06-01T07:30:00Z", "location": "Main Gate, North", "students": "12"},
			{"recorded_at": "2024-06-01T07:10:00Z", "location": "Depot"},
		},
	}
}

func TestCSVExporterUsesColumnOrder(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	expected := "Recorded At,Location,Students\n" +
		"2024-06-01T07:30:00Z,\"Main Gate, North\",12\n" +
		"2024-06-01T07:10:00Z,Depot,\n"
	assert.Equal(t, expected, string(out))
}

func TestCSVExporterRequiresColumns(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterProducesDocument(t *testing.T) {
	data := sampleDataset()
	for i := 0; i < 80; i++ {
		data.Rows = append(data.Rows, map[string]string{"location": "Stop"})
	}

	out, err := NewPDFExporter().Render(data, "Bus location history")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)
	assert.Equal(t, "application/pdf", f.ContentType())

	_, err = ParseFormat("xlsx")
	assert.Error(t, err)
}

func TestColumnWidthsFillPage(t *testing.T) {
	widths := columnWidths(sampleDataset().Columns)
	assert.InDelta(t, pageWidth, widths[0]+widths[1]+widths[2], 0.001)
	assert.InDelta(t, widths[0], 2*widths[2], 0.001)
}
