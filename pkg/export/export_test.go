package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() Document {
	return Document{
		Title: "Finance Report",
		Sections: []Section{
			{
				Title: "Fee Types",
				Data: Dataset{
					Headers: []string{"Fee Type", "Amount"},
					Rows:    []map[string]string{{"Fee Type": "TUITION", "Amount": "3000"}},
				},
			},
			{
				Title: "Defaulters",
				Data: Dataset{
					Headers: []string{"Student", "Due"},
					Rows: []map[string]string{
						{"Student": "STU-1", "Due": "1200"},
						{"Student": "STU-2"},
					},
				},
			},
		},
	}
}

func TestCSVExporterRendersSections(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDocument())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	assert.Equal(t, []string{
		"Fee Types",
		"Fee Type,Amount",
		"TUITION,3000",
		"",
		"Defaulters",
		"Student,Due",
		"STU-1,1200",
		"STU-2,",
	}, lines)
}

func TestCSVExporterSingleSectionHasNoTitleRow(t *testing.T) {
	doc := Document{Sections: []Section{{Title: "Roster", Data: Dataset{Headers: []string{"ID"}, Rows: []map[string]string{{"ID": "1"}}}}}}
	out, err := NewCSVExporter().Render(doc)
	require.NoError(t, err)
	assert.Equal(t, "ID\n1\n", string(out))
}

func TestRenderersRejectEmptyDocuments(t *testing.T) {
	_, err := NewCSVExporter().Render(Document{})
	assert.Error(t, err)

	_, err = NewPDFExporter().Render(Document{Sections: []Section{{Title: "x"}}})
	assert.Error(t, err)
}

func TestPDFExporterProducesPDF(t *testing.T) {
	doc := sampleDocument()
	for i := 0; i < 60; i++ {
		doc.Sections[1].Data.Rows = append(doc.Sections[1].Data.Rows, map[string]string{"Student": strings.Repeat("long name ", 20), "Due": "10"})
	}

	exporter := NewPDFExporter()
	out, err := exporter.Render(doc)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	assert.Equal(t, "application/pdf", exporter.ContentType())
	assert.Equal(t, "pdf", exporter.Extension())
}
