package export

import "fmt"

// Dataset defines tabular export content.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// Section is a titled table inside a document.
type Section struct {
	Title string
	Data  Dataset
}

// Document groups the sections of one rendered report.
type Document struct {
	Title    string
	Sections []Section
}

// Validate rejects documents that cannot be rendered as tables.
func (d Document) Validate() error {
	if len(d.Sections) == 0 {
		return fmt.Errorf("document requires at least one section")
	}
	for _, section := range d.Sections {
		if len(section.Data.Headers) == 0 {
			return fmt.Errorf("section %q requires at least one header", section.Title)
		}
	}
	return nil
}

// Renderer turns a document into file bytes.
type Renderer interface {
	Render(doc Document) ([]byte, error)
	ContentType() string
	Extension() string
}
