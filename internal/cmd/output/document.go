package output

import (
	"io"

	"github.com/agentstation/tablemerge/internal/cmd/table"
)

// Section is a titled table inside a Document.
type Section struct {
	Title string
	Data  table.Data
}

// Document is a human-oriented rendering of a result: a summary line,
// titled tables and trailing notes. Table and markdown output render
// documents; JSON and YAML output render the raw value instead.
type Document struct {
	Title    string
	Summary  string
	Sections []Section
	Notes    []string
	// Code is an optional trailing code block, such as rendered SQL.
	Code         string
	CodeLanguage string
}

// Add appends a section.
func (d *Document) Add(title string, data table.Data) *Document {
	d.Sections = append(d.Sections, Section{Title: title, Data: data})
	return d
}

// Note appends a trailing note.
func (d *Document) Note(text string) *Document {
	d.Notes = append(d.Notes, text)
	return d
}

// Render writes raw for machine formats and doc for human formats.
func Render(w io.Writer, format Format, raw any, doc func() Document) error {
	formatter := NewFormatter(format)
	switch format {
	case FormatJSON, FormatYAML:
		return formatter.Format(w, raw)
	default:
		return formatter.Format(w, doc())
	}
}
