package output

import (
	"fmt"
	"io"
	"strings"

	md "github.com/nao1215/markdown"
)

// MarkdownFormatter outputs markdown documents.
type MarkdownFormatter struct{}

// Format writes documents and tables as markdown. Other values are
// embedded as a JSON code block.
func (f *MarkdownFormatter) Format(w io.Writer, data any) error {
	switch v := data.(type) {
	case Document:
		return f.formatDocument(w, v)
	case Data:
		return md.NewMarkdown(w).Table(md.TableSet{Header: v.Headers, Rows: v.Rows}).Build()
	default:
		doc := md.NewMarkdown(w)
		var buf strings.Builder
		if err := (&JSONFormatter{Indent: "  "}).Format(&buf, data); err != nil {
			return err
		}
		return doc.CodeBlocks(md.SyntaxHighlight("json"), buf.String()).Build()
	}
}

func (f *MarkdownFormatter) formatDocument(w io.Writer, d Document) error {
	doc := md.NewMarkdown(w)
	if d.Title != "" {
		doc.H1(d.Title).LF()
	}
	if d.Summary != "" {
		doc.PlainText(d.Summary).LF()
	}
	for _, s := range d.Sections {
		doc.H2(s.Title).LF()
		if len(s.Data.Rows) == 0 {
			doc.PlainText(md.Italic("none")).LF()
			continue
		}
		doc.Table(md.TableSet{Header: s.Data.Headers, Rows: s.Data.Rows}).LF()
	}
	if len(d.Notes) > 0 {
		doc.H2("Notes").LF()
		doc.BulletList(d.Notes...).LF()
	}
	if d.Code != "" {
		doc.CodeBlocks(md.SyntaxHighlight(d.CodeLanguage), d.Code)
	}
	if err := doc.Build(); err != nil {
		return fmt.Errorf("rendering markdown: %w", err)
	}
	return nil
}
