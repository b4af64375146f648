// Package export assembles a project's rendered blocks into a downloadable
// document and publishes it through object storage.
package export

import (
	"errors"
	"fmt"
	"strings"

	"contentwizard/internal/compose"
	"contentwizard/internal/markdown"
)

// Format is an export file format.
type Format string

const (
	FormatTXT  Format = "txt"
	FormatHTML Format = "html"
	FormatDOCX Format = "docx"
	FormatPDF  Format = "pdf"
)

var (
	// ErrUnsupportedFormat is returned for formats that cannot be produced.
	ErrUnsupportedFormat = errors.New("unsupported export format")

	// ErrStorageUnavailable is returned when no object store is configured.
	ErrStorageUnavailable = errors.New("export storage unavailable")
)

var contentTypes = map[Format]string{
	FormatTXT:  "text/plain; charset=utf-8",
	FormatHTML: "text/html; charset=utf-8",
	FormatDOCX: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// ParseFormat normalizes s. PDF parses but cannot be rendered.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatTXT, FormatHTML, FormatDOCX, FormatPDF:
		return f, nil
	case "":
		return FormatTXT, nil
	}
	return "", fmt.Errorf("format %q: %w", s, ErrUnsupportedFormat)
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	return contentTypes[f]
}

// Section is one rendered block of a document.
type Section struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Sections renders p's selected blocks in display order. Unfilled
// placeholders stay in the text.
func Sections(p *compose.Project) ([]Section, error) {
	blocks := p.OrderedBlocks()
	out := make([]Section, 0, len(blocks))
	for _, pb := range blocks {
		text, err := p.RenderBlock(pb.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, Section{Title: pb.Block.Name, Text: text})
	}
	return out, nil
}

// Render produces the document bytes for sections in format f.
func Render(f Format, title string, sections []Section) ([]byte, error) {
	switch f {
	case FormatTXT:
		return renderText(title, sections), nil
	case FormatHTML:
		parts := make([]markdown.Section, len(sections))
		for i, s := range sections {
			parts[i] = markdown.Section{Heading: s.Title, Source: s.Text}
		}
		doc, err := markdown.Document(title, parts)
		if err != nil {
			return nil, fmt.Errorf("render html: %w", err)
		}
		return []byte(doc), nil
	case FormatDOCX:
		return renderDOCX(title, sections)
	}
	return nil, fmt.Errorf("render %s: %w", f, ErrUnsupportedFormat)
}

func renderText(title string, sections []Section) []byte {
	var b strings.Builder
	if title != "" {
		b.WriteString(title)
		b.WriteString("\n\n")
	}
	for i, s := range sections {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if s.Title != "" {
			b.WriteString(s.Title)
			b.WriteString("\n")
		}
		b.WriteString(strings.TrimSpace(s.Text))
	}
	b.WriteString("\n")
	return []byte(b.String())
}
