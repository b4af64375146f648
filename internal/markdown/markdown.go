// Package markdown converts generated copy into HTML for the html export.
// Raw HTML in the source is escaped since block content comes from users
// and LLMs.
package markdown

import (
	"bytes"
	gohtml "html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Typographer,
	),
	goldmark.WithRendererOptions(
		html.WithHardWraps(), // copy is written line by line
	),
)

// ToHTML converts Markdown source into an HTML fragment.
func ToHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Section is one part of a Document: an optional plain-text heading and a
// Markdown body.
type Section struct {
	Heading string
	Source  string
}

// Document wraps rendered sections in a standalone HTML page.
func Document(title string, sections []Section) (string, error) {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>")
	b.WriteString(gohtml.EscapeString(title))
	b.WriteString("</title>\n</head>\n<body>\n")
	for _, s := range sections {
		fragment, err := ToHTML(s.Source)
		if err != nil {
			return "", err
		}
		b.WriteString("<section>\n")
		if s.Heading != "" {
			b.WriteString("<h2>")
			b.WriteString(gohtml.EscapeString(s.Heading))
			b.WriteString("</h2>\n")
		}
		b.WriteString(fragment)
		b.WriteString("</section>\n")
	}
	b.WriteString("</body>\n</html>\n")
	return b.String(), nil
}
