package export

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

const docxContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const docxRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const (
	docxHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`
	docxFooter = `</w:body></w:document>`
)

// renderDOCX writes a minimal WordprocessingML package: one bold paragraph
// for the title and one paragraph per line of each section.
func renderDOCX(title string, sections []Section) ([]byte, error) {
	var doc bytes.Buffer
	doc.WriteString(docxHeader)
	if title != "" {
		if err := writeParagraph(&doc, title, true); err != nil {
			return nil, err
		}
	}
	for _, s := range sections {
		for _, line := range strings.Split(strings.TrimSpace(s.Text), "\n") {
			if err := writeParagraph(&doc, line, false); err != nil {
				return nil, err
			}
		}
		doc.WriteString("<w:p/>")
	}
	doc.WriteString(docxFooter)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	parts := []struct {
		name string
		body []byte
	}{
		{"[Content_Types].xml", []byte(docxContentTypes)},
		{"_rels/.rels", []byte(docxRels)},
		{"word/document.xml", doc.Bytes()},
	}
	for _, p := range parts {
		w, err := zw.Create(p.name)
		if err != nil {
			return nil, fmt.Errorf("docx %s: %w", p.name, err)
		}
		if _, err := w.Write(p.body); err != nil {
			return nil, fmt.Errorf("docx %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("docx close: %w", err)
	}
	return buf.Bytes(), nil
}

func writeParagraph(buf *bytes.Buffer, text string, bold bool) error {
	buf.WriteString("<w:p><w:r>")
	if bold {
		buf.WriteString("<w:rPr><w:b/></w:rPr>")
	}
	buf.WriteString(`<w:t xml:space="preserve">`)
	if err := xml.EscapeText(buf, []byte(text)); err != nil {
		return err
	}
	buf.WriteString("</w:t></w:r></w:p>")
	return nil
}
