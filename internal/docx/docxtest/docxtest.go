// Package docxtest assembles minimal .docx containers in memory so tests
// do not need binary fixtures checked into the repository.
package docxtest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"strings"
)

const (
	documentHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`
	documentFooter = `</w:body></w:document>`

	contentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
		`<Default Extension="xml" ContentType="application/xml"/>` +
		`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
		`</Types>`
)

// Builder accumulates body blocks and zips them into a .docx container.
type Builder struct {
	body strings.Builder
}

// New returns an empty document builder.
func New() *Builder {
	return &Builder{}
}

// Paragraph appends a paragraph holding text in a single run.
func (b *Builder) Paragraph(text string) *Builder {
	b.body.WriteString(`<w:p><w:r><w:t xml:space="preserve">`)
	b.escape(text)
	b.body.WriteString(`</w:t></w:r></w:p>`)
	return b
}

// Runs appends a paragraph whose text is split across several runs, the
// way word processors fragment edited text.
func (b *Builder) Runs(texts ...string) *Builder {
	b.body.WriteString(`<w:p>`)
	for _, text := range texts {
		b.body.WriteString(`<w:r><w:t xml:space="preserve">`)
		b.escape(text)
		b.body.WriteString(`</w:t></w:r>`)
	}
	b.body.WriteString(`</w:p>`)
	return b
}

// Table appends a table; each inner slice is one row of cell texts.
func (b *Builder) Table(rows [][]string) *Builder {
	b.body.WriteString(`<w:tbl>`)
	for _, row := range rows {
		b.body.WriteString(`<w:tr>`)
		for _, cell := range row {
			b.body.WriteString(`<w:tc><w:p><w:r><w:t xml:space="preserve">`)
			b.escape(cell)
			b.body.WriteString(`</w:t></w:r></w:p></w:tc>`)
		}
		b.body.WriteString(`</w:tr>`)
	}
	b.body.WriteString(`</w:tbl>`)
	return b
}

// Raw appends a WordprocessingML fragment verbatim, for shapes the other
// helpers do not cover (hyperlinks, tabs, breaks).
func (b *Builder) Raw(fragment string) *Builder {
	b.body.WriteString(fragment)
	return b
}

// Bytes returns the assembled container.
func (b *Builder) Bytes() []byte {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	ct, _ := zw.Create("[Content_Types].xml")
	_, _ = ct.Write([]byte(contentTypes))

	doc, _ := zw.Create("word/document.xml")
	_, _ = doc.Write([]byte(documentHeader + b.body.String() + documentFooter))

	_ = zw.Close()
	return buf.Bytes()
}

func (b *Builder) escape(text string) {
	_ = xml.EscapeText(&b.body, []byte(text))
}
