// Package docx reads the body of a Word document container (.docx).
//
// A .docx file is a ZIP archive; the document content lives in the
// word/document.xml part as WordprocessingML. This package decodes that
// part into an ordered sequence of paragraphs and tables with their text,
// which is all the downstream extraction needs. Styling, numbering,
// headers/footers and embedded media are ignored.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

const documentPart = "word/document.xml"

// Document holds the ordered top-level blocks of one document body.
type Document struct {
	blocks []Block
}

// Blocks returns the body's paragraphs and tables in document order.
func (d *Document) Blocks() []Block {
	return d.blocks
}

// Block is a top-level body element: either *Paragraph or *Table.
type Block interface {
	block()
}

// Paragraph is a run of body text. Tabs and line breaks inside the
// paragraph are preserved as '\t' and '\n'.
type Paragraph struct {
	text string
}

func (p *Paragraph) block() {}

// Text returns the concatenated run text of the paragraph.
func (p *Paragraph) Text() string {
	return p.text
}

// Table is a body-level table.
type Table struct {
	Rows []Row
}

func (t *Table) block() {}

// Row is one table row.
type Row struct {
	Cells []Cell
}

// Cell holds the paragraph texts of one table cell.
type Cell struct {
	Paragraphs []string
}

// Text returns the cell's paragraphs joined by newlines.
func (c *Cell) Text() string {
	return strings.Join(c.Paragraphs, "\n")
}

// Open reads and decodes the document at path.
func Open(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Message: fmt.Sprintf("cannot read %s", path), Cause: err}
	}
	return OpenBytes(data)
}

// OpenReader reads and decodes a document from r.
func OpenReader(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Message: "cannot read document stream", Cause: err}
	}
	return OpenBytes(data)
}

// OpenBytes decodes a document already loaded into memory.
func OpenBytes(data []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &ParseError{Message: "not a word document container", Cause: err}
	}

	var part *zip.File
	for _, f := range zr.File {
		if f.Name == documentPart {
			part = f
			break
		}
	}
	if part == nil {
		return nil, &ParseError{Message: "container has no " + documentPart + " part"}
	}

	rc, err := part.Open()
	if err != nil {
		return nil, &ParseError{Message: "cannot open " + documentPart, Cause: err}
	}
	defer rc.Close()

	blocks, err := decodeBody(xml.NewDecoder(rc))
	if err != nil {
		return nil, &ParseError{Message: "malformed " + documentPart, Cause: err}
	}
	return &Document{blocks: blocks}, nil
}

// decodeBody walks the WordprocessingML token stream and collects the
// body's paragraphs and tables in order. Element names are matched by
// local name so the usual "w:" prefix (or any namespace alias) works.
func decodeBody(dec *xml.Decoder) ([]Block, error) {
	var blocks []Block
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return blocks, nil
		}
		if err != nil {
			return nil, err
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "p":
			p, err := decodeParagraph(dec)
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, p)
		case "tbl":
			t, err := decodeTable(dec)
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, t)
		}
	}
}

// decodeParagraph consumes tokens up to the paragraph's end element and
// gathers all <w:t> text. <w:tab> becomes '\t', <w:br>/<w:cr> become '\n'.
func decodeParagraph(dec *xml.Decoder) (*Paragraph, error) {
	var (
		text   strings.Builder
		depth  = 1
		inText bool
	)
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				text.WriteByte('\t')
			case "br", "cr":
				text.WriteByte('\n')
			}
		case xml.EndElement:
			depth--
			if t.Name.Local == "t" {
				inText = false
			}
		case xml.CharData:
			if inText {
				text.Write(t)
			}
		}
	}
	return &Paragraph{text: text.String()}, nil
}

// decodeTable consumes tokens up to the table's end element. Rows and
// cells are tracked for this table only; text inside a nested table still
// contributes to the enclosing cell's paragraphs.
func decodeTable(dec *xml.Decoder) (*Table, error) {
	var (
		tbl      Table
		depth    = 1
		tblDepth = 1
		inText   bool
		paraOpen bool
		para     strings.Builder
		row      *Row
		cell     *Cell
	)
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "tbl":
				tblDepth++
			case "tr":
				if tblDepth == 1 {
					tbl.Rows = append(tbl.Rows, Row{})
					row = &tbl.Rows[len(tbl.Rows)-1]
				}
			case "tc":
				if tblDepth == 1 && row != nil {
					row.Cells = append(row.Cells, Cell{})
					cell = &row.Cells[len(row.Cells)-1]
				}
			case "p":
				paraOpen = true
				para.Reset()
			case "t":
				inText = true
			case "tab":
				if paraOpen {
					para.WriteByte('\t')
				}
			case "br", "cr":
				if paraOpen {
					para.WriteByte('\n')
				}
			}
		case xml.EndElement:
			depth--
			switch t.Name.Local {
			case "tbl":
				if depth > 0 {
					tblDepth--
				}
			case "t":
				inText = false
			case "p":
				if paraOpen && cell != nil {
					cell.Paragraphs = append(cell.Paragraphs, para.String())
				}
				paraOpen = false
			}
		case xml.CharData:
			if inText && paraOpen {
				para.Write(t)
			}
		}
	}
	return &tbl, nil
}
