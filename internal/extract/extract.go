// Package extract walks an opened Other Support document into raw field
// records, then builds the validated profile from them.
//
// Extraction is a single read-only pass over the document's paragraphs
// and tables in order. Section headers switch the current section; inside
// a support section each "Title:" label opens a new entry, inline labels
// fill its fields, and unlabeled paragraphs continue the most recent
// field. Tables either carry person-month commitments for the entry being
// built or whole entries mapped by their column headers. Extraction never
// fails; hard failures happen earlier (unreadable container) or later
// (structurally impossible record in Build).
package extract

import (
	"sort"
	"strings"

	"github.com/miriam/othersupport-converter/internal/docx"
)

// RawProfile is the unvalidated output of the document walk.
type RawProfile struct {
	NameText  string
	Positions []RawPosition
	Supports  []RawSupport
}

// RawSupport holds one support entry's values exactly as the document
// carried them, cleaned of decoration but not yet validated.
type RawSupport struct {
	Section       string
	ProjectTitle  string
	AwardNumber   string
	SupportSource string
	Location      string
	StatusText    string
	Role          string
	PDPI          string
	DatesText     string
	AmountText    string
	Objectives    string
	Overlap       string
	Commitment    []RawPersonMonth
}

// RawPersonMonth is one (year, effort) pair from a commitment table.
type RawPersonMonth struct {
	YearText   string
	EffortText string
}

// RawPosition is one data row of a positions table.
type RawPosition struct {
	Title     string
	OrgName   string
	City      string
	State     string
	Country   string
	StartText string
	EndText   string
}

// Extract walks the document blocks in order and gathers raw records.
func Extract(doc *docx.Document) *RawProfile {
	ex := extractor{section: SectionCurrent}
	for _, block := range doc.Blocks() {
		switch b := block.(type) {
		case *docx.Paragraph:
			ex.paragraph(CleanText(b.Text()))
		case *docx.Table:
			ex.table(b)
		}
	}
	ex.flush()
	return &ex.raw
}

// extractor carries the walk state: the current section, the entry being
// built, and the last matched field for continuation lines.
type extractor struct {
	raw       RawProfile
	section   string
	cur       *RawSupport
	lastField string
}

// flush appends the entry being built, if any.
func (ex *extractor) flush() {
	if ex.cur != nil {
		ex.raw.Supports = append(ex.raw.Supports, *ex.cur)
		ex.cur = nil
	}
}

func (ex *extractor) paragraph(text string) {
	if text == "" {
		return
	}

	if name, ok := matchName(text); ok {
		ex.raw.NameText = name
		return
	}

	if section, ok := matchSection(text); ok {
		ex.flush()
		ex.section = section
		ex.lastField = ""
		return
	}

	if ex.section == SectionPositions {
		// The positions section is tabular; stray prose carries nothing.
		return
	}

	// Any "Title:" label starts a new entry in the current section.
	if reTitle.MatchString(text) {
		ex.flush()
		ex.cur = &RawSupport{Section: ex.section}
		ex.lastField = ""
	}

	if ex.cur == nil {
		return
	}

	ex.scanLabels(text)
}

type labelMatch struct {
	start, end int
	key        string
}

// scanLabels finds every inline label in the paragraph and assigns each
// label the text up to the next label. Text before the first label, or a
// paragraph with no label at all, continues the previously matched field.
func (ex *extractor) scanLabels(text string) {
	var matches []labelMatch
	for _, fl := range fieldLabels {
		for _, loc := range fl.re.FindAllStringIndex(text, -1) {
			matches = append(matches, labelMatch{start: loc[0], end: loc[1], key: fl.key})
		}
	}

	if len(matches) == 0 {
		if ex.lastField != "" {
			ex.setField(ex.lastField, text, true)
		}
		return
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].start < matches[j].start })

	if matches[0].start > 0 && ex.lastField != "" {
		if pre := strings.Trim(text[:matches[0].start], " *_"); pre != "" {
			ex.setField(ex.lastField, pre, true)
		}
	}

	for i, m := range matches {
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1].start
		}
		val := strings.Trim(text[m.end:end], " *_")
		ex.lastField = m.key
		ex.setField(m.key, val, false)
	}
}

// setField stores val on the entry being built. Append mode joins with a
// space, for continuation lines.
func (ex *extractor) setField(key, val string, appendTo bool) {
	if val == "" || ex.cur == nil {
		return
	}
	set := func(dst *string) {
		if appendTo && *dst != "" {
			*dst += " " + val
			return
		}
		*dst = val
	}
	switch key {
	case fieldTitle:
		set(&ex.cur.ProjectTitle)
	case fieldNumber:
		set(&ex.cur.AwardNumber)
	case fieldSource:
		set(&ex.cur.SupportSource)
	case fieldPlace:
		set(&ex.cur.Location)
	case fieldAmount:
		set(&ex.cur.AmountText)
	case fieldGoals:
		set(&ex.cur.Objectives)
	case fieldOverlap:
		set(&ex.cur.Overlap)
	case fieldStatus:
		set(&ex.cur.StatusText)
	case fieldRole:
		set(&ex.cur.Role)
	case fieldPDPI:
		set(&ex.cur.PDPI)
	case fieldDates:
		// Date ranges never continue across paragraphs.
		if !appendTo {
			ex.cur.DatesText = val
		}
	case fieldMonths:
		// Stopper: a commitment table follows; prose after it is noise.
	}
}
