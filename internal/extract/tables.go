package extract

import (
	"regexp"
	"strings"

	"github.com/miriam/othersupport-converter/internal/docx"
)

var (
	yearPattern = regexp.MustCompile(`\b((?:19|20)\d{2})\b`)
	spaceRun    = regexp.MustCompile(`\s+`)
)

// supportColumnNames maps normalized header-cell text to support fields.
// Unrecognized headers are ignored, never an error.
var supportColumnNames = map[string]string{
	"title":                        fieldTitle,
	"project title":                fieldTitle,
	"project number":               fieldNumber,
	"award number":                 fieldNumber,
	"number":                       fieldNumber,
	"source":                       fieldSource,
	"source of support":            fieldSource,
	"sponsor":                      fieldSource,
	"location":                     fieldPlace,
	"place of performance":         fieldPlace,
	"primary place of performance": fieldPlace,
	"dates":                        fieldDates,
	"project dates":                fieldDates,
	"project period":               fieldDates,
	"start and end date":           fieldDates,
	"amount":                       fieldAmount,
	"award amount":                 fieldAmount,
	"total award amount":           fieldAmount,
	"total costs":                  fieldAmount,
	"status":                       fieldStatus,
	"status of support":            fieldStatus,
	"overlap":                      fieldOverlap,
	"goals":                        fieldGoals,
	"major goals":                  fieldGoals,
	"role":                         fieldRole,
}

// positionColumnNames maps normalized header-cell text to position fields.
var positionColumnNames = map[string]string{
	"title":             "title",
	"position":          "title",
	"position title":    "title",
	"organization":      "org",
	"organization name": "org",
	"institution":       "org",
	"city":              "city",
	"state":             "state",
	"state or province": "state",
	"state/province":    "state",
	"country":           "country",
	"start":             "start",
	"start year":        "start",
	"from":              "start",
	"end":               "end",
	"end year":          "end",
	"to":                "end",
}

func (ex *extractor) table(t *docx.Table) {
	if len(t.Rows) == 0 {
		return
	}
	if ex.section == SectionPositions {
		ex.positionsTable(t)
		return
	}
	if cols, ok := supportColumns(t.Rows[0]); ok {
		ex.supportTable(t, cols)
		return
	}
	if ex.cur != nil {
		ex.commitmentTable(t)
	}
}

// normalizeHeader flattens a header cell for column lookup.
func normalizeHeader(text string) string {
	s := strings.ToLower(CleanText(text))
	s = strings.TrimSuffix(s, ":")
	return spaceRun.ReplaceAllString(s, " ")
}

// supportColumns maps column index to field key from a header row. ok is
// true only when the header names a title or number column; any other
// table is left to the commitment scanner.
func supportColumns(header docx.Row) (map[int]string, bool) {
	cols := make(map[int]string)
	anchored := false
	for i, cell := range header.Cells {
		key, known := supportColumnNames[normalizeHeader(cell.Text())]
		if !known {
			continue
		}
		cols[i] = key
		if key == fieldTitle || key == fieldNumber {
			anchored = true
		}
	}
	return cols, anchored && len(cols) >= 2
}

// supportTable maps each data row to one raw entry via the header lookup.
func (ex *extractor) supportTable(t *docx.Table, cols map[int]string) {
	for _, row := range t.Rows[1:] {
		entry := RawSupport{Section: ex.section}
		filled := false
		for i, cell := range row.Cells {
			key, ok := cols[i]
			if !ok {
				continue
			}
			val := CleanText(cell.Text())
			if val == "" {
				continue
			}
			filled = true
			switch key {
			case fieldTitle:
				entry.ProjectTitle = val
			case fieldNumber:
				entry.AwardNumber = val
			case fieldSource:
				entry.SupportSource = val
			case fieldPlace:
				entry.Location = val
			case fieldDates:
				entry.DatesText = val
			case fieldAmount:
				entry.AmountText = val
			case fieldStatus:
				entry.StatusText = val
			case fieldOverlap:
				entry.Overlap = val
			case fieldGoals:
				entry.Objectives = val
			case fieldRole:
				entry.Role = val
			}
		}
		if filled {
			ex.raw.Supports = append(ex.raw.Supports, entry)
		}
	}
}

// commitmentTable appends (year, effort) pairs from a person-month table
// to the entry being built. The first row is skipped when it reads like a
// header; the second column drops any "calendar" qualifier.
func (ex *extractor) commitmentTable(t *docx.Table) {
	rows := t.Rows
	if isCommitmentHeader(rows[0]) {
		rows = rows[1:]
	}
	for _, row := range rows {
		if len(row.Cells) < 2 {
			continue
		}
		year := yearPattern.FindString(CleanText(row.Cells[0].Text()))
		effort := strings.ToLower(CleanText(row.Cells[1].Text()))
		effort = strings.TrimSpace(strings.ReplaceAll(effort, "calendar", ""))
		if year == "" || effort == "" {
			continue
		}
		ex.cur.Commitment = append(ex.cur.Commitment, RawPersonMonth{
			YearText:   year,
			EffortText: effort,
		})
	}
}

// isCommitmentHeader reports whether a commitment table's first row is
// the "Year / Person Months" header rather than data.
func isCommitmentHeader(row docx.Row) bool {
	var joined strings.Builder
	for _, c := range row.Cells {
		joined.WriteString(strings.ToLower(c.Text()))
	}
	s := joined.String()
	return strings.Contains(s, "year") || strings.Contains(s, "month")
}

// positionsTable maps each data row of a positions table to a raw
// position. The header must name a title column; unrecognized headers
// are ignored.
func (ex *extractor) positionsTable(t *docx.Table) {
	if len(t.Rows) < 2 {
		return
	}
	cols := make(map[int]string)
	anchored := false
	for i, cell := range t.Rows[0].Cells {
		key, known := positionColumnNames[normalizeHeader(cell.Text())]
		if !known {
			continue
		}
		cols[i] = key
		if key == "title" {
			anchored = true
		}
	}
	if !anchored {
		return
	}

	for _, row := range t.Rows[1:] {
		var pos RawPosition
		filled := false
		for i, cell := range row.Cells {
			key, ok := cols[i]
			if !ok {
				continue
			}
			val := CleanText(cell.Text())
			if val == "" {
				continue
			}
			filled = true
			switch key {
			case "title":
				pos.Title = val
			case "org":
				pos.OrgName = val
			case "city":
				pos.City = val
			case "state":
				pos.State = val
			case "country":
				pos.Country = val
			case "start":
				pos.StartText = val
			case "end":
				pos.EndText = val
			}
		}
		if filled {
			ex.raw.Positions = append(ex.raw.Positions, pos)
		}
	}
}
