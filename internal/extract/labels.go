package extract

import (
	"regexp"
	"strings"
)

// Canonical document sections.
const (
	SectionPositions = "positions"
	SectionCurrent   = "current"
	SectionPending   = "pending"
	SectionInKind    = "inkind"
)

// Field keys produced by the label scan and the table column lookups.
const (
	fieldTitle   = "title"
	fieldGoals   = "goals"
	fieldStatus  = "status"
	fieldRole    = "role"
	fieldNumber  = "number"
	fieldPDPI    = "pdpi"
	fieldSource  = "source"
	fieldPlace   = "place"
	fieldDates   = "dates"
	fieldAmount  = "amount"
	fieldOverlap = "overlap"
	fieldMonths  = "months"
)

// fieldLabel pairs a field key with the inline label that introduces it
// in the NIH form text.
type fieldLabel struct {
	key string
	re  *regexp.Regexp
}

var reTitle = regexp.MustCompile(`(?i)Title:\s*`)

// fieldLabels lists the inline labels scanned inside support sections.
// Matches are ordered by their position within the paragraph, so slice
// order here does not matter.
var fieldLabels = []fieldLabel{
	{fieldTitle, reTitle},
	{fieldGoals, regexp.MustCompile(`(?i)Major Goals:\s*`)},
	{fieldStatus, regexp.MustCompile(`(?i)Status of Support:\s*`)},
	{fieldRole, regexp.MustCompile(`(?i)Role:\s*`)},
	{fieldNumber, regexp.MustCompile(`(?i)Project Number:\s*`)},
	{fieldPDPI, regexp.MustCompile(`(?i)Name of PD/PI:\s*`)},
	{fieldSource, regexp.MustCompile(`(?i)Source of Support:\s*`)},
	{fieldPlace, regexp.MustCompile(`(?i)(?:Primary )?Place of Performance:\s*`)},
	{fieldDates, regexp.MustCompile(`(?i)Project.*?Date.*?:`)},
	{fieldAmount, regexp.MustCompile(`(?i)Total Award Amount.*?:`)},
	{fieldOverlap, regexp.MustCompile(`(?i)\*?Overlap\s*:\s*`)},
	{fieldMonths, regexp.MustCompile(`(?i)Person\s*Months`)},
}

var (
	nameLine      = regexp.MustCompile(`(?i)Name of Individual:\s*(.+?)(?:\s+Commons ID:.*)?$`)
	sectionPrefix = regexp.MustCompile(`(?i)^(ACTIVE|PENDING|IN-KIND)\b`)
)

// matchSection reports the canonical section a cleaned paragraph opens,
// if any. The fixed heading set matches the whole paragraph; the NIH form
// headers (ACTIVE / PENDING / IN-KIND) match by prefix.
func matchSection(text string) (string, bool) {
	switch strings.ToLower(text) {
	case "positions":
		return SectionPositions, true
	case "current support":
		return SectionCurrent, true
	case "pending support":
		return SectionPending, true
	}
	m := sectionPrefix.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	switch strings.ToUpper(m[1]) {
	case "PENDING":
		return SectionPending, true
	case "IN-KIND":
		return SectionInKind, true
	default:
		return SectionCurrent, true
	}
}

// matchName extracts the researcher name from a "Name of Individual:"
// line, discarding any trailing Commons ID.
func matchName(text string) (string, bool) {
	m := nameLine.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.Trim(m[1], " *_"), true
}

// sectionLabel names a section the way the form reads, for error messages.
func sectionLabel(section string) string {
	switch section {
	case SectionPending:
		return "Pending Support"
	case SectionInKind:
		return "In-Kind"
	case SectionPositions:
		return "Positions"
	default:
		return "Current Support"
	}
}
