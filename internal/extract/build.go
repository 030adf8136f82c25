package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/miriam/othersupport-converter/internal/types"
)

// Year bounds for person-month entries: years before minCommitmentYear or
// more than maxYearsAhead past the conversion date are dropped.
const (
	minCommitmentYear = 1990
	maxYearsAhead     = 20
)

var (
	dateRange = regexp.MustCompile(
		`(\d{1,2}/\d{1,2}/\d{2,4}|\d{1,2}/\d{2,4})\s*-\s*(\d{1,2}/\d{1,2}/\d{2,4}|\d{1,2}/\d{2,4})`)
	amountNumber = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)
)

// dateLayouts are the date shapes the form is known to carry, tried in
// order. Month-only layouts resolve to the first of the month.
var dateLayouts = []string{"1/2/2006", "1/2/06", "1/2006", "1/06"}

// Build constructs a validated profile from the raw extraction, applying
// the documented cleaning rules. The only fatal condition is a support
// entry with neither a title nor an award number.
func Build(raw *RawProfile) (*types.Profile, error) {
	return BuildAt(raw, time.Now())
}

// BuildAt is Build with an explicit conversion time, which anchors the
// person-month year bound.
func BuildAt(raw *RawProfile, now time.Time) (*types.Profile, error) {
	b := builder{now: now}

	profile := &types.Profile{
		Identification: types.Identification{Name: SplitName(raw.NameText)},
	}
	for _, rp := range raw.Positions {
		if pos, ok := b.position(rp); ok {
			profile.Employment = append(profile.Employment, pos)
		}
	}
	for i, rs := range raw.Supports {
		sup, err := b.support(rs, i)
		if err != nil {
			return nil, err
		}
		profile.Funding = append(profile.Funding, sup)
	}
	profile.CleaningNotes = b.notes
	return profile, nil
}

type builder struct {
	now   time.Time
	notes []types.CleaningNote
}

func (b *builder) note(section, format string, args ...any) {
	b.notes = append(b.notes, types.CleaningNote{
		Section: sectionLabel(section),
		Note:    fmt.Sprintf(format, args...),
	})
}

func (b *builder) support(raw RawSupport, index int) (types.Support, error) {
	if raw.ProjectTitle == "" && raw.AwardNumber == "" {
		return types.Support{}, &ValidationError{
			Section: sectionLabel(raw.Section),
			Message: fmt.Sprintf("support entry %d has neither a title nor an award number", index+1),
		}
	}

	status := resolveStatus(raw.Section, raw.StatusText)
	start, end := ExtractDates(raw.DatesText)
	if raw.DatesText != "" && start == "" && end == "" {
		b.note(raw.Section, "could not read project dates %q", raw.DatesText)
	}

	sup := types.Support{
		ProjectTitle:      b.clip(raw.Section, "projecttitle", raw.ProjectTitle, types.MaxProjectTitle),
		AwardNumber:       CleanAwardNumber(raw.AwardNumber),
		SupportSource:     b.clip(raw.Section, "supportsource", raw.SupportSource, types.MaxSupportSource),
		Location:          b.clip(raw.Section, "location", raw.Location, types.MaxLocation),
		Status:            status,
		AwardAmount:       CleanAmount(raw.AmountText),
		OverallObjectives: raw.Objectives,
		PotentialOverlap:  b.clip(raw.Section, "potentialoverlap", overlapOrDefault(raw.Overlap), types.MaxPotentialOverlap),
		StartDate:         start,
		EndDate:           end,
	}
	if status == types.StatusInKind {
		sup.InKindDescription = truncate(sup.ProjectTitle, types.MaxInKindDescription)
	}
	for _, pm := range raw.Commitment {
		if entry, ok := b.personMonth(raw.Section, pm); ok {
			sup.Commitment = append(sup.Commitment, entry)
		}
	}
	return sup, nil
}

func (b *builder) position(raw RawPosition) (types.Position, bool) {
	if raw.Title == "" {
		return types.Position{}, false
	}
	pos := types.Position{
		PositionTitle: raw.Title,
		Organization: types.Organization{
			OrgName:         raw.OrgName,
			City:            raw.City,
			StateOrProvince: raw.State,
			Country:         raw.Country,
		},
		StartYear: parseYear(raw.StartText),
		EndYear:   parseYear(raw.EndText),
	}
	if pos.StartYear != 0 && pos.EndYear != 0 && pos.StartYear > pos.EndYear {
		b.note(SectionPositions, "dropped position %q: start year %d is after end year %d",
			pos.PositionTitle, pos.StartYear, pos.EndYear)
		return types.Position{}, false
	}
	return pos, true
}

func (b *builder) personMonth(section string, raw RawPersonMonth) (types.PersonMonth, bool) {
	year, err := strconv.Atoi(raw.YearText)
	if err != nil {
		b.note(section, "dropped commitment year %q", raw.YearText)
		return types.PersonMonth{}, false
	}
	if year < minCommitmentYear || year > b.now.Year()+maxYearsAhead {
		b.note(section, "dropped out-of-range commitment year %d", year)
		return types.PersonMonth{}, false
	}
	effort, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(raw.EffortText, "%")), 64)
	if err != nil || effort < 0 {
		b.note(section, "dropped unparsable effort %q for year %d", raw.EffortText, year)
		return types.PersonMonth{}, false
	}
	return types.PersonMonth{Year: year, Effort: effort}, true
}

// clip truncates value to max runes, recording a note when it had to.
func (b *builder) clip(section, field, value string, max int) string {
	t := truncate(value, max)
	if len(t) != len(value) {
		b.note(section, "%s truncated to %d characters", field, max)
	}
	return t
}

// CleanAwardNumber strips all whitespace and truncates; an empty result
// falls back to "N/A" so the entry still carries an identifier.
func CleanAwardNumber(text string) string {
	cleaned := stripWhitespace(text)
	if cleaned == "" {
		cleaned = "N/A"
	}
	return truncate(cleaned, types.MaxAwardNumber)
}

// CleanAmount parses the first money-looking number out of free text,
// ignoring currency symbols and thousands separators. Returns 0 when
// nothing parses; forms routinely carry prose amounts.
func CleanAmount(text string) float64 {
	m := amountNumber.FindString(text)
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
	if err != nil || v < 0 {
		return 0
	}
	// awardamount is capped at 13 digits; anything past that is noise.
	if v >= 1e13 {
		return 0
	}
	return v
}

// ExtractDates splits a raw "start - end" range into a pair of ISO dates.
// Either side comes back empty when it does not parse.
func ExtractDates(text string) (string, string) {
	m := dateRange.FindStringSubmatch(text)
	if m == nil {
		return "", ""
	}
	return ParseFlexibleDate(m[1]), ParseFlexibleDate(m[2])
}

// ParseFlexibleDate parses one side of a form date range into ISO form
// ("2006-01-02"). Returns "" when no known layout matches.
func ParseFlexibleDate(text string) string {
	s := strings.Trim(text, " *_")
	if s == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		return t.Format("2006-01-02")
	}
	return ""
}

// parseYear pulls a 4-digit year out of a cell ("2015", "2015 - present").
func parseYear(text string) int {
	m := yearPattern.FindString(text)
	if m == "" {
		return 0
	}
	year, _ := strconv.Atoi(m)
	return year
}

// resolveStatus picks the entry status from its section and any explicit
// "Status of Support" text; explicit text wins over the section default.
func resolveStatus(section, statusText string) types.Status {
	status := types.StatusActive
	switch section {
	case SectionPending:
		status = types.StatusPending
	case SectionInKind:
		status = types.StatusInKind
	}
	s := strings.ToLower(statusText)
	switch {
	case s == "":
	case strings.Contains(s, "pending"):
		status = types.StatusPending
	case strings.Contains(s, "in-kind") || strings.Contains(s, "in kind"):
		status = types.StatusInKind
	case strings.Contains(s, "active") || strings.Contains(s, "current"):
		status = types.StatusActive
	}
	return status
}

// overlapOrDefault keeps the form's explicit overlap statement, falling
// back to the "None" SciENcv expects.
func overlapOrDefault(text string) string {
	if text == "" {
		return "None"
	}
	return text
}

// SplitName splits a full researcher name into first/middle/last parts:
// "Last, First Middle" order when a comma is present, word order otherwise.
func SplitName(full string) types.Name {
	full = strings.TrimSpace(full)
	if full == "" {
		return types.Name{}
	}

	if last, rest, ok := strings.Cut(full, ","); ok {
		name := types.Name{LastName: strings.TrimSpace(last)}
		parts := strings.Fields(rest)
		if len(parts) > 0 {
			name.FirstName = parts[0]
			name.MiddleName = strings.Join(parts[1:], " ")
		}
		return name
	}

	parts := strings.Fields(full)
	switch len(parts) {
	case 1:
		return types.Name{FirstName: parts[0]}
	case 2:
		return types.Name{FirstName: parts[0], LastName: parts[1]}
	default:
		return types.Name{
			FirstName:  parts[0],
			MiddleName: strings.Join(parts[1:len(parts)-1], " "),
			LastName:   parts[len(parts)-1],
		}
	}
}
