// Package render serializes validated profiles into SciENcv XML.
//
// Serialization is explicit per record: every element is written by name
// in the schema's fixed slot order, so output never depends on struct
// layout or map iteration and is byte-identical across renders of one
// profile. Empty optional fields are omitted entirely; the two type
// discriminators (contributiontype, supporttype) always render because
// they have defaults.
package render

import (
	"strconv"
	"strings"

	"github.com/miriam/othersupport-converter/internal/types"
)

// Header is the XML declaration every rendered document starts with.
const Header = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

// XML renders the profile as a compact SciENcv XML document.
func XML(p *types.Profile) string {
	w := &writer{}
	w.b.Grow(1024)
	w.open("profile")
	writeIdentification(w, p.Identification)
	writeEmployment(w, p.Employment)
	writeFunding(w, p.Funding)
	w.close("profile")
	return Header + w.b.String()
}

// writer accumulates compact XML. Escaping happens at the leaves; element
// names are trusted constants.
type writer struct {
	b strings.Builder
}

func (w *writer) open(name string) {
	w.b.WriteByte('<')
	w.b.WriteString(name)
	w.b.WriteByte('>')
}

func (w *writer) close(name string) {
	w.b.WriteString("</")
	w.b.WriteString(name)
	w.b.WriteByte('>')
}

// leaf writes <name>value</name>, or nothing when value is empty.
func (w *writer) leaf(name, value string) {
	if value == "" {
		return
	}
	w.open(name)
	w.b.WriteString(EscapeXML(value))
	w.close(name)
}

func writeIdentification(w *writer, id types.Identification) {
	if id.Name == (types.Name{}) {
		return
	}
	w.open("identification")
	w.open("name")
	w.leaf("firstname", id.Name.FirstName)
	w.leaf("middlename", id.Name.MiddleName)
	w.leaf("lastname", id.Name.LastName)
	w.close("name")
	w.close("identification")
}

func writeEmployment(w *writer, positions []types.Position) {
	if len(positions) == 0 {
		return
	}
	w.open("employment")
	for _, pos := range positions {
		writePosition(w, pos)
	}
	w.close("employment")
}

func writePosition(w *writer, pos types.Position) {
	w.open("position")
	w.leaf("positiontitle", pos.PositionTitle)
	if pos.Organization != (types.Organization{}) {
		w.open("organization")
		w.leaf("orgname", pos.Organization.OrgName)
		w.leaf("city", pos.Organization.City)
		w.leaf("stateorprovince", pos.Organization.StateOrProvince)
		w.leaf("country", pos.Organization.Country)
		w.close("organization")
	}
	writeYear(w, "startdate", pos.StartYear)
	writeYear(w, "enddate", pos.EndYear)
	w.close("position")
}

// writeYear wraps a non-zero year in the schema's nested date element.
func writeYear(w *writer, name string, year int) {
	if year == 0 {
		return
	}
	w.open(name)
	w.leaf("year", strconv.Itoa(year))
	w.close(name)
}

func writeFunding(w *writer, supports []types.Support) {
	if len(supports) == 0 {
		return
	}
	w.open("funding")
	for _, sup := range supports {
		writeSupport(w, sup)
	}
	w.close("funding")
}

// writeSupport emits one support entry in schema slot order.
func writeSupport(w *writer, s types.Support) {
	w.open("support")
	w.leaf("projecttitle", s.ProjectTitle)
	w.leaf("awardnumber", s.AwardNumber)
	w.leaf("supportsource", s.SupportSource)
	w.leaf("location", s.Location)
	w.leaf("contributiontype", s.Status.ContributionType())
	if s.AwardAmount > 0 {
		w.leaf("awardamount", formatNumber(s.AwardAmount))
	}
	w.leaf("inkinddescription", s.InKindDescription)
	w.leaf("overallobjectives", s.OverallObjectives)
	w.leaf("potentialoverlap", s.PotentialOverlap)
	w.leaf("startdate", s.StartDate)
	w.leaf("enddate", s.EndDate)
	w.leaf("supporttype", s.Status.SupportType())
	writeCommitment(w, s.Commitment)
	w.close("support")
}

func writeCommitment(w *writer, months []types.PersonMonth) {
	if len(months) == 0 {
		return
	}
	w.open("commitment")
	for _, pm := range months {
		w.b.WriteString(`<personmonth year="`)
		w.b.WriteString(strconv.Itoa(pm.Year))
		w.b.WriteString(`">`)
		w.b.WriteString(formatNumber(pm.Effort))
		w.close("personmonth")
	}
	w.close("commitment")
}

// formatNumber renders a decimal without trailing zeros ("3.5", "400000").
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
