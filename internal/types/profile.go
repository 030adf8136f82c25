// Package types provides type definitions for structured data used throughout the converter.
package types

import (
	"github.com/go-playground/validator/v10"
)

// Profile is the root record of one conversion: who the researcher is,
// their positions, and their support entries. Built once from a parsed
// document, validated at construction, read-only afterwards.
type Profile struct {
	Identification Identification `json:"identification"`
	Employment     []Position     `json:"employment,omitempty" validate:"dive"`
	Funding        []Support      `json:"funding,omitempty" validate:"dive"`
	CleaningNotes  []CleaningNote `json:"cleaning_notes,omitempty"`
}

// Identification carries the researcher's name.
type Identification struct {
	Name Name `json:"name"`
}

// Name holds the split researcher name. All parts may be empty when the
// document carries no "Name of Individual" line.
type Name struct {
	FirstName  string `json:"firstname,omitempty"`
	MiddleName string `json:"middlename,omitempty"`
	LastName   string `json:"lastname,omitempty"`
}

// Position is one employment entry from the positions section.
type Position struct {
	PositionTitle string       `json:"positiontitle" validate:"required"`
	Organization  Organization `json:"organization"`
	StartYear     int          `json:"startyear,omitempty" validate:"omitempty,min=1900,max=2100"`
	EndYear       int          `json:"endyear,omitempty" validate:"omitempty,min=1900,max=2100"`
}

// Organization locates a position.
type Organization struct {
	OrgName         string `json:"orgname,omitempty"`
	City            string `json:"city,omitempty"`
	StateOrProvince string `json:"stateorprovince,omitempty"`
	Country         string `json:"country,omitempty"`
}

// CleaningNote records one silent adjustment made while building the
// profile (truncated field, dropped year, defaulted value). Informational
// only; a note never fails a conversion.
type CleaningNote struct {
	Section string `json:"section"`
	Note    string `json:"note"`
}

// Validate validates the Profile using the validator.
func (p *Profile) Validate() error {
	validate := validator.New()
	return validate.Struct(p)
}
