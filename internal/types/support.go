package types

import (
	"github.com/go-playground/validator/v10"
)

// SciENcv schema maxima for support entry text fields. Builders truncate
// to these silently; the validator tags back them up.
const (
	MaxProjectTitle      = 300
	MaxAwardNumber       = 50
	MaxSupportSource     = 60
	MaxLocation          = 60
	MaxPotentialOverlap  = 5000
	MaxInKindDescription = 500
	MaxAwardAmountDigits = 13
)

// Status classifies a support entry: an active award, a pending
// application, or an in-kind resource commitment.
type Status string

const (
	StatusActive  Status = "active"
	StatusPending Status = "pending"
	StatusInKind  Status = "inkind"
)

// SupportType returns the SciENcv supporttype value for the status.
func (s Status) SupportType() string {
	if s == StatusPending {
		return "pending"
	}
	return "current"
}

// ContributionType returns the SciENcv contributiontype value for the status.
func (s Status) ContributionType() string {
	if s == StatusInKind {
		return "inkind"
	}
	return "award"
}

// Support is one grant, award, or in-kind entry. StartDate/EndDate are ISO
// dates ("2006-01-02") or empty. AwardAmount is zero when the document's
// amount was absent or unparsable.
type Support struct {
	ProjectTitle      string        `json:"projecttitle,omitempty" validate:"max=300"`
	AwardNumber       string        `json:"awardnumber,omitempty" validate:"max=50,excludesall=0x20"`
	SupportSource     string        `json:"supportsource,omitempty" validate:"max=60"`
	Location          string        `json:"location,omitempty" validate:"max=60"`
	Status            Status        `json:"status" validate:"oneof=active pending inkind"`
	AwardAmount       float64       `json:"awardamount,omitempty" validate:"min=0"`
	InKindDescription string        `json:"inkinddescription,omitempty" validate:"max=500"`
	OverallObjectives string        `json:"overallobjectives,omitempty"`
	PotentialOverlap  string        `json:"potentialoverlap,omitempty" validate:"max=5000"`
	StartDate         string        `json:"startdate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate           string        `json:"enddate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Commitment        []PersonMonth `json:"commitment,omitempty" validate:"dive"`
}

// PersonMonth maps one calendar/project year to an effort commitment
// (person-months or percent).
type PersonMonth struct {
	Year   int     `json:"year" validate:"min=1990,max=2100"`
	Effort float64 `json:"effort" validate:"min=0"`
}

// Validate validates the Support entry using the validator.
func (s *Support) Validate() error {
	validate := validator.New()
	return validate.Struct(s)
}
