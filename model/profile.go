package model

import "strings"

// EEOAnswers holds the voluntary demographic answers a candidate chose to
// provide. Empty fields are never matched against form options.
type EEOAnswers struct {
	Gender           string `yaml:"gender" json:"gender,omitempty"`
	LGBTQ            string `yaml:"lgbtq" json:"lgbtq,omitempty"`
	RaceEthnicity    string `yaml:"raceEthnicity" json:"raceEthnicity,omitempty"`
	VeteranStatus    string `yaml:"veteranStatus" json:"veteranStatus,omitempty"`
	DisabilityStatus string `yaml:"disabilityStatus" json:"disabilityStatus,omitempty"`
}

// CandidateProfile is the caller-owned source of truth for form filling.
// The pipeline reads it; the only write-back is merging freshly generated
// long-form answers into Answers for the duration of one apply attempt.
type CandidateProfile struct {
	FullName          string            `yaml:"fullName" json:"fullName"`
	Email             string            `yaml:"email" json:"email"`
	Phone             string            `yaml:"phone" json:"phone"`
	Location          string            `yaml:"location" json:"location,omitempty"`
	WorkAuthorization string            `yaml:"workAuthorization" json:"workAuthorization,omitempty"`
	Sponsorship       string            `yaml:"sponsorship" json:"sponsorship,omitempty"`
	PriorEmployment   string            `yaml:"priorEmployment" json:"priorEmployment,omitempty"`
	ReferralSource    string            `yaml:"referralSource" json:"referralSource,omitempty"`
	State             string            `yaml:"state" json:"state,omitempty"`
	LinkedIn          string            `yaml:"linkedin" json:"linkedin,omitempty"`
	Website           string            `yaml:"website" json:"website,omitempty"`
	GitHub            string            `yaml:"github" json:"github,omitempty"`
	EEO               EEOAnswers        `yaml:"eeo" json:"eeo,omitempty"`
	Answers           map[string]string `yaml:"answers" json:"answers,omitempty"`
	Summary           string            `yaml:"summary" json:"summary,omitempty"`
	Skills            []string          `yaml:"skills" json:"skills,omitempty"`
}

// FirstName is everything before the first space in FullName.
func (p *CandidateProfile) FirstName() string {
	parts := strings.Fields(p.FullName)
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

// LastName is everything after the first space in FullName.
func (p *CandidateProfile) LastName() string {
	parts := strings.Fields(p.FullName)
	if len(parts) < 2 {
		return ""
	}
	return strings.Join(parts[1:], " ")
}

// FieldValues flattens the profile into the field-identity keyspace the form
// classifier resolves into.
func (p *CandidateProfile) FieldValues() map[string]string {
	return map[string]string{
		"fullName":          p.FullName,
		"firstName":         p.FirstName(),
		"lastName":          p.LastName(),
		"email":             p.Email,
		"phone":             p.Phone,
		"location":          p.Location,
		"workAuthorization": p.WorkAuthorization,
		"sponsorship":       p.Sponsorship,
		"priorEmployment":   p.PriorEmployment,
		"referralSource":    p.ReferralSource,
		"state":             p.State,
		"linkedin":          p.LinkedIn,
		"website":           p.Website,
		"github":            p.GitHub,
		"gender":            p.EEO.Gender,
		"lgbtq":             p.EEO.LGBTQ,
		"raceEthnicity":     p.EEO.RaceEthnicity,
		"veteranStatus":     p.EEO.VeteranStatus,
		"disabilityStatus":  p.EEO.DisabilityStatus,
	}
}

// SetAnswer merges a generated long-form answer into the in-memory profile.
func (p *CandidateProfile) SetAnswer(key, value string) {
	if p.Answers == nil {
		p.Answers = make(map[string]string)
	}
	p.Answers[key] = value
}

// ResumeAsset is a read-only input to the fill step.
type ResumeAsset struct {
	Label     string `yaml:"label" json:"label"`
	Path      string `yaml:"path" json:"path"`
	SHA256    string `yaml:"sha256" json:"sha256,omitempty"`
	IsDefault bool   `yaml:"default" json:"default,omitempty"`
}
