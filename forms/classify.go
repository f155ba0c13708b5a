// Package forms maps extracted form controls onto the candidate profile,
// fills what it can with confidence-scored matches, and detects whether the
// form is safe to submit.
package forms

import "strings"

// ConfidenceFloor is the minimum classification confidence at which a
// control is filled. Anything below is skipped and audited instead.
const ConfidenceFloor = 0.7

// FieldMatch is the outcome of classifying a control hint.
type FieldMatch struct {
	Field      string
	Confidence float64
}

type classifyRule struct {
	field      string
	confidence float64
	keywords   []string
}

// Rules are ordered; the first rule with a matching keyword wins. Identity
// fields carry the highest confidence, free-text context fields the lowest.
var classifyRules = []classifyRule{
	{"firstName", 0.9, []string{"first name", "given name"}},
	{"lastName", 0.9, []string{"last name", "surname", "family name"}},
	{"fullName", 0.9, []string{"full name"}},
	{"email", 0.9, []string{"email", "e-mail"}},
	{"phone", 0.9, []string{"phone", "mobile", "telephone"}},
	{"location", 0.7, []string{"city", "location", "address"}},
	{"workAuthorization", 0.7, []string{"work authorization", "authorized to work"}},
	{"sponsorship", 0.8, []string{"require sponsorship", "sponsorship"}},
	{"priorEmployment", 0.8, []string{"previously worked", "worked at"}},
	{"referralSource", 0.8, []string{"how did you hear", "hear about this job"}},
	{"state", 0.8, []string{"which state", "state or province"}},
	{"gender", 0.8, []string{"gender"}},
	{"lgbtq", 0.8, []string{"lgbtq", "lgbt"}},
	{"raceEthnicity", 0.8, []string{"race", "ethnicity"}},
	{"veteranStatus", 0.8, []string{"veteran"}},
	{"disabilityStatus", 0.8, []string{"disability"}},
	{"linkedin", 0.8, []string{"linkedin"}},
	{"website", 0.8, []string{"portfolio", "website", "personal site"}},
	{"github", 0.8, []string{"github"}},
}

// Classify maps a control hint to a profile field. A bare "name" hint falls
// back to fullName at reduced confidence; an unmatched hint returns a zero
// FieldMatch.
func Classify(hint string) FieldMatch {
	text := strings.ToLower(hint)
	for _, rule := range classifyRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(text, keyword) {
				return FieldMatch{Field: rule.field, Confidence: rule.confidence}
			}
		}
	}
	if text == "name" || strings.Contains(text, " name") {
		return FieldMatch{Field: "fullName", Confidence: 0.7}
	}
	return FieldMatch{}
}

// RetargetDemographic resolves a demographic category for radio and checkbox
// controls whose own hint did not classify. The fieldset question is checked
// first, then the option label itself.
func RetargetDemographic(question, optionLabel string) string {
	question = strings.ToLower(question)
	optionLabel = strings.ToLower(optionLabel)
	switch {
	case strings.Contains(question, "gender"),
		strings.Contains(optionLabel, "woman"),
		strings.Contains(optionLabel, "man"),
		strings.Contains(optionLabel, "non binary"),
		strings.Contains(optionLabel, "non-conforming"):
		return "gender"
	case strings.Contains(question, "lgbt"),
		strings.Contains(question, "community"):
		return "lgbtq"
	case strings.Contains(question, "race"),
		strings.Contains(question, "ethnicity"),
		strings.Contains(optionLabel, "asian"),
		strings.Contains(optionLabel, "black"),
		strings.Contains(optionLabel, "white"),
		strings.Contains(optionLabel, "hispanic"),
		strings.Contains(optionLabel, "latinx"),
		strings.Contains(optionLabel, "native hawaiian"),
		strings.Contains(optionLabel, "pacific islander"),
		strings.Contains(optionLabel, "indigenous"):
		return "raceEthnicity"
	case strings.Contains(optionLabel, "veteran"):
		return "veteranStatus"
	case strings.Contains(optionLabel, "disability"):
		return "disabilityStatus"
	}
	return ""
}
