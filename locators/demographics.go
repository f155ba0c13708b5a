package locators

import "strings"

// OptionSynonym maps a substring of the candidate's stored answer to the
// option-label substrings that count as the same choice. Entries are ordered;
// the first whose Answer substring matches wins.
type OptionSynonym struct {
	Answer  string
	Options []string
}

// Ordered synonym tables per demographic category. "female" precedes "male"
// deliberately: substring matching would otherwise route "female" answers
// through the "male" entry.
var GenderSynonyms = []OptionSynonym{
	{Answer: "female", Options: []string{"woman", "female"}},
	{Answer: "male", Options: []string{"man", "male"}},
	{Answer: "non", Options: []string{"non binary", "non-binary", "non-conforming"}},
}

var RaceEthnicitySynonyms = []OptionSynonym{
	{Answer: "asian", Options: []string{"asian"}},
	{Answer: "black", Options: []string{"black"}},
	{Answer: "white", Options: []string{"white"}},
	{Answer: "hispanic", Options: []string{"hispanic", "latinx"}},
	{Answer: "latinx", Options: []string{"hispanic", "latinx"}},
	{Answer: "native hawaiian", Options: []string{"pacific"}},
	{Answer: "pacific", Options: []string{"pacific"}},
	{Answer: "indigenous", Options: []string{"indigenous", "native"}},
}

var VeteranStatusSynonyms = []OptionSynonym{
	{Answer: "not", Options: []string{"not a protected veteran", "not a veteran"}},
	{Answer: "", Options: []string{"protected veteran", "veteran"}},
}

var DisabilityStatusSynonyms = []OptionSynonym{
	{Answer: "not", Options: []string{"no, i don't have a disability"}},
	{Answer: "no", Options: []string{"no, i don't have a disability"}},
	{Answer: "", Options: []string{"yes, i have a disability"}},
}

var LGBTQSynonyms = []OptionSynonym{
	{Answer: "yes", Options: []string{"yes"}},
	{Answer: "no", Options: []string{"no"}},
}

// DeclineOptions are "prefer not to answer" style labels; these are never
// treated as a positive match.
var DeclineOptions = []string{
	"i don't wish to answer",
	"prefer not",
	"not listed",
	"decline to",
}

// SynonymsFor returns the synonym table for a demographic field identity,
// or nil when the field has no category-specific matching.
func SynonymsFor(field string) []OptionSynonym {
	switch field {
	case "gender":
		return GenderSynonyms
	case "raceEthnicity":
		return RaceEthnicitySynonyms
	case "veteranStatus":
		return VeteranStatusSynonyms
	case "disabilityStatus":
		return DisabilityStatusSynonyms
	case "lgbtq":
		return LGBTQSynonyms
	default:
		return nil
	}
}

// MatchOption reports whether an option label is a positive match for the
// candidate's stored answer under the given synonym table. A nil table falls
// back to plain substring matching.
func MatchOption(table []OptionSynonym, answer, optionLabel string) bool {
	answer = strings.ToLower(strings.TrimSpace(answer))
	optionLabel = strings.ToLower(optionLabel)
	if answer == "" {
		return false
	}
	for _, decline := range DeclineOptions {
		if strings.Contains(optionLabel, decline) {
			return false
		}
	}
	if table == nil {
		return strings.Contains(optionLabel, answer)
	}
	for _, synonym := range table {
		if synonym.Answer != "" && !strings.Contains(answer, synonym.Answer) {
			continue
		}
		for _, option := range synonym.Options {
			if strings.Contains(optionLabel, option) {
				return true
			}
		}
		return false
	}
	return false
}
