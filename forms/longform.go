package forms

import "strings"

// Long-form answer keys in descending match priority.
const (
	KeyCoverLetter     = "coverLetter"
	KeyWhyCompany      = "whyCompany"
	KeyWhyRole         = "whyRole"
	KeyAdditionalInfo  = "additionalInfo"
	KeyLongformDefault = "longformDefault"
)

// ClassifyLongformKey buckets a long-form question into a stored-answer key.
func ClassifyLongformKey(hint string) string {
	text := strings.ToLower(hint)
	switch {
	case strings.Contains(text, "cover letter"):
		return KeyCoverLetter
	case strings.Contains(text, "why"), strings.Contains(text, "interested"), strings.Contains(text, "motivat"):
		return KeyWhyCompany
	case strings.Contains(text, "role"), strings.Contains(text, "position"):
		return KeyWhyRole
	case strings.Contains(text, "additional"), strings.Contains(text, "anything else"):
		return KeyAdditionalInfo
	}
	return KeyLongformDefault
}

// LookupAnswer resolves a stored answer under the camelCase key, then the
// snake_case spelling.
func LookupAnswer(answers map[string]string, key string) string {
	if answers == nil {
		return ""
	}
	if answer := answers[key]; answer != "" {
		return answer
	}
	return answers[snakeCase(key)]
}

func snakeCase(key string) string {
	var b strings.Builder
	for _, r := range key {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
