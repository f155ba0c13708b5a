package model

import (
	"net/url"
	"strings"
)

// JobListing is one discovered posting, normalized across boards.
// Immutable once discovered.
type JobListing struct {
	ID          string            `json:"id"`
	Board       string            `json:"board"`
	URL         string            `json:"url"`
	Title       string            `json:"title"`
	Company     string            `json:"company"`
	CompanySlug string            `json:"companySlug,omitempty"`
	Location    string            `json:"location"`
	Department  string            `json:"department,omitempty"`
	PostedAt    string            `json:"postedAt,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Identity is the dedupe key: (board, id) when both are known, otherwise the
// normalized apply URL.
func (l JobListing) Identity() string {
	if l.Board != "" && l.ID != "" {
		return l.Board + ":" + l.ID
	}
	return NormalizeURL(l.URL)
}

// NormalizeURL lowercases scheme/host and strips a trailing slash so the same
// apply URL always produces the same key.
func NormalizeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return strings.TrimRight(strings.TrimSpace(raw), "/")
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	return strings.TrimRight(u.String(), "/")
}

// SearchCriteria narrows discovery output before any apply attempt runs.
type SearchCriteria struct {
	Titles          []string `json:"titles" mapstructure:"titles"`
	Locations       []string `json:"locations" mapstructure:"locations"`
	Keywords        []string `json:"keywords" mapstructure:"keywords"`
	ExcludeKeywords []string `json:"excludeKeywords" mapstructure:"excludeKeywords"`
	RoleKeywords    []string `json:"roleKeywords,omitempty" mapstructure:"roleKeywords"`
	Experience      []string `json:"experience,omitempty" mapstructure:"experience"`
	Remote          bool     `json:"remote,omitempty" mapstructure:"remote"`
}
