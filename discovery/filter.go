package discovery

import (
	"regexp"
	"strings"

	"autoapply/model"
)

// FilterCounts tallies each rejection reason for one filter pass.
type FilterCounts struct {
	Total             int
	Matched           int
	SkippedTitle      int
	SkippedLocation   int
	SkippedExclude    int
	SkippedExperience int
	SkippedRole       int
	SkippedSeniority  int
}

// FilterResult pairs the surviving listings with their rejection tallies.
type FilterResult struct {
	Matched []model.JobListing
	Counts  FilterCounts
}

// Title substrings that disqualify a listing regardless of the configured
// criteria: wrong function, wrong seniority, or wrong specialty.
var roleFunctionExcludes = []string{
	"recruiter", "recruiting", "talent", "hr", "people",
	"architect", "architecture", "solutions", "solution",
	"sales", "marketing", "growth", "customer", "success",
	"support", "enablement", "evangelist", "consultant", "advisory",
}

var roleSeniorityExcludes = []string{
	"senior", "sr", "sr.", "staff", "principal", "lead", "manager", "head",
}

var roleSpecialtyExcludes = []string{
	"data scientist", "machine learning", "ml",
}

// FilterJobs applies the criteria in rejection order: explicit excludes,
// title/keyword includes, experience keywords, role excludes, positive role
// tiers, then location.
func FilterJobs(jobs []model.JobListing, criteria model.SearchCriteria) FilterResult {
	result := FilterResult{Counts: FilterCounts{Total: len(jobs)}}

	titles := lowerList(criteria.Titles)
	keywords := lowerList(criteria.Keywords)
	excludes := lowerList(criteria.ExcludeKeywords)
	experience := lowerList(criteria.Experience)
	roleKeywords := lowerList(criteria.RoleKeywords)
	locations := lowerList(criteria.Locations)

	for _, job := range jobs {
		title := strings.ToLower(job.Title)
		haystack := strings.ToLower(job.Title + " " + job.Location + " " + job.Department)

		if anyContained(haystack, excludes) {
			result.Counts.SkippedExclude++
			continue
		}
		if len(titles) > 0 || len(keywords) > 0 {
			if !anyContained(haystack, titles) && !anyContained(haystack, keywords) {
				result.Counts.SkippedTitle++
				continue
			}
		}
		if len(experience) > 0 && !anyContained(haystack, experience) {
			result.Counts.SkippedExperience++
			continue
		}
		if anyContained(title, roleFunctionExcludes) ||
			anyContained(title, roleSeniorityExcludes) ||
			anyContained(title, roleSpecialtyExcludes) {
			result.Counts.SkippedSeniority++
			continue
		}
		if len(roleKeywords) > 0 && !matchesRoleTier(title, roleKeywords) {
			result.Counts.SkippedRole++
			continue
		}
		if len(locations) > 0 || criteria.Remote {
			location := strings.ToLower(job.Location)
			if !isUSLocation(location) {
				result.Counts.SkippedLocation++
				continue
			}
			if len(locations) > 0 && !anyContained(location, locations) {
				result.Counts.SkippedLocation++
				continue
			}
		}
		result.Matched = append(result.Matched, job)
	}

	result.Counts.Matched = len(result.Matched)
	return result
}

// matchesRoleTier accepts a title that names a configured role keyword
// directly, or falls into the analytics/data tier without being a science
// role.
func matchesRoleTier(title string, roleKeywords []string) bool {
	if anyContained(title, roleKeywords) {
		return true
	}
	if strings.Contains(title, "analytics") {
		return true
	}
	return strings.Contains(title, "data") &&
		!strings.Contains(title, "scientist") &&
		!strings.Contains(title, "science")
}

func lowerList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func anyContained(haystack string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}

var nonUSMarkers = []string{"canada", "united kingdom", "uk", "europe", "emea", "apac"}

var usMarkers = []string{
	"united states", "united states of america", "usa", "u.s.", "u.s.a.", "us",
}

var usStateNames = []string{
	"alabama", "alaska", "arizona", "arkansas", "california", "colorado",
	"connecticut", "delaware", "florida", "georgia", "hawaii", "idaho",
	"illinois", "indiana", "iowa", "kansas", "kentucky", "louisiana", "maine",
	"maryland", "massachusetts", "michigan", "minnesota", "mississippi",
	"missouri", "montana", "nebraska", "nevada", "new hampshire", "new jersey",
	"new mexico", "new york", "north carolina", "north dakota", "ohio",
	"oklahoma", "oregon", "pennsylvania", "rhode island", "south carolina",
	"south dakota", "tennessee", "texas", "utah", "vermont", "virginia",
	"washington", "west virginia", "wisconsin", "wyoming",
	"district of columbia", "washington, dc",
}

var usStateAbbrPattern = regexp.MustCompile(`(?i)(^|\W)(al|ak|az|ar|ca|co|ct|de|fl|ga|hi|id|il|in|ia|ks|ky|la|me|md|ma|mi|mn|ms|mo|mt|ne|nv|nh|nj|nm|ny|nc|nd|oh|ok|or|pa|ri|sc|sd|tn|tx|ut|vt|va|wa|wv|wi|wy|dc)(\W|$)`)

func isUSLocation(location string) bool {
	if location == "" {
		return false
	}
	if anyContained(location, nonUSMarkers) {
		return false
	}
	if anyContained(location, usMarkers) {
		return true
	}
	if anyContained(location, usStateNames) {
		return true
	}
	return usStateAbbrPattern.MatchString(location)
}
