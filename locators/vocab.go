// Package locators centralizes the page-matching vocabulary: phrase lists,
// selectors, and the in-page inspection scripts. Keeping the vocabulary as
// data keeps the matching rules reviewable in one place.
package locators

// Phrases that mark an application entry point. Matching is case-insensitive
// substring matching; document order wins ties.
var ApplyPhrases = []string{
	"apply for this job",
	"apply to this job",
	"apply for the job",
	"apply for this position",
	"apply now",
	"apply today",
	"submit application",
	"submit your application",
	"job/?id=",
	"application",
	"apply",
}

// Phrases that mark a real submit control.
var SubmitPhrases = []string{
	"submit",
	"apply now",
	"finish",
}

// Phrases that advance a multi-step form without submitting it.
var NextPhrases = []string{
	"next",
	"continue",
	"review",
	"save",
}

// Hint substrings that mark a verification control.
var CaptchaHints = []string{
	"g-recaptcha",
	"recaptcha",
	"security code",
}

// Hint substrings that force a control into the long-form sub-step.
var LongformHints = []string{
	"resume_text",
	"cover_letter_text",
}

// Selectors evaluated for the blocked-state detection signals.
const (
	CaptchaSelector     = "iframe[src*='captcha'], iframe[src*='recaptcha'], div[class*='captcha']"
	ErrorBannerSelector = "[data-testid*='error'], .icl-Alert--danger, .error"
)

// URL substrings that identify an embedded apply URL in script text or
// anchor hrefs.
var ApplyURLPatterns = []string{
	"job/?id=",
	"apply",
	"application",
	"greenhouse.io",
	"job-boards.greenhouse.io",
}

// Frame source substrings that identify the hosting ATS.
var ATSFrameDomains = []string{
	"greenhouse.io",
	"job-boards.greenhouse.io",
	"greenhouse",
}

// GreenhouseFallbackURL is the deterministic apply URL template used when
// every discovery strategy on the landing page fails.
const GreenhouseFallbackURL = "https://job-boards.greenhouse.io/%s/jobs/%s"

// ATSSynonym names the ATS behind an external apply URL.
type ATSSynonym struct {
	Marker string
	Name   string
}

// ExternalATSDomains identify the ATS an aggregator's apply button hands
// off to. Checked in order; first marker contained in the URL wins.
var ExternalATSDomains = []ATSSynonym{
	{Marker: "greenhouse.io", Name: "greenhouse"},
	{Marker: "lever.co", Name: "lever"},
	{Marker: "workday", Name: "workday"},
	{Marker: "smartrecruiters", Name: "smartrecruiters"},
	{Marker: "icims", Name: "icims"},
	{Marker: "jobvite", Name: "jobvite"},
	{Marker: "breezy.hr", Name: "breezy"},
}
