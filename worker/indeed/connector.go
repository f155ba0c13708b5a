// Package indeed drives apply attempts against Indeed listings. Indeed
// exposes no listing API, so search scrapes the result pages through the
// browser session, and apply attempts only ever dry-run: the modal flows are
// mapped and audited but never submitted.
package indeed

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"autoapply/automation"
	"autoapply/boards"
	"autoapply/discovery"
	"autoapply/forms"
	"autoapply/locators"
	"autoapply/model"
	"autoapply/runlog"
	"autoapply/utils"
)

const boardName = "indeed"

const (
	searchBaseURL = "https://www.indeed.com/jobs"
	viewJobURL    = "https://www.indeed.com/viewjob?jk=%s"
)

// Wait tuning. Vars so tests can tighten them.
var (
	verificationChecks = 60
	verificationDelay  = 2 * time.Second
	settleDelay        = 2 * time.Second
)

// Connector implements boards.Connector for Indeed.
type Connector struct {
	session automation.Session
}

func NewConnector(session automation.Session) *Connector {
	return &Connector{session: session}
}

func (c *Connector) Name() string {
	return boardName
}

// listingCard is one scraped search result.
type listingCard struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Company  string `json:"company"`
	Location string `json:"location"`
	JobKey   string `json:"jobKey"`
}

// Search sweeps every title and location combination through the result
// pages, dedupes by listing URL, and keeps what survives the criteria filter.
func (c *Connector) Search(ctx context.Context, criteria model.SearchCriteria) ([]model.JobListing, error) {
	page, err := c.session.NewPage()
	if err != nil {
		return nil, fmt.Errorf("open search page: %w", err)
	}
	defer page.Close()

	titles := criteria.Titles
	if len(titles) == 0 {
		titles = []string{""}
	}
	locations := criteria.Locations
	if len(locations) == 0 {
		locations = []string{""}
	}

	seen := make(map[string]bool)
	var listings []model.JobListing
	for _, title := range titles {
		for _, location := range locations {
			if err := ctx.Err(); err != nil {
				return listings, err
			}
			if err := page.Goto(searchURL(title, location)); err != nil {
				return nil, fmt.Errorf("open search results: %w", err)
			}
			waitForVerification(page, "search")
			cards, err := scrapeCards(page)
			if err != nil {
				return nil, err
			}
			for _, card := range cards {
				listing := card.toListing()
				if seen[listing.URL] {
					continue
				}
				seen[listing.URL] = true
				listings = append(listings, listing)
			}
		}
	}

	return discovery.FilterJobs(listings, criteria).Matched, nil
}

func searchURL(title, location string) string {
	params := url.Values{}
	if title != "" {
		params.Set("q", title)
	}
	if location != "" {
		params.Set("l", location)
	}
	if len(params) == 0 {
		return searchBaseURL
	}
	return searchBaseURL + "?" + params.Encode()
}

func scrapeCards(page automation.Page) ([]listingCard, error) {
	var cards []listingCard
	if err := page.Evaluate(locators.IndeedListingCardsScript, &cards); err != nil {
		return nil, fmt.Errorf("scrape result cards: %w", err)
	}
	return cards, nil
}

func (card listingCard) toListing() model.JobListing {
	id := card.JobKey
	if id == "" {
		id = card.URL
	}
	return model.JobListing{
		ID:       id,
		Board:    boardName,
		URL:      normalizeListingURL(card.URL, card.JobKey),
		Title:    card.Title,
		Company:  card.Company,
		Location: card.Location,
	}
}

// normalizeListingURL resolves the relative hrefs the result cards carry into
// absolute view-job URLs.
func normalizeListingURL(raw, jobKey string) string {
	if strings.HasPrefix(raw, "http") {
		return raw
	}
	if raw != "" && (strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "?")) {
		return "https://www.indeed.com" + raw
	}
	if jobKey != "" {
		return fmt.Sprintf(viewJobURL, jobKey)
	}
	return raw
}

// attempt is the mutable state of one listing's apply flow. applyType tracks
// the detected flow so every audit event carries it.
type attempt struct {
	actx      *boards.ApplyContext
	listing   model.JobListing
	page      automation.Page
	applyType string

	lastScreenshot string
}

// Apply runs one listing. Indeed attempts never submit; a mapped modal flow
// ends as a dry run regardless of the run's dry-run setting.
func (c *Connector) Apply(actx *boards.ApplyContext, listing model.JobListing) model.ApplyResult {
	if actx.Repo != nil {
		applied, err := actx.Repo.HasApplied(listing.URL)
		if err != nil {
			log.Warnf("Applied lookup failed for %s: %v", listing.URL, err)
		}
		if applied {
			return model.ApplyResult{
				ListingID: listing.ID,
				Status:    model.StatusSkipped,
				Message:   "Already applied (persisted)",
			}
		}
	}

	page, err := actx.Session.NewPage()
	if err != nil {
		return model.ApplyResult{
			ListingID: listing.ID,
			Status:    model.StatusFailed,
			Message:   fmt.Sprintf("open page: %v", err),
		}
	}

	a := &attempt{actx: actx, listing: listing, page: page, applyType: "unknown"}
	defer a.closePage()

	result := a.run()
	if actx.Repo != nil {
		if err := actx.Repo.MarkApplied(listing, result); err != nil {
			log.Warnf("Recording result for %s failed: %v", listing.URL, err)
		}
	}
	return result
}

func (a *attempt) run() model.ApplyResult {
	err := utils.Retry(2, time.Second, func() error {
		return a.page.Goto(a.listing.URL)
	})
	if err != nil {
		return a.fail(fmt.Errorf("open listing: %w", err))
	}
	time.Sleep(settleDelay)
	waitForVerification(a.page, "detail")
	a.logEvent(runlog.Event{
		Step:    "attempt",
		Title:   a.listing.Title,
		Company: a.listing.Company,
	})

	target, err := a.page.LocateApplyTarget()
	if err != nil {
		return a.fail(fmt.Errorf("locate apply target: %w", err))
	}
	if target == nil {
		a.applyType = "none"
		screenshot := a.capture("no-apply-button")
		a.logEvent(runlog.Event{
			Step:           "skip",
			Status:         string(model.StatusSkipped),
			Reason:         "no apply button",
			ScreenshotPath: screenshot,
		})
		return model.ApplyResult{
			ListingID: a.listing.ID,
			Status:    model.StatusSkipped,
			Message:   "No apply button detected (flow: none)",
			Artifacts: model.ApplyArtifacts{ScreenshotPath: screenshot},
		}
	}

	if kind, ats := classifyTarget(target); kind == "external" {
		return a.skipExternal(target, ats)
	}

	if err := a.page.Click(target.Selector); err != nil {
		return a.fail(fmt.Errorf("apply click: %w", err))
	}
	time.Sleep(settleDelay)

	flow, err := a.detectFlow()
	if err != nil {
		return a.fail(err)
	}
	a.applyType = flow
	a.logEvent(runlog.Event{Step: "apply-flow-detected"})

	if flow != "modal" && flow != "modal-iframe" {
		screenshot := a.capture("unsupported-flow")
		a.logEvent(runlog.Event{
			Step:           "skip",
			Status:         string(model.StatusSkipped),
			Reason:         "unsupported apply flow",
			ScreenshotPath: screenshot,
		})
		return model.ApplyResult{
			ListingID: a.listing.ID,
			Status:    model.StatusSkipped,
			Message:   fmt.Sprintf("Unsupported apply flow (%s)", flow),
			Artifacts: model.ApplyArtifacts{ScreenshotPath: screenshot},
		}
	}

	return a.runFormFlow()
}

// runFormFlow maps the modal form and stops short of submission.
func (a *attempt) runFormFlow() model.ApplyResult {
	engine := a.actx.Engine
	meta := a.meta()
	if _, err := engine.MapAndFill(a.page, a.actx.Profile, a.actx.Resume, meta); err != nil {
		return a.fail(err)
	}
	if err := engine.AnswerScreening(a.page, meta); err != nil {
		return a.fail(err)
	}
	detection, err := engine.DetectSubmitState(a.page, meta)
	if err != nil {
		return a.fail(err)
	}

	mode := "Dry-run"
	if !a.actx.DryRun {
		mode = "Dry-run enforced"
	}
	screenshot := detection.ScreenshotPath
	if screenshot == "" {
		screenshot = a.lastScreenshot
	}
	a.logEvent(runlog.Event{
		Step:           "result",
		Status:         string(model.StatusDryRun),
		Reason:         detection.Reason,
		ScreenshotPath: screenshot,
	})
	return model.ApplyResult{
		ListingID: a.listing.ID,
		Status:    model.StatusDryRun,
		Message:   fmt.Sprintf("%s: %s (%s)", mode, detection.State, detection.Reason),
		Artifacts: model.ApplyArtifacts{ScreenshotPath: screenshot},
	}
}

func (a *attempt) skipExternal(target *automation.ApplyTarget, ats string) model.ApplyResult {
	a.applyType = "external"
	screenshot := a.capture("external-apply")
	a.logEvent(runlog.Event{
		Step:           "external-detected",
		Status:         string(model.StatusSkipped),
		Reason:         ats,
		ExternalURL:    target.Href,
		ExternalATS:    ats,
		ScreenshotPath: screenshot,
	})
	a.logEvent(runlog.Event{
		Step:           "skip",
		Status:         string(model.StatusSkipped),
		Reason:         "external apply",
		ExternalURL:    target.Href,
		ExternalATS:    ats,
		ScreenshotPath: screenshot,
	})
	return model.ApplyResult{
		ListingID: a.listing.ID,
		Status:    model.StatusSkipped,
		Message:   fmt.Sprintf("Apply button leads to external site (%s)", ats),
		Artifacts: model.ApplyArtifacts{ScreenshotPath: screenshot},
	}
}

// classifyTarget separates Indeed's own apply flow from a handoff to the
// employer's ATS.
func classifyTarget(target *automation.ApplyTarget) (kind, ats string) {
	text := strings.ToLower(target.Text)
	href := target.Href
	external := strings.Contains(text, "company site") ||
		strings.Contains(text, "company") ||
		(href != "" && !strings.Contains(href, "indeed.com"))
	if !external {
		return "indeed", ""
	}
	if href == "" {
		return "external", "external"
	}
	lower := strings.ToLower(href)
	for _, synonym := range locators.ExternalATSDomains {
		if strings.Contains(lower, synonym.Marker) {
			return "external", synonym.Name
		}
	}
	return "external", "unknown"
}

func (a *attempt) detectFlow() (string, error) {
	var flow string
	if err := a.page.Evaluate(locators.IndeedApplyFlowScript, &flow); err != nil {
		return "", fmt.Errorf("detect apply flow: %w", err)
	}
	if flow == "" {
		flow = "unknown"
	}
	return flow, nil
}

// waitForVerification blocks while an interstitial verification wall is up,
// giving the operator time to clear it in the browser window.
func waitForVerification(page automation.Page, label string) {
	for check := 0; check < verificationChecks; check++ {
		var blocked bool
		if err := page.Evaluate(locators.VerificationChallengeScript, &blocked); err != nil || !blocked {
			return
		}
		if check == 0 {
			log.Warnf("Verification wall detected (%s). Complete it in the browser window.", label)
		}
		time.Sleep(verificationDelay)
	}
	log.Warnf("Verification wait timed out (%s).", label)
}

func (a *attempt) meta() forms.Meta {
	return forms.Meta{
		RunID:               a.actx.RunID,
		ListingID:           a.listing.ID,
		ApplyType:           a.applyType,
		LogDir:              a.actx.LogDir,
		DataDir:             a.actx.DataDir,
		RunLog:              a.actx.RunLog,
		PauseOnVerification: a.actx.PauseOnVerification,
		Generate:            a.actx.Generate,
		PersistAnswer:       a.actx.PersistAnswer,
		WaitForHuman:        a.actx.WaitForHuman,
	}
}

// fail is the attempt's error boundary: screenshot, audit, failed result.
func (a *attempt) fail(err error) model.ApplyResult {
	screenshot := a.capture("apply-error")
	a.logEvent(runlog.Event{
		Step:           "error",
		Status:         string(model.StatusFailed),
		Reason:         err.Error(),
		ScreenshotPath: screenshot,
	})
	return model.ApplyResult{
		ListingID: a.listing.ID,
		Status:    model.StatusFailed,
		Message:   err.Error(),
		Artifacts: model.ApplyArtifacts{ScreenshotPath: screenshot},
	}
}

func (a *attempt) capture(step string) string {
	path := filepath.Join(a.actx.LogDir, utils.ScreenshotName(a.listing.ID, step))
	if err := a.page.Screenshot(path); err != nil {
		log.Warnf("Screenshot failed at %s: %v", step, err)
		return ""
	}
	a.lastScreenshot = path
	a.logEvent(runlog.Event{Step: step, ScreenshotPath: path})
	return path
}

func (a *attempt) logEvent(event runlog.Event) {
	event.RunID = a.actx.RunID
	event.ListingID = a.listing.ID
	event.ApplyType = a.applyType
	a.actx.RunLog.LogEvent(event)
}

func (a *attempt) closePage() {
	if a.actx.KeepOpen {
		return
	}
	if err := a.page.Close(); err != nil {
		log.Debugf("Closing page failed: %v", err)
	}
}

var _ boards.Connector = (*Connector)(nil)
