package greenhouse

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"

	"autoapply/automation"
	"autoapply/boards"
	"autoapply/forms"
	"autoapply/locators"
	"autoapply/model"
	"autoapply/runlog"
	"autoapply/utils"
)

// Wait tuning. Vars so tests can tighten them.
var (
	applyTargetTimeout = 8 * time.Second
	formTimeout        = 10 * time.Second
	pollInterval       = 500 * time.Millisecond
	settleDelay        = 2 * time.Second
)

// attempt is the mutable state of one listing's apply flow. The active page
// can change mid-attempt when the apply click opens a new tab; the original
// page is kept so both get closed.
type attempt struct {
	actx    *boards.ApplyContext
	listing model.JobListing
	page    automation.Page
	extra   automation.Page
	meta    forms.Meta

	formFound      bool
	ctaClicked     bool
	lastScreenshot string
}

// strategy is one step of the apply-target fallback chain. Strategies run in
// order until a form is found; each failure falls through to the next. The
// apply control is clicked at most once per attempt: once a click has been
// spent, the remaining strategies only mine URLs and record inventories.
type strategy struct {
	name string
	run  func(a *attempt) error
}

var fallbackChain = []strategy{
	{"visible-target", (*attempt).tryVisibleTarget},
	{"scroll-retry", (*attempt).tryScrollRetry},
	{"deep-scan", (*attempt).tryDeepScan},
	{"embedded-url", (*attempt).tryEmbeddedURL},
	{"iframe-url", (*attempt).tryIframeURL},
	{"template-url", (*attempt).tryTemplateURL},
}

// Apply runs one listing end to end. All failures are converted into a
// failed result with an error screenshot; only the terminal attempted
// outcomes reach the repository.
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

	a := &attempt{
		actx:    actx,
		listing: listing,
		page:    page,
		meta: forms.Meta{
			RunID:               actx.RunID,
			ListingID:           listing.ID,
			ApplyType:           boardName,
			LogDir:              actx.LogDir,
			DataDir:             actx.DataDir,
			RunLog:              actx.RunLog,
			PauseOnVerification: actx.PauseOnVerification,
			Generate:            actx.Generate,
			PersistAnswer:       actx.PersistAnswer,
			WaitForHuman:        actx.WaitForHuman,
		},
	}
	defer a.closePages()

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
	a.logEvent(runlog.Event{
		Step:    "attempt",
		Title:   a.listing.Title,
		Company: a.listing.Company,
	})

	for _, s := range fallbackChain {
		if err := s.run(a); err != nil {
			return a.fail(fmt.Errorf("%s: %w", s.name, err))
		}
		if a.formFound {
			break
		}
	}

	if !a.formFound {
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
			Message:   "No apply button detected",
			Artifacts: model.ApplyArtifacts{ScreenshotPath: screenshot},
		}
	}

	engine := a.actx.Engine
	if _, err := engine.MapAndFill(a.page, a.actx.Profile, a.actx.Resume, a.meta); err != nil {
		return a.fail(err)
	}
	if err := engine.AnswerScreening(a.page, a.meta); err != nil {
		return a.fail(err)
	}
	detection, err := engine.DetectSubmitState(a.page, a.meta)
	if err != nil {
		return a.fail(err)
	}

	if !a.actx.DryRun && detection.Policy.Outcome == forms.PolicyPass && detection.State == forms.StateReady {
		result := a.submit()
		a.logEvent(runlog.Event{
			Step:           "result",
			Status:         string(result.Status),
			Reason:         result.Message,
			ScreenshotPath: result.Artifacts.ScreenshotPath,
		})
		return result
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
		Message:   fmt.Sprintf("Dry-run: %s (%s)", detection.State, detection.Reason),
		Artifacts: model.ApplyArtifacts{ScreenshotPath: screenshot},
	}
}

// tryVisibleTarget scans the rendered page for an apply control and clicks
// it when found.
func (a *attempt) tryVisibleTarget() error {
	if err := a.page.Evaluate(locators.ScrollToTopScript, nil); err != nil {
		return err
	}
	target := a.waitForApplyTarget(applyTargetTimeout)
	if target == nil {
		return nil
	}
	return a.clickTarget(target.Selector)
}

// tryScrollRetry repeats the visible scan after forcing lazy content to
// render. It only runs when the first scan found nothing to click.
func (a *attempt) tryScrollRetry() error {
	if a.ctaClicked {
		return nil
	}
	if err := a.page.Evaluate(locators.ScrollToBottomScript, nil); err != nil {
		return err
	}
	time.Sleep(time.Second)
	target := a.waitForApplyTarget(applyTargetTimeout)
	if target == nil {
		return nil
	}
	return a.clickTarget(target.Selector)
}

// tryDeepScan walks open shadow roots for a hidden apply control and records
// the clickable and frame inventories for later diagnosis.
func (a *attempt) tryDeepScan() error {
	if !a.ctaClicked {
		var target *automation.ApplyTarget
		script := locators.Inject(locators.DeepApplyTargetScript, locators.ApplyPhrases)
		if err := a.page.Evaluate(script, &target); err != nil {
			return err
		}
		if target != nil {
			if err := a.clickTarget(target.Selector); err != nil {
				return err
			}
		}
	}
	a.logInventories()
	return nil
}

// tryEmbeddedURL mines script text and anchors for an apply URL.
func (a *attempt) tryEmbeddedURL() error {
	var derived *string
	script := locators.Inject(locators.EmbeddedApplyURLScript, locators.ApplyURLPatterns)
	if err := a.page.Evaluate(script, &derived); err != nil {
		return err
	}
	if derived == nil || *derived == "" {
		return nil
	}
	a.logEvent(runlog.Event{Step: "derived-apply-url", Reason: *derived})
	return a.gotoAndWaitForForm(*derived)
}

// tryIframeURL navigates into an ATS-hosted frame directly.
func (a *attempt) tryIframeURL() error {
	var src *string
	script := locators.Inject(locators.FrameApplyURLScript, locators.ATSFrameDomains)
	if err := a.page.Evaluate(script, &src); err != nil {
		return err
	}
	if src == nil || *src == "" {
		return nil
	}
	a.logEvent(runlog.Event{Step: "iframe-apply-url", Reason: *src})
	return a.gotoAndWaitForForm(*src)
}

// tryTemplateURL falls back to the deterministic hosted apply URL.
func (a *attempt) tryTemplateURL() error {
	if a.listing.CompanySlug == "" {
		return nil
	}
	url := fmt.Sprintf(locators.GreenhouseFallbackURL, a.listing.CompanySlug, a.listing.ID)
	a.logEvent(runlog.Event{Step: "fallback", Reason: url})
	if err := a.page.Goto(url); err != nil {
		return err
	}
	a.logEvent(runlog.Event{Step: "fallback-final-url", Reason: a.page.URL()})
	a.waitForForm()
	return nil
}

func (a *attempt) waitForApplyTarget(timeout time.Duration) *automation.ApplyTarget {
	deadline := time.Now().Add(timeout)
	for {
		target, err := a.page.LocateApplyTarget()
		if err == nil && target != nil {
			return target
		}
		if time.Now().After(deadline) {
			return nil
		}
		time.Sleep(pollInterval)
	}
}

// clickTarget clicks the tagged apply control, adopts a new tab when one
// opens, and waits for the form.
func (a *attempt) clickTarget(selector string) error {
	a.ctaClicked = true
	outcome, err := a.page.ClickWithOutcome(selector, applyTargetTimeout)
	if err != nil {
		return err
	}
	if outcome.Page != nil && outcome.Page != a.page {
		a.extra = a.page
		a.page = outcome.Page
	}
	a.logEvent(runlog.Event{Step: "cta-click", Reason: string(outcome.Path)})
	a.waitForForm()
	return nil
}

func (a *attempt) gotoAndWaitForForm(url string) error {
	if err := a.page.Goto(url); err != nil {
		return err
	}
	a.waitForForm()
	return nil
}

// waitForForm polls for a form or bare file input and records the outcome in
// the attempt state.
func (a *attempt) waitForForm() {
	deadline := time.Now().Add(formTimeout)
	for {
		var present bool
		if err := a.page.Evaluate(locators.FormPresentScript, &present); err == nil && present {
			a.formFound = true
			return
		}
		if time.Now().After(deadline) {
			return
		}
		time.Sleep(pollInterval)
	}
}

func (a *attempt) logInventories() {
	var clickables []map[string]string
	if err := a.page.Evaluate(locators.ClickableInventoryScript, &clickables); err == nil {
		payload, _ := json.Marshal(clickables)
		a.logEvent(runlog.Event{Step: "clickable-inventory", Reason: string(payload)})
	}
	var frames []map[string]string
	if err := a.page.Evaluate(locators.FrameInventoryScript, &frames); err == nil {
		payload, _ := json.Marshal(frames)
		a.logEvent(runlog.Event{Step: "frame-inventory", Reason: string(payload)})
	}
}

// submit clicks the single submit control. Only reached when the policy gate
// passed.
func (a *attempt) submit() model.ApplyResult {
	var selector *string
	script := locators.Inject(locators.SubmitButtonScript, locators.SubmitPhrases)
	if err := a.page.Evaluate(script, &selector); err != nil || selector == nil || *selector == "" {
		screenshot := a.capture("submit-missing")
		return model.ApplyResult{
			ListingID: a.listing.ID,
			Status:    model.StatusFailed,
			Message:   "Submit button not found",
			Artifacts: model.ApplyArtifacts{ScreenshotPath: screenshot},
		}
	}

	if err := a.page.Click(*selector); err != nil {
		return a.fail(fmt.Errorf("submit click: %w", err))
	}
	time.Sleep(settleDelay)
	screenshot := a.capture("submitted")
	a.logEvent(runlog.Event{Step: "submit-click", ScreenshotPath: screenshot})
	return model.ApplyResult{
		ListingID: a.listing.ID,
		Status:    model.StatusSubmitted,
		Message:   "Submitted",
		Artifacts: model.ApplyArtifacts{ScreenshotPath: screenshot},
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
	path := filepath.Join(a.meta.LogDir, utils.ScreenshotName(a.listing.ID, step))
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
	event.ApplyType = boardName
	a.actx.RunLog.LogEvent(event)
}

func (a *attempt) closePages() {
	if a.actx.KeepOpen {
		return
	}
	if a.extra != nil {
		if err := a.extra.Close(); err != nil {
			log.Debugf("Closing original page failed: %v", err)
		}
	}
	if err := a.page.Close(); err != nil {
		log.Debugf("Closing page failed: %v", err)
	}
}
