package forms

import (
	"fmt"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"autoapply/automation"
	"autoapply/locators"
	"autoapply/model"
	"autoapply/runlog"
	"autoapply/utils"
)

// Meta carries the per-attempt context the engine needs for auditing and
// long-form answer generation.
type Meta struct {
	RunID               string
	ListingID           string
	ApplyType           string
	LogDir              string
	DataDir             string
	RunLog              runlog.Logger
	PauseOnVerification bool
	// Generate produces a long-form answer for a question with no stored
	// answer. Nil disables generation.
	Generate func(question string, profile *model.CandidateProfile) (string, error)
	// PersistAnswer writes a generated answer back to the profile store.
	PersistAnswer func(key, answer string) error
	// WaitForHuman blocks until a human resolves a verification challenge.
	WaitForHuman func()
}

// FieldFill records one fill or skip decision for auditing.
type FieldFill struct {
	Field  string
	Reason string
	Hint   string
}

// FillOutcome summarizes one MapAndFill pass.
type FillOutcome struct {
	Filled          []FieldFill
	Skipped         []FieldFill
	CaptchaDetected bool
	ResumeUploaded  bool
}

// Engine maps extracted controls onto the profile and drives fills through
// the page. One engine instance serves many attempts.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// MapAndFill classifies every visible control, fills confident matches that
// are still empty, uploads the resume, and audits every decision. Controls
// that are already filled are never overwritten.
func (e *Engine) MapAndFill(page automation.Page, profile *model.CandidateProfile, resume *model.ResumeAsset, meta Meta) (FillOutcome, error) {
	log.Info("Mapping fields in apply form")
	e.captureStep(page, meta, "before-fill")

	controls, err := ExtractControls(page)
	if err != nil {
		return FillOutcome{}, err
	}

	var outcome FillOutcome
	var longform []Control
	fileSelector := ""
	values := profile.FieldValues()

	for _, control := range controls {
		switch {
		case control.IsSubmitControl():
			outcome.skip("submit", "submit-control", control.Hint)
			continue
		case control.IsCaptcha():
			outcome.CaptchaDetected = true
			outcome.skip("captcha", "captcha", control.Hint)
			continue
		case control.IsLongform():
			longform = append(longform, control)
			continue
		case control.Type == "file":
			// The resume goes to the first file input; later ones are
			// typically cover-letter or portfolio slots.
			if fileSelector == "" {
				fileSelector = control.Selector
			}
			continue
		case control.Hint == "":
			outcome.skip("unknown", "no hint", control.Hint)
			continue
		}

		match := Classify(control.Hint)
		if control.Type == "radio" || control.Type == "checkbox" {
			e.fillChoice(page, control, match, values, &outcome)
			continue
		}
		if match.Field == "" || match.Confidence < ConfidenceFloor {
			outcome.skip(orUnknown(match.Field), "low confidence", control.Hint)
			continue
		}

		value := values[match.Field]
		if value == "" {
			outcome.skip(match.Field, "no data", control.Hint)
			continue
		}

		if control.Tag == "select" {
			e.fillSelect(page, control, match.Field, value, &outcome)
			continue
		}

		if strings.TrimSpace(control.Value) != "" {
			outcome.skip(match.Field, "already filled", control.Hint)
			continue
		}
		if err := page.Evaluate(locators.Inject(locators.SetValueScript, control.Selector, value), nil); err != nil {
			outcome.skip(match.Field, "fill failed", control.Hint)
			continue
		}
		outcome.fill(match.Field, "")
	}

	e.fillLongform(page, longform, profile, meta, &outcome)

	log.Infof("Filled fields: %d. Skipped: %d.", len(outcome.Filled), len(outcome.Skipped))
	if len(outcome.Skipped) > 0 {
		log.Warnf("Skip reasons: %v", outcome.skipReasonCounts())
	}
	e.auditOutcome(meta, outcome)

	e.captureStep(page, meta, "after-fill")
	if fileSelector == "" && resume != nil {
		// Extraction can miss inputs rendered outside the tagged controls;
		// tag the first file input directly before giving up.
		var tagged *string
		if err := page.Evaluate(locators.TagFileInputScript, &tagged); err == nil && tagged != nil {
			fileSelector = *tagged
		}
	}
	if fileSelector == "" {
		log.Warn("No resume file input found in apply form.")
	} else if resume != nil {
		if err := page.UploadFile(fileSelector, resume.Path); err != nil {
			log.Warnf("Resume upload failed: %v", err)
		} else {
			outcome.ResumeUploaded = true
			log.Info("Resume uploaded to file input.")
			meta.RunLog.LogEvent(runlog.Event{
				RunID:     meta.RunID,
				ListingID: meta.ListingID,
				ApplyType: meta.ApplyType,
				Step:      "resume-upload",
				Field:     resume.Label,
			})
		}
	}

	if outcome.CaptchaDetected && meta.PauseOnVerification && meta.WaitForHuman != nil {
		meta.RunLog.LogEvent(runlog.Event{
			RunID:     meta.RunID,
			ListingID: meta.ListingID,
			ApplyType: meta.ApplyType,
			Step:      "pause-verification",
			Reason:    "captcha detected",
		})
		log.Warn("Verification detected. Complete it in the browser, then continue.")
		meta.WaitForHuman()
	}

	return outcome, nil
}

func (e *Engine) fillSelect(page automation.Page, control Control, field, value string, outcome *FillOutcome) {
	target := strings.ToLower(value)
	for _, option := range control.Options {
		if !strings.Contains(strings.ToLower(option.Text), target) {
			continue
		}
		script := locators.Inject(locators.SelectOptionScript, control.Selector, option.Value)
		if err := page.Evaluate(script, nil); err != nil {
			outcome.skip(field, "fill failed", control.Hint)
			return
		}
		outcome.fill(field, "")
		return
	}
	outcome.skip(field, "no matching option", control.Hint)
}

func (e *Engine) fillChoice(page automation.Page, control Control, match FieldMatch, values map[string]string, outcome *FillOutcome) {
	candidate := strings.ToLower(strings.TrimSpace(control.Label + " " + control.Value))
	field := match.Field
	if field == "" || match.Confidence < ConfidenceFloor {
		field = RetargetDemographic(control.Question, candidate)
	}
	if field == "" {
		outcome.skip("unknown", "unsupported input type", control.Hint)
		return
	}
	answer := values[field]
	if answer == "" {
		outcome.skip(field, "unsupported input type", control.Hint)
		return
	}
	if !locators.MatchOption(locators.SynonymsFor(field), answer, candidate) {
		outcome.skip(field, "unsupported input type", control.Hint)
		return
	}
	if err := page.Evaluate(locators.Inject(locators.CheckControlScript, control.Selector), nil); err != nil {
		outcome.skip(field, "fill failed", control.Hint)
		return
	}
	outcome.fill(field, "")
}

func (e *Engine) fillLongform(page automation.Page, entries []Control, profile *model.CandidateProfile, meta Meta, outcome *FillOutcome) {
	for _, entry := range entries {
		if entry.Hint == "" {
			outcome.skip("longform", "no hint", entry.Hint)
			continue
		}
		key := ClassifyLongformKey(entry.Hint)
		answer := LookupAnswer(profile.Answers, key)
		reason := "answer"

		if answer == "" && meta.Generate != nil {
			generated, err := meta.Generate(entry.Hint, profile)
			if err != nil {
				log.Warnf("Answer generation failed: %v", err)
			} else if generated != "" {
				answer = generated
				reason = "generated"
				profile.SetAnswer(key, answer)
				if meta.PersistAnswer != nil {
					if err := meta.PersistAnswer(key, answer); err != nil {
						log.Warnf("Persisting generated answer failed: %v", err)
					}
				}
			}
		}

		if answer == "" {
			outcome.skip("longform", "missing-answer", entry.Hint)
			continue
		}
		if err := page.Evaluate(locators.Inject(locators.SetValueScript, entry.Selector, answer), nil); err != nil {
			outcome.skip("longform", "fill failed", entry.Hint)
			continue
		}
		outcome.fill("longform", reason)
	}
}

func (e *Engine) auditOutcome(meta Meta, outcome FillOutcome) {
	for _, entry := range outcome.Filled {
		meta.RunLog.LogEvent(runlog.Event{
			RunID:     meta.RunID,
			ListingID: meta.ListingID,
			ApplyType: meta.ApplyType,
			Step:      "field-filled",
			Field:     entry.Field,
		})
	}
	for _, entry := range outcome.Skipped {
		meta.RunLog.LogEvent(runlog.Event{
			RunID:     meta.RunID,
			ListingID: meta.ListingID,
			ApplyType: meta.ApplyType,
			Step:      "field-skipped",
			Field:     entry.Field,
			Reason:    entry.Reason,
			Hint:      entry.Hint,
		})
	}

	var missing []MissingField
	for _, entry := range outcome.Skipped {
		if IsMissingReason(entry.Reason) {
			missing = append(missing, MissingField{Field: entry.Field, Reason: entry.Reason, Hint: entry.Hint})
		}
	}
	if len(missing) == 0 {
		return
	}
	if err := RecordMissingFields(meta.DataDir, meta.RunID, meta.ListingID, meta.ApplyType, missing); err != nil {
		log.Warnf("Failed to persist missing fields: %v", err)
	}
	meta.RunLog.LogEvent(runlog.Event{
		RunID:     meta.RunID,
		ListingID: meta.ListingID,
		ApplyType: meta.ApplyType,
		Step:      "missing-fields",
		Reason:    fmt.Sprintf("%d missing fields", len(missing)),
	})
}

// DetectSubmitState reads the submit signals, derives the state, and runs
// the policy gate. Both verdict and state are audited with a screenshot.
func (e *Engine) DetectSubmitState(page automation.Page, meta Meta) (SubmitDetection, error) {
	log.Info("Detecting submit readiness")
	e.captureStep(page, meta, "before-submit-detect")

	signals, err := ReadSubmitSignals(page)
	if err != nil {
		return SubmitDetection{}, err
	}
	state, reason := DeriveState(signals)
	policy := EvaluatePolicy(state, signals)
	screenshotPath := e.captureStep(page, meta, "after-submit-detect")

	meta.RunLog.LogEvent(runlog.Event{
		RunID:              meta.RunID,
		ListingID:          meta.ListingID,
		ApplyType:          meta.ApplyType,
		Step:               "submit-detect",
		Status:             string(state),
		Reason:             reason,
		SubmitPolicy:       string(policy.Outcome),
		SubmitPolicyReason: policy.Reason,
		ScreenshotPath:     screenshotPath,
	})
	meta.RunLog.LogEvent(runlog.Event{
		RunID:              meta.RunID,
		ListingID:          meta.ListingID,
		ApplyType:          meta.ApplyType,
		Step:               "submit-policy",
		Status:             string(policy.Outcome),
		Reason:             policy.Reason,
		SubmitPolicy:       string(policy.Outcome),
		SubmitPolicyReason: policy.Reason,
		ScreenshotPath:     screenshotPath,
	})

	return SubmitDetection{
		State:          state,
		Reason:         reason,
		Signals:        signals,
		Policy:         policy,
		ScreenshotPath: screenshotPath,
	}, nil
}

func (e *Engine) captureStep(page automation.Page, meta Meta, step string) string {
	path := filepath.Join(meta.LogDir, utils.ScreenshotName(meta.ListingID, step))
	if err := page.Screenshot(path); err != nil {
		log.Warnf("Screenshot failed at %s: %v", step, err)
		return ""
	}
	meta.RunLog.LogEvent(runlog.Event{
		RunID:          meta.RunID,
		ListingID:      meta.ListingID,
		ApplyType:      meta.ApplyType,
		Step:           step,
		ScreenshotPath: path,
	})
	return path
}

func (o *FillOutcome) fill(field, reason string) {
	o.Filled = append(o.Filled, FieldFill{Field: field, Reason: reason})
}

func (o *FillOutcome) skip(field, reason, hint string) {
	o.Skipped = append(o.Skipped, FieldFill{Field: field, Reason: reason, Hint: hint})
}

func (o *FillOutcome) skipReasonCounts() map[string]int {
	counts := make(map[string]int, len(o.Skipped))
	for _, entry := range o.Skipped {
		counts[entry.Reason]++
	}
	return counts
}

func orUnknown(field string) string {
	if field == "" {
		return "unknown"
	}
	return field
}
