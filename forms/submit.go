package forms

import (
	"fmt"

	"autoapply/automation"
	"autoapply/locators"
)

// SubmitState classifies form readiness. Blocking signals dominate;
// incompleteness dominates readiness.
type SubmitState string

const (
	StateReady      SubmitState = "ready-to-submit"
	StateIncomplete SubmitState = "incomplete"
	StateBlocked    SubmitState = "blocked"
)

// SubmitSignals are the independent page observations submit readiness is
// derived from.
type SubmitSignals struct {
	SubmitButtonCount int  `json:"submitButtonCount"`
	HasCaptcha        bool `json:"hasCaptcha"`
	ErrorBanner       bool `json:"errorBanner"`
	RequiredMissing   bool `json:"requiredMissing"`
}

// PolicyOutcome is the gate verdict on a real submission.
type PolicyOutcome string

const (
	PolicyPass PolicyOutcome = "pass"
	PolicyFail PolicyOutcome = "fail"
)

// PolicyDecision pairs the verdict with the first failed guard.
type PolicyDecision struct {
	Outcome PolicyOutcome
	Reason  string
}

// SubmitDetection is the full detector output for one form step.
type SubmitDetection struct {
	State          SubmitState
	Reason         string
	Signals        SubmitSignals
	Policy         PolicyDecision
	ScreenshotPath string
}

// DeriveState folds the raw signals into a state. Captcha and error banners
// block regardless of anything else; missing required fields mark the form
// incomplete; otherwise a visible submit control means ready.
func DeriveState(signals SubmitSignals) (SubmitState, string) {
	switch {
	case signals.HasCaptcha:
		return StateBlocked, "captcha detected"
	case signals.ErrorBanner:
		return StateBlocked, "error banner detected"
	case signals.RequiredMissing:
		return StateIncomplete, "missing required fields"
	case signals.SubmitButtonCount > 0:
		return StateReady, "submit button detected"
	}
	return StateBlocked, "submit action not found"
}

// EvaluatePolicy gates a real submission. It passes only when the state is
// ready, exactly one submit control exists, and no blocking or missing-field
// signal is raised. Each guard is re-checked independently of DeriveState so
// the gate cannot be weakened by a state-derivation change.
func EvaluatePolicy(state SubmitState, signals SubmitSignals) PolicyDecision {
	switch {
	case signals.HasCaptcha:
		return PolicyDecision{PolicyFail, "captcha detected"}
	case signals.ErrorBanner:
		return PolicyDecision{PolicyFail, "error banner detected"}
	case signals.RequiredMissing:
		return PolicyDecision{PolicyFail, "missing required fields"}
	case signals.SubmitButtonCount != 1:
		return PolicyDecision{PolicyFail, "submit button count not equal to 1"}
	case state != StateReady:
		return PolicyDecision{PolicyFail, "not ready to submit"}
	}
	return PolicyDecision{PolicyPass, "all submit guards passed"}
}

// ReadSubmitSignals collects the raw signals from the current page.
func ReadSubmitSignals(page automation.Page) (SubmitSignals, error) {
	var signals SubmitSignals
	script := locators.Inject(locators.SubmitSignalsScript,
		locators.SubmitPhrases, locators.CaptchaSelector, locators.ErrorBannerSelector)
	if err := page.Evaluate(script, &signals); err != nil {
		return SubmitSignals{}, fmt.Errorf("read submit signals: %w", err)
	}
	return signals, nil
}
