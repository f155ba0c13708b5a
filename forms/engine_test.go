package forms

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autoapply/automation"
	"autoapply/model"
	"autoapply/runlog"
)

// memLog collects audit events in memory.
type memLog struct {
	mu     sync.Mutex
	events []runlog.Event
}

func (l *memLog) LogEvent(event runlog.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

func (l *memLog) Path() string { return "" }

func (l *memLog) Close() error { return nil }

func (l *memLog) steps(step string) []runlog.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []runlog.Event
	for _, event := range l.events {
		if event.Step == step {
			out = append(out, event)
		}
	}
	return out
}

// fakePage serves canned control metadata and records every mutation the
// engine drives through Evaluate.
type fakePage struct {
	controls     []Control
	signals      SubmitSignals
	formPresent  bool
	bareFileSlot bool

	filled        map[string]string
	selected      map[string]string
	checked       []string
	uploads       []string
	uploadTargets []string
	clicks        []string
	screenshots   []string
}

func newFakePage(controls []Control) *fakePage {
	return &fakePage{
		controls: controls,
		filled:   make(map[string]string),
		selected: make(map[string]string),
	}
}

func (p *fakePage) Goto(string) error { return nil }
func (p *fakePage) Fill(sel, value string) error { p.filled[sel] = value; return nil }
func (p *fakePage) Click(sel string) error { p.clicks = append(p.clicks, sel); return nil }
func (p *fakePage) ClickWithOutcome(sel string, _ time.Duration) (automation.ClickOutcome, error) {
	p.clicks = append(p.clicks, sel)
	return automation.ClickOutcome{Path: automation.ClickSamePageNoNav}, nil
}
func (p *fakePage) UploadFile(sel, path string) error {
	p.uploads = append(p.uploads, path)
	p.uploadTargets = append(p.uploadTargets, sel)
	return nil
}
func (p *fakePage) WaitFor(string, time.Duration) error {
	return nil
}
func (p *fakePage) Screenshot(path string) error {
	p.screenshots = append(p.screenshots, path)
	return nil
}
func (p *fakePage) URL() string { return "https://example.test/jobs/1" }
func (p *fakePage) GoBack() error { return nil }
func (p *fakePage) Close() error { return nil }
func (p *fakePage) LocateApplyTarget() (*automation.ApplyTarget, error) {
	return nil, nil
}

func (p *fakePage) Evaluate(script string, out interface{}) error {
	switch {
	case strings.Contains(script, `new Event("input"`):
		args := scriptArgs(script)
		p.filled[args[0].(string)] = args[1].(string)
		return decodeInto(true, out)
	case strings.Contains(script, "el.checked = true"):
		args := scriptArgs(script)
		p.checked = append(p.checked, args[0].(string))
		return decodeInto(true, out)
	case strings.Contains(script, "el.value = value"):
		args := scriptArgs(script)
		p.selected[args[0].(string)] = args[1].(string)
		return decodeInto(true, out)
	case strings.Contains(script, "data-autoapply-ctl"):
		return decodeInto(p.controls, out)
	case strings.Contains(script, "submitButtonCount"):
		return decodeInto(p.signals, out)
	case strings.Contains(script, "data-autoapply-next"):
		return decodeInto(nil, out)
	case strings.Contains(script, "data-autoapply-file"):
		if p.bareFileSlot {
			return decodeInto("input[type=file][data-autoapply-file='resume']", out)
		}
		return decodeInto(nil, out)
	case strings.Contains(script, `Boolean(document.querySelector("form"))`):
		return decodeInto(p.formPresent, out)
	case strings.Contains(script, "scrollTo"):
		return nil
	}
	return decodeInto(nil, out)
}

func decodeInto(v, out interface{}) error {
	if out == nil {
		return nil
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(payload, out)
}

// scriptArgs recovers the JSON-injected arguments of a rendered script.
func scriptArgs(script string) []interface{} {
	idx := strings.LastIndex(script, "})(")
	if idx < 0 {
		return nil
	}
	inner := script[idx+3 : len(script)-1]
	var args []interface{}
	if err := json.Unmarshal([]byte("["+inner+"]"), &args); err != nil {
		return nil
	}
	return args
}

func testProfile() *model.CandidateProfile {
	return &model.CandidateProfile{
		FullName: "Jordan Smith",
		Email:    "jordan@example.test",
		Phone:    "555-0100",
		Location: "Austin, TX",
		EEO:      model.EEOAnswers{Gender: "Female"},
		Answers:  map[string]string{"cover_letter": "Stored cover letter."},
	}
}

func testMeta(log *memLog) Meta {
	return Meta{
		RunID:     "run-1",
		ListingID: "42",
		ApplyType: "greenhouse",
		LogDir:    "logs",
		RunLog:    log,
	}
}

func TestMapAndFillFillsConfidentMatches(t *testing.T) {
	page := newFakePage([]Control{
		{Selector: "[data-autoapply-ctl='ctl-0']", Tag: "input", Type: "text", Hint: "First Name first_name"},
		{Selector: "[data-autoapply-ctl='ctl-1']", Tag: "input", Type: "email", Hint: "Email candidate_email"},
	})
	auditLog := &memLog{}

	outcome, err := NewEngine().MapAndFill(page, testProfile(), nil, testMeta(auditLog))
	require.NoError(t, err)

	assert.Len(t, outcome.Filled, 2)
	assert.Equal(t, "Jordan", page.filled["[data-autoapply-ctl='ctl-0']"])
	assert.Equal(t, "jordan@example.test", page.filled["[data-autoapply-ctl='ctl-1']"])
	assert.Len(t, auditLog.steps("field-filled"), 2)
}

func TestMapAndFillNeverOverwritesExistingValues(t *testing.T) {
	page := newFakePage([]Control{
		{Selector: "[data-autoapply-ctl='ctl-0']", Tag: "input", Type: "text", Hint: "Email", Value: "prefilled@example.test"},
	})
	auditLog := &memLog{}

	outcome, err := NewEngine().MapAndFill(page, testProfile(), nil, testMeta(auditLog))
	require.NoError(t, err)

	assert.Empty(t, outcome.Filled)
	assert.Empty(t, page.filled)
	require.Len(t, outcome.Skipped, 1)
	assert.Equal(t, "already filled", outcome.Skipped[0].Reason)
}

func TestMapAndFillSkipReasons(t *testing.T) {
	page := newFakePage([]Control{
		{Selector: "[data-autoapply-ctl='ctl-0']", Tag: "input", Type: "text", Hint: "favorite color"},
		{Selector: "[data-autoapply-ctl='ctl-1']", Tag: "input", Type: "text", Hint: "LinkedIn profile"},
		{Selector: "[data-autoapply-ctl='ctl-2']", Tag: "input", Type: "text", Hint: ""},
		{Selector: "[data-autoapply-ctl='ctl-3']", Tag: "input", Type: "submit", Hint: "submit_app"},
	})
	auditLog := &memLog{}

	outcome, err := NewEngine().MapAndFill(page, testProfile(), nil, testMeta(auditLog))
	require.NoError(t, err)

	reasons := make(map[string]string)
	for _, entry := range outcome.Skipped {
		reasons[entry.Reason] = entry.Field
	}
	assert.Contains(t, reasons, "low confidence")
	assert.Contains(t, reasons, "no data")
	assert.Contains(t, reasons, "no hint")
	assert.Contains(t, reasons, "submit-control")
	assert.Empty(t, page.filled)
}

func TestMapAndFillSelectControl(t *testing.T) {
	page := newFakePage([]Control{
		{
			Selector: "[data-autoapply-ctl='ctl-0']",
			Tag:      "select",
			Type:     "text",
			Hint:     "Which state or province?",
			Options: []SelectOption{
				{Value: "tx", Text: "Texas"},
				{Value: "ca", Text: "California"},
			},
		},
	})
	profile := testProfile()
	profile.State = "Texas"
	auditLog := &memLog{}

	outcome, err := NewEngine().MapAndFill(page, profile, nil, testMeta(auditLog))
	require.NoError(t, err)

	assert.Len(t, outcome.Filled, 1)
	assert.Equal(t, "tx", page.selected["[data-autoapply-ctl='ctl-0']"])
}

func TestMapAndFillSelectWithoutMatchingOption(t *testing.T) {
	page := newFakePage([]Control{
		{
			Selector: "[data-autoapply-ctl='ctl-0']",
			Tag:      "select",
			Type:     "text",
			Hint:     "Which state or province?",
			Options:  []SelectOption{{Value: "ny", Text: "New York"}},
		},
	})
	profile := testProfile()
	profile.State = "Texas"

	outcome, err := NewEngine().MapAndFill(page, profile, nil, testMeta(&memLog{}))
	require.NoError(t, err)

	require.Len(t, outcome.Skipped, 1)
	assert.Equal(t, "no matching option", outcome.Skipped[0].Reason)
	assert.Empty(t, page.selected)
}

func TestMapAndFillGenderRadio(t *testing.T) {
	page := newFakePage([]Control{
		{Selector: "[data-autoapply-ctl='ctl-0']", Tag: "input", Type: "radio", Hint: "Gender", Label: "Woman", Question: "Gender"},
		{Selector: "[data-autoapply-ctl='ctl-1']", Tag: "input", Type: "radio", Hint: "Gender", Label: "Man", Question: "Gender"},
		{Selector: "[data-autoapply-ctl='ctl-2']", Tag: "input", Type: "radio", Hint: "Gender", Label: "I don't wish to answer", Question: "Gender"},
	})
	auditLog := &memLog{}

	_, err := NewEngine().MapAndFill(page, testProfile(), nil, testMeta(auditLog))
	require.NoError(t, err)

	// Only the Woman option matches the stored Female answer; the decline
	// option is never selected.
	assert.Equal(t, []string{"[data-autoapply-ctl='ctl-0']"}, page.checked)
}

func TestMapAndFillLongformUsesStoredAnswer(t *testing.T) {
	page := newFakePage([]Control{
		{Selector: "[data-autoapply-ctl='ctl-0']", Tag: "textarea", Type: "text", Hint: "Cover Letter"},
	})
	auditLog := &memLog{}

	outcome, err := NewEngine().MapAndFill(page, testProfile(), nil, testMeta(auditLog))
	require.NoError(t, err)

	assert.Len(t, outcome.Filled, 1)
	assert.Equal(t, "Stored cover letter.", page.filled["[data-autoapply-ctl='ctl-0']"])
}

func TestMapAndFillLongformGeneratesAndPersists(t *testing.T) {
	page := newFakePage([]Control{
		{Selector: "[data-autoapply-ctl='ctl-0']", Tag: "textarea", Type: "text", Hint: "Why do you want to join?"},
	})
	profile := testProfile()
	auditLog := &memLog{}

	var persistedKey, persistedAnswer string
	meta := testMeta(auditLog)
	meta.Generate = func(question string, _ *model.CandidateProfile) (string, error) {
		return "Generated answer.", nil
	}
	meta.PersistAnswer = func(key, answer string) error {
		persistedKey, persistedAnswer = key, answer
		return nil
	}

	outcome, err := NewEngine().MapAndFill(page, profile, nil, meta)
	require.NoError(t, err)

	assert.Len(t, outcome.Filled, 1)
	assert.Equal(t, "Generated answer.", page.filled["[data-autoapply-ctl='ctl-0']"])
	assert.Equal(t, KeyWhyCompany, persistedKey)
	assert.Equal(t, "Generated answer.", persistedAnswer)
	assert.Equal(t, "Generated answer.", profile.Answers[KeyWhyCompany])
}

func TestMapAndFillLongformMissingAnswer(t *testing.T) {
	page := newFakePage([]Control{
		{Selector: "[data-autoapply-ctl='ctl-0']", Tag: "textarea", Type: "text", Hint: "Describe your ideal role"},
	})
	auditLog := &memLog{}

	outcome, err := NewEngine().MapAndFill(page, testProfile(), nil, testMeta(auditLog))
	require.NoError(t, err)

	require.Len(t, outcome.Skipped, 1)
	assert.Equal(t, "missing-answer", outcome.Skipped[0].Reason)
	assert.Len(t, auditLog.steps("missing-fields"), 1)
}

func TestMapAndFillUploadsResume(t *testing.T) {
	page := newFakePage([]Control{
		{Selector: "[data-autoapply-ctl='ctl-0']", Tag: "input", Type: "file", Hint: "Resume/CV"},
	})
	resume := &model.ResumeAsset{Label: "default", Path: "/tmp/resume.pdf"}
	auditLog := &memLog{}

	outcome, err := NewEngine().MapAndFill(page, testProfile(), resume, testMeta(auditLog))
	require.NoError(t, err)

	assert.True(t, outcome.ResumeUploaded)
	assert.Equal(t, []string{"/tmp/resume.pdf"}, page.uploads)
	assert.Len(t, auditLog.steps("resume-upload"), 1)
}

func TestMapAndFillUploadsResumeToFirstFileInput(t *testing.T) {
	page := newFakePage([]Control{
		{Selector: "[data-autoapply-ctl='ctl-0']", Tag: "input", Type: "file", Hint: "Resume/CV"},
		{Selector: "[data-autoapply-ctl='ctl-1']", Tag: "input", Type: "file", Hint: "Cover Letter"},
	})
	resume := &model.ResumeAsset{Label: "default", Path: "/tmp/resume.pdf"}

	outcome, err := NewEngine().MapAndFill(page, testProfile(), resume, testMeta(&memLog{}))
	require.NoError(t, err)

	assert.True(t, outcome.ResumeUploaded)
	assert.Equal(t, []string{"[data-autoapply-ctl='ctl-0']"}, page.uploadTargets)
}

func TestMapAndFillTagsBareFileInputForResume(t *testing.T) {
	page := newFakePage(nil)
	page.bareFileSlot = true
	resume := &model.ResumeAsset{Label: "default", Path: "/tmp/resume.pdf"}

	outcome, err := NewEngine().MapAndFill(page, testProfile(), resume, testMeta(&memLog{}))
	require.NoError(t, err)

	assert.True(t, outcome.ResumeUploaded)
	assert.Equal(t, []string{"input[type=file][data-autoapply-file='resume']"}, page.uploadTargets)
}

func TestMapAndFillCaptchaPausesForHuman(t *testing.T) {
	page := newFakePage([]Control{
		{Selector: "[data-autoapply-ctl='ctl-0']", Tag: "input", Type: "text", Hint: "g-recaptcha token"},
	})
	auditLog := &memLog{}

	waited := false
	meta := testMeta(auditLog)
	meta.PauseOnVerification = true
	meta.WaitForHuman = func() { waited = true }

	outcome, err := NewEngine().MapAndFill(page, testProfile(), nil, meta)
	require.NoError(t, err)

	assert.True(t, outcome.CaptchaDetected)
	assert.True(t, waited)
	assert.Len(t, auditLog.steps("pause-verification"), 1)
}

func TestDetectSubmitStateAudit(t *testing.T) {
	page := newFakePage(nil)
	page.signals = SubmitSignals{SubmitButtonCount: 1}
	auditLog := &memLog{}

	detection, err := NewEngine().DetectSubmitState(page, testMeta(auditLog))
	require.NoError(t, err)

	assert.Equal(t, StateReady, detection.State)
	assert.Equal(t, PolicyPass, detection.Policy.Outcome)
	assert.Len(t, auditLog.steps("submit-detect"), 1)
	assert.Len(t, auditLog.steps("submit-policy"), 1)
	assert.NotEmpty(t, detection.ScreenshotPath)
}

func TestAnswerScreeningStopsWithoutNextButton(t *testing.T) {
	page := newFakePage(nil)
	auditLog := &memLog{}

	err := NewEngine().AnswerScreening(page, testMeta(auditLog))
	require.NoError(t, err)
	assert.Empty(t, page.clicks)
	assert.Empty(t, auditLog.steps("advance-step"))
}
