package forms

import (
	"fmt"
	"strings"

	"autoapply/automation"
	"autoapply/locators"
)

// SelectOption is one choice of a select control.
type SelectOption struct {
	Value string `json:"value"`
	Text  string `json:"text"`
}

// Control is the extracted metadata of one visible form control. The
// selector points at the tagged element and stays valid until navigation.
type Control struct {
	Selector string         `json:"selector"`
	Tag      string         `json:"tag"`
	Type     string         `json:"type"`
	Hint     string         `json:"hint"`
	Label    string         `json:"label"`
	Question string         `json:"question"`
	Value    string         `json:"value"`
	Checked  bool           `json:"checked"`
	Options  []SelectOption `json:"options"`
}

// ExtractControls tags and inventories every visible form control on the
// current page.
func ExtractControls(page automation.Page) ([]Control, error) {
	var controls []Control
	if err := page.Evaluate(locators.ExtractControlsScript, &controls); err != nil {
		return nil, fmt.Errorf("extract form controls: %w", err)
	}
	return controls, nil
}

// IsSubmitControl reports whether a control is the form's submit action.
func (c Control) IsSubmitControl() bool {
	hint := strings.ToLower(c.Hint)
	return c.Type == "submit" ||
		strings.Contains(hint, "submit_app") ||
		strings.Contains(hint, "submit application")
}

// IsCaptcha reports whether the control hint carries verification markers.
func (c Control) IsCaptcha() bool {
	hint := strings.ToLower(c.Hint)
	for _, marker := range locators.CaptchaHints {
		if strings.Contains(hint, marker) {
			return true
		}
	}
	return false
}

// IsLongform reports whether the control takes a long-form written answer.
func (c Control) IsLongform() bool {
	if c.Tag == "textarea" {
		return true
	}
	hint := strings.ToLower(c.Hint)
	for _, marker := range locators.LongformHints {
		if strings.Contains(hint, marker) {
			return true
		}
	}
	return false
}
