// Package automation abstracts the driven browser behind small Session and
// Page interfaces so the apply pipeline can be exercised without a browser.
package automation

import "time"

// ClickPath classifies what a click did to the page topology.
type ClickPath string

const (
	ClickNewTab             ClickPath = "new-tab"
	ClickSamePageNavigation ClickPath = "same-page-navigation"
	ClickSamePageNoNav      ClickPath = "same-page-no-nav"
)

// ClickOutcome reports the click classification. Page is non-nil only for
// new-tab outcomes; the caller takes ownership of it and keeps the original
// handle for closing.
type ClickOutcome struct {
	Page Page
	Path ClickPath
}

// ApplyTarget is a tagged application entry point on the current page.
type ApplyTarget struct {
	Selector string `json:"selector"`
	Href     string `json:"href,omitempty"`
	Text     string `json:"text,omitempty"`
}

// Page is one driven browser page. All methods block until the browser
// acknowledges the operation.
type Page interface {
	Goto(url string) error
	Fill(selector, value string) error
	Click(selector string) error
	ClickWithOutcome(selector string, timeout time.Duration) (ClickOutcome, error)
	UploadFile(selector, path string) error
	WaitFor(selector string, timeout time.Duration) error
	Screenshot(path string) error
	// Evaluate runs a self-contained script expression and, when out is
	// non-nil, decodes the JSON-compatible result into it.
	Evaluate(script string, out interface{}) error
	URL() string
	GoBack() error
	Close() error
	LocateApplyTarget() (*ApplyTarget, error)
}

// Session owns the browser lifetime and creates pages.
type Session interface {
	NewPage() (Page, error)
	Close() error
}

// Options configure a live browser session.
type Options struct {
	Headless   bool
	SlowMo     time.Duration
	CookiePath string
}
