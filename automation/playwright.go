package automation

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"

	"autoapply/locators"
)

// PlaywrightSession drives a Chromium instance through playwright.
type PlaywrightSession struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
}

// NewPlaywrightSession launches the browser and creates one context.
func NewPlaywrightSession(opts Options) (*PlaywrightSession, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		SlowMo:   playwright.Float(float64(opts.SlowMo.Milliseconds())),
		Args: []string{
			"--disable-crashpad",
			"--disable-crash-reporter",
		},
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	context, err := browser.NewContext()
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("create browser context: %w", err)
	}

	return &PlaywrightSession{pw: pw, browser: browser, context: context}, nil
}

func (s *PlaywrightSession) NewPage() (Page, error) {
	page, err := s.context.NewPage()
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	page.SetDefaultTimeout(30000)
	return &playwrightPage{page: page}, nil
}

func (s *PlaywrightSession) Close() error {
	if s.context != nil {
		s.context.Close()
	}
	if s.browser != nil {
		s.browser.Close()
	}
	if s.pw != nil {
		return s.pw.Stop()
	}
	return nil
}

type playwrightPage struct {
	page playwright.Page
}

func (p *playwrightPage) Goto(url string) error {
	if _, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return fmt.Errorf("goto %s: %w", url, err)
	}
	return nil
}

func (p *playwrightPage) Fill(selector, value string) error {
	if err := p.page.Fill(selector, value); err != nil {
		return fmt.Errorf("fill %s: %w", selector, err)
	}
	return nil
}

func (p *playwrightPage) Click(selector string) error {
	if err := p.page.Click(selector); err != nil {
		return fmt.Errorf("click %s: %w", selector, err)
	}
	return nil
}

// ClickWithOutcome clicks and classifies the result: a popup page handle,
// a same-page navigation, or no navigation at all.
func (p *playwrightPage) ClickWithOutcome(selector string, timeout time.Duration) (ClickOutcome, error) {
	popupCh := make(chan playwright.Page, 1)
	p.page.OnPopup(func(popup playwright.Page) {
		select {
		case popupCh <- popup:
		default:
		}
	})

	beforeURL := p.page.URL()
	if err := p.page.Click(selector); err != nil {
		return ClickOutcome{}, fmt.Errorf("click %s: %w", selector, err)
	}

	select {
	case popup := <-popupCh:
		popup.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
			State: playwright.LoadStateDomcontentloaded,
		})
		popup.BringToFront()
		return ClickOutcome{Page: &playwrightPage{page: popup}, Path: ClickNewTab}, nil
	case <-time.After(timeout):
	}

	if p.page.URL() != beforeURL {
		return ClickOutcome{Path: ClickSamePageNavigation}, nil
	}
	return ClickOutcome{Path: ClickSamePageNoNav}, nil
}

func (p *playwrightPage) UploadFile(selector, path string) error {
	if err := p.page.Locator(selector).SetInputFiles([]string{path}); err != nil {
		return fmt.Errorf("upload file to %s: %w", selector, err)
	}
	return nil
}

func (p *playwrightPage) WaitFor(selector string, timeout time.Duration) error {
	if _, err := p.page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	}); err != nil {
		return fmt.Errorf("wait for %s: %w", selector, err)
	}
	return nil
}

func (p *playwrightPage) Screenshot(path string) error {
	if _, err := p.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	}); err != nil {
		return fmt.Errorf("screenshot: %w", err)
	}
	return nil
}

func (p *playwrightPage) Evaluate(script string, out interface{}) error {
	result, err := p.page.Evaluate(script)
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}
	if out == nil || result == nil {
		return nil
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode evaluate result: %w", err)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode evaluate result: %w", err)
	}
	return nil
}

func (p *playwrightPage) URL() string {
	return p.page.URL()
}

func (p *playwrightPage) GoBack() error {
	if _, err := p.page.GoBack(playwright.PageGoBackOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return fmt.Errorf("go back: %w", err)
	}
	return nil
}

func (p *playwrightPage) Close() error {
	return p.page.Close()
}

func (p *playwrightPage) LocateApplyTarget() (*ApplyTarget, error) {
	var target *ApplyTarget
	script := locators.Inject(locators.FindApplyTargetScript, locators.ApplyPhrases)
	if err := p.Evaluate(script, &target); err != nil {
		return nil, err
	}
	return target, nil
}
