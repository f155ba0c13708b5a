package automation

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	log "github.com/sirupsen/logrus"

	"autoapply/locators"
)

// ChromedpSession drives Chrome over the DevTools protocol. It is the
// fallback backend for environments without playwright drivers installed.
type ChromedpSession struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	browserCtx  context.Context
	browserStop context.CancelFunc
	cookiePath  string
}

// NewChromedpSession launches Chrome and restores cookies when a cookie
// file is configured.
func NewChromedpSession(opts Options) (*ChromedpSession, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(),
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", opts.Headless),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
		)...)

	browserCtx, browserStop := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserStop()
		allocCancel()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	s := &ChromedpSession{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		browserCtx:  browserCtx,
		browserStop: browserStop,
		cookiePath:  opts.CookiePath,
	}
	if s.cookiePath != "" {
		if err := s.loadCookies(); err != nil {
			log.Warnf("load cookies failed: %v", err)
		}
	}
	return s, nil
}

func (s *ChromedpSession) NewPage() (Page, error) {
	ctx, cancel := chromedp.NewContext(s.browserCtx)
	return &chromedpPage{ctx: ctx, cancel: cancel}, nil
}

func (s *ChromedpSession) Close() error {
	if s.cookiePath != "" {
		if err := s.saveCookies(); err != nil {
			log.Warnf("save cookies failed: %v", err)
		}
	}
	s.browserStop()
	s.allocCancel()
	return nil
}

func (s *ChromedpSession) loadCookies() error {
	data, err := os.ReadFile(s.cookiePath)
	if err != nil {
		return err
	}
	var cookies []*network.Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return fmt.Errorf("parse cookie file: %w", err)
	}
	params := make([]*network.CookieParam, len(cookies))
	for i, cookie := range cookies {
		params[i] = &network.CookieParam{
			Name:     cookie.Name,
			Value:    cookie.Value,
			Domain:   cookie.Domain,
			Path:     cookie.Path,
			Secure:   cookie.Secure,
			HTTPOnly: cookie.HTTPOnly,
		}
	}
	return chromedp.Run(s.browserCtx, network.SetCookies(params))
}

func (s *ChromedpSession) saveCookies() error {
	var cookies []*network.Cookie
	if err := chromedp.Run(s.browserCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		cookies, err = network.GetCookies().Do(ctx)
		return err
	})); err != nil {
		return fmt.Errorf("get cookies: %w", err)
	}
	data, err := json.Marshal(cookies)
	if err != nil {
		return fmt.Errorf("marshal cookies: %w", err)
	}
	return os.WriteFile(s.cookiePath, data, 0o644)
}

type chromedpPage struct {
	ctx    context.Context
	cancel context.CancelFunc
}

func (p *chromedpPage) Goto(url string) error {
	if err := chromedp.Run(p.ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("goto %s: %w", url, err)
	}
	return nil
}

func (p *chromedpPage) Fill(selector, value string) error {
	var ok bool
	script := locators.Inject(locators.SetValueScript, selector, value)
	if err := chromedp.Run(p.ctx, chromedp.Evaluate(script, &ok)); err != nil {
		return fmt.Errorf("fill %s: %w", selector, err)
	}
	if !ok {
		return fmt.Errorf("fill %s: element not found", selector)
	}
	return nil
}

func (p *chromedpPage) Click(selector string) error {
	if err := chromedp.Run(p.ctx, chromedp.Click(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("click %s: %w", selector, err)
	}
	return nil
}

func (p *chromedpPage) ClickWithOutcome(selector string, timeout time.Duration) (ClickOutcome, error) {
	newTargets := chromedp.WaitNewTarget(p.ctx, func(info *target.Info) bool {
		return info.Type == "page" && info.OpenerID != ""
	})

	beforeURL := p.URL()
	if err := p.Click(selector); err != nil {
		return ClickOutcome{}, err
	}

	select {
	case id := <-newTargets:
		ctx, cancel := chromedp.NewContext(p.ctx, chromedp.WithTargetID(id))
		popup := &chromedpPage{ctx: ctx, cancel: cancel}
		// give the popup a moment to settle before the caller inspects it
		chromedp.Run(ctx, chromedp.WaitReady("body", chromedp.ByQuery))
		return ClickOutcome{Page: popup, Path: ClickNewTab}, nil
	case <-time.After(timeout):
	}

	if p.URL() != beforeURL {
		return ClickOutcome{Path: ClickSamePageNavigation}, nil
	}
	return ClickOutcome{Path: ClickSamePageNoNav}, nil
}

func (p *chromedpPage) UploadFile(selector, path string) error {
	if err := chromedp.Run(p.ctx, chromedp.SetUploadFiles(selector, []string{path}, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("upload file to %s: %w", selector, err)
	}
	return nil
}

func (p *chromedpPage) WaitFor(selector string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(p.ctx, timeout)
	defer cancel()
	if err := chromedp.Run(ctx, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("wait for %s: %w", selector, err)
	}
	return nil
}

func (p *chromedpPage) Screenshot(path string) error {
	var buf []byte
	if err := chromedp.Run(p.ctx, chromedp.FullScreenshot(&buf, 90)); err != nil {
		return fmt.Errorf("screenshot: %w", err)
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("write screenshot: %w", err)
	}
	return nil
}

func (p *chromedpPage) Evaluate(script string, out interface{}) error {
	if err := chromedp.Run(p.ctx, chromedp.Evaluate(script, out)); err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}
	return nil
}

func (p *chromedpPage) URL() string {
	var url string
	if err := chromedp.Run(p.ctx, chromedp.Evaluate(locators.CurrentURLScript, &url)); err != nil {
		return ""
	}
	return url
}

func (p *chromedpPage) GoBack() error {
	if err := chromedp.Run(p.ctx, chromedp.NavigateBack()); err != nil {
		return fmt.Errorf("go back: %w", err)
	}
	return nil
}

func (p *chromedpPage) Close() error {
	p.cancel()
	return nil
}

func (p *chromedpPage) LocateApplyTarget() (*ApplyTarget, error) {
	var found *ApplyTarget
	script := locators.Inject(locators.FindApplyTargetScript, locators.ApplyPhrases)
	if err := p.Evaluate(script, &found); err != nil {
		return nil, err
	}
	return found, nil
}
