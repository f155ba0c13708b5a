// Package discovery polls company job boards over HTTP and filters the
// listings against the configured search criteria.
package discovery

import (
	"context"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"autoapply/config"
	"autoapply/model"
)

// Fetch failures are isolated per company: one dead board never fails the
// whole sweep.
type Failure struct {
	Board   string
	Company string
	Err     error
}

// Result is one discovery sweep across every configured board.
type Result struct {
	Jobs            []model.JobListing
	CountsByBoard   map[string]int
	CountsByCompany map[string]int
	Failures        []Failure
}

// Discoverer fetches listings from all configured company slugs, rate
// limited across boards.
type Discoverer struct {
	cfg     config.DiscoveryConfig
	client  *http.Client
	limiter *rate.Limiter
}

func NewDiscoverer(cfg config.DiscoveryConfig) *Discoverer {
	perSecond := cfg.RatePerSecond
	if perSecond <= 0 {
		perSecond = 1
	}
	return &Discoverer{
		cfg:     cfg,
		client:  &http.Client{Timeout: 20 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
	}
}

// Discover sweeps every configured board.
func (d *Discoverer) Discover(ctx context.Context) (*Result, error) {
	result := &Result{
		CountsByBoard:   make(map[string]int),
		CountsByCompany: make(map[string]int),
	}

	type source struct {
		board string
		fetch func(ctx context.Context, slug string) ([]model.JobListing, error)
		slugs []string
	}
	sources := []source{
		{"greenhouse", d.fetchGreenhouse, d.cfg.Greenhouse},
		{"lever", d.fetchLever, d.cfg.Lever},
		{"ashby", d.fetchAshby, d.cfg.Ashby},
	}

	for _, src := range sources {
		for _, slug := range src.slugs {
			if err := d.limiter.Wait(ctx); err != nil {
				return result, err
			}
			jobs, err := src.fetch(ctx, slug)
			if err != nil {
				log.Warnf("Discovery failed for %s/%s: %v", src.board, slug, err)
				result.Failures = append(result.Failures, Failure{Board: src.board, Company: slug, Err: err})
				result.CountsByCompany[slug] = 0
				continue
			}
			result.Jobs = append(result.Jobs, jobs...)
			result.CountsByBoard[src.board] += len(jobs)
			result.CountsByCompany[slug] = len(jobs)
		}
	}
	return result, nil
}

func (d *Discoverer) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "autoapply")
	return d.client.Do(req)
}
