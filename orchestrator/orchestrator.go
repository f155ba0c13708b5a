// Package orchestrator runs the apply pipeline across a listing set under a
// per-run application cap with pause/resume/stop control.
package orchestrator

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"autoapply/boards"
	"autoapply/model"
)

// State of a run. Pausing holds the loop between listings; stopping ends it.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StatePaused  State = "paused"
	StateStopped State = "stopped"
)

// Status is a point-in-time snapshot of the run.
type Status struct {
	State        State
	AppliedCount int
	LastMessage  string
}

// Options bound one run.
type Options struct {
	Board           string
	DryRun          bool
	MaxApplications int
}

// Orchestrator drives connectors over discovered listings. One orchestrator
// serves one run at a time; control methods are safe from other goroutines.
type Orchestrator struct {
	connectors map[string]boards.Connector
	actx       *boards.ApplyContext

	mu     sync.RWMutex
	status Status
}

func New(connectors []boards.Connector, actx *boards.ApplyContext) *Orchestrator {
	byName := make(map[string]boards.Connector, len(connectors))
	for _, connector := range connectors {
		byName[connector.Name()] = connector
	}
	return &Orchestrator{
		connectors: byName,
		actx:       actx,
		status:     Status{State: StateIdle},
	}
}

// Run searches the selected board and applies to each listing until the set
// is exhausted, the cap is reached, or the run is stopped. Skipped listings
// never count toward the cap.
func (o *Orchestrator) Run(ctx context.Context, options Options) error {
	connector, ok := o.connectors[options.Board]
	if !ok {
		o.setStatus(Status{State: StateStopped, LastMessage: "Unknown board"})
		return nil
	}

	o.setStatus(Status{State: StateRunning})

	listings, err := connector.Search(ctx, o.actx.Criteria)
	if err != nil {
		o.setStatus(Status{State: StateStopped, LastMessage: err.Error()})
		return err
	}
	log.Infof("Search returned %d listings", len(listings))

	actx := *o.actx
	actx.DryRun = options.DryRun

	for _, listing := range listings {
		if !o.waitWhilePaused(ctx) {
			break
		}

		status := o.Status()
		if status.AppliedCount >= options.MaxApplications {
			o.updateStatus(func(s *Status) { s.LastMessage = "Reached max applications" })
			break
		}

		if actx.Repo != nil {
			applied, err := actx.Repo.HasApplied(listing.URL)
			if err != nil {
				log.Warnf("Applied lookup failed for %s: %v", listing.URL, err)
			}
			if applied {
				continue
			}
			if err := actx.Repo.Upsert(listing); err != nil {
				log.Warnf("Upsert failed for %s: %v", listing.URL, err)
			}
		}

		result := connector.Apply(&actx, listing)
		o.updateStatus(func(s *Status) {
			if result.Status != model.StatusSkipped {
				s.AppliedCount++
			}
			s.LastMessage = result.Message
		})
		log.Infof("Listing %s: %s (%s)", listing.ID, result.Status, result.Message)
	}

	o.updateStatus(func(s *Status) {
		if s.State == StateRunning {
			s.State = StateStopped
		}
	})
	return nil
}

// waitWhilePaused blocks while the run is paused. Returns false once the run
// should end.
func (o *Orchestrator) waitWhilePaused(ctx context.Context) bool {
	for {
		switch o.Status().State {
		case StateRunning:
			return true
		case StatePaused:
			select {
			case <-ctx.Done():
				o.Stop()
				return false
			case <-time.After(200 * time.Millisecond):
			}
		default:
			return false
		}
		if ctx.Err() != nil {
			o.Stop()
			return false
		}
	}
}

// Pause holds the run before the next listing. The in-flight attempt always
// finishes.
func (o *Orchestrator) Pause() {
	o.updateStatus(func(s *Status) {
		if s.State == StateRunning {
			s.State = StatePaused
		}
	})
}

func (o *Orchestrator) Resume() {
	o.updateStatus(func(s *Status) {
		if s.State == StatePaused {
			s.State = StateRunning
		}
	})
}

func (o *Orchestrator) Stop() {
	o.updateStatus(func(s *Status) { s.State = StateStopped })
}

func (o *Orchestrator) Status() Status {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.status
}

func (o *Orchestrator) setStatus(status Status) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.status = status
}

func (o *Orchestrator) updateStatus(mutate func(*Status)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	mutate(&o.status)
}
