// Package repository persists the two application-state ledgers: discovered
// jobs and attempted listings. The attempted ledger is the idempotency
// barrier: once a listing is recorded with a terminal attempted status, every
// later run treats it as handled.
package repository

import (
	"sync"
	"time"

	"autoapply/model"
)

// JobRepository is the durable record of attempted listings.
type JobRepository interface {
	Upsert(listing model.JobListing) error
	// MarkApplied persists the listing only for terminal attempted outcomes
	// (submitted, dry-run); other statuses leave the ledger untouched.
	MarkApplied(listing model.JobListing, result model.ApplyResult) error
	HasApplied(url string) (bool, error)
}

// MemoryJobRepository keeps state for one process lifetime; used for
// ephemeral and test runs.
type MemoryJobRepository struct {
	mu      sync.RWMutex
	applied map[string]appliedRecord
	jobs    map[string]model.JobListing
}

type appliedRecord struct {
	ListingID string
	Status    model.ApplyStatus
	AppliedAt time.Time
}

func NewMemoryJobRepository() *MemoryJobRepository {
	return &MemoryJobRepository{
		applied: make(map[string]appliedRecord),
		jobs:    make(map[string]model.JobListing),
	}
}

func (r *MemoryJobRepository) Upsert(listing model.JobListing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[model.NormalizeURL(listing.URL)] = listing
	return nil
}

func (r *MemoryJobRepository) MarkApplied(listing model.JobListing, result model.ApplyResult) error {
	if !result.Status.Attempted() {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applied[model.NormalizeURL(listing.URL)] = appliedRecord{
		ListingID: listing.ID,
		Status:    result.Status,
		AppliedAt: time.Now(),
	}
	return nil
}

func (r *MemoryJobRepository) HasApplied(url string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.applied[model.NormalizeURL(url)]
	return ok, nil
}
