package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"autoapply/model"
)

type appliedEntry struct {
	URL       string            `json:"url"`
	ListingID string            `json:"listingId"`
	Board     string            `json:"board,omitempty"`
	Status    model.ApplyStatus `json:"status"`
	AppliedAt string            `json:"appliedAt"`
}

// FileJobRepository persists the applied-jobs ledger as a JSON collection.
// It survives process restarts and is the default backend.
type FileJobRepository struct {
	mu      sync.Mutex
	path    string
	applied map[string]appliedEntry
	jobs    *FileJobStore
}

// NewFileJobRepository loads (or starts) the applied-jobs ledger in dataDir.
func NewFileJobRepository(dataDir string) (*FileJobRepository, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	r := &FileJobRepository{
		path:    filepath.Join(dataDir, "applied_jobs.json"),
		applied: make(map[string]appliedEntry),
		jobs:    NewFileJobStore(dataDir, "jobs.json"),
	}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *FileJobRepository) load() error {
	raw, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read applied ledger: %w", err)
	}
	var entries []appliedEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return fmt.Errorf("parse applied ledger: %w", err)
	}
	for _, entry := range entries {
		if entry.URL == "" || entry.Status == "" {
			continue
		}
		r.applied[model.NormalizeURL(entry.URL)] = entry
	}
	return nil
}

func (r *FileJobRepository) persist() error {
	entries := make([]appliedEntry, 0, len(r.applied))
	for _, entry := range r.applied {
		entries = append(entries, entry)
	}
	payload, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal applied ledger: %w", err)
	}
	if err := os.WriteFile(r.path, payload, 0o644); err != nil {
		return fmt.Errorf("write applied ledger: %w", err)
	}
	return nil
}

func (r *FileJobRepository) Upsert(listing model.JobListing) error {
	return r.jobs.UpsertMany([]model.JobListing{listing})
}

func (r *FileJobRepository) MarkApplied(listing model.JobListing, result model.ApplyResult) error {
	if !result.Status.Attempted() {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applied[model.NormalizeURL(listing.URL)] = appliedEntry{
		URL:       listing.URL,
		ListingID: listing.ID,
		Board:     listing.Board,
		Status:    result.Status,
		AppliedAt: time.Now().UTC().Format(time.RFC3339),
	}
	return r.persist()
}

func (r *FileJobRepository) HasApplied(url string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.applied[model.NormalizeURL(url)]
	return ok, nil
}
