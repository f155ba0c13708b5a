package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"autoapply/model"
)

// FileJobStore holds the discovered-jobs ledger, keyed by listing identity.
type FileJobStore struct {
	mu   sync.Mutex
	path string
}

func NewFileJobStore(dataDir, filename string) *FileJobStore {
	return &FileJobStore{path: filepath.Join(dataDir, filename)}
}

func (s *FileJobStore) LoadAll() ([]model.JobListing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *FileJobStore) loadLocked() ([]model.JobListing, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read jobs ledger: %w", err)
	}
	var jobs []model.JobListing
	if err := json.Unmarshal(raw, &jobs); err != nil {
		return nil, fmt.Errorf("parse jobs ledger: %w", err)
	}
	return jobs, nil
}

// UpsertMany merges listings into the ledger by identity.
func (s *FileJobStore) UpsertMany(jobs []model.JobListing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.loadLocked()
	if err != nil {
		return err
	}
	merged := make(map[string]model.JobListing, len(existing)+len(jobs))
	order := make([]string, 0, len(existing)+len(jobs))
	for _, job := range existing {
		key := job.Identity()
		if _, ok := merged[key]; !ok {
			order = append(order, key)
		}
		merged[key] = job
	}
	for _, job := range jobs {
		key := job.Identity()
		if _, ok := merged[key]; !ok {
			order = append(order, key)
		}
		merged[key] = job
	}

	out := make([]model.JobListing, 0, len(order))
	for _, key := range order {
		out = append(out, merged[key])
	}
	return s.writeLocked(out)
}

// WriteAll replaces the ledger contents.
func (s *FileJobStore) WriteAll(jobs []model.JobListing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(jobs)
}

func (s *FileJobStore) writeLocked(jobs []model.JobListing) error {
	if jobs == nil {
		jobs = []model.JobListing{}
	}
	payload, err := json.MarshalIndent(jobs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal jobs ledger: %w", err)
	}
	if err := os.WriteFile(s.path, payload, 0o644); err != nil {
		return fmt.Errorf("write jobs ledger: %w", err)
	}
	return nil
}
