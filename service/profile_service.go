package service

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"autoapply/model"
)

// ProfileService loads the candidate profile and writes generated answers
// back so the next run reuses them instead of regenerating.
type ProfileService struct {
	mu      sync.Mutex
	path    string
	profile *model.CandidateProfile
}

func NewProfileService(path string) *ProfileService {
	return &ProfileService{path: path}
}

// Load reads and caches the profile document.
func (s *ProfileService) Load() (*model.CandidateProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile != nil {
		return s.profile, nil
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	var profile model.CandidateProfile
	if err := yaml.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	if profile.FullName == "" || profile.Email == "" {
		return nil, fmt.Errorf("invalid profile: fullName and email are required")
	}
	s.profile = &profile
	return s.profile, nil
}

// PersistAnswer stores a generated long-form answer under the given key and
// rewrites the profile document.
func (s *ProfileService) PersistAnswer(key, answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return fmt.Errorf("profile not loaded")
	}
	s.profile.SetAnswer(key, answer)

	payload, err := yaml.Marshal(s.profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	if err := os.WriteFile(s.path, payload, 0o600); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	return nil
}
