package runlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Manifest describes one run's parameters; written once at run start.
type Manifest struct {
	RunID           string    `json:"runId"`
	StartedAt       time.Time `json:"startedAt"`
	Board           string    `json:"board"`
	DryRun          bool      `json:"dryRun"`
	MaxApplications int       `json:"maxApplications"`
}

// WriteManifest persists the manifest into the run's artifact directory.
func WriteManifest(dir string, manifest Manifest) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create run dir: %w", err)
	}
	payload, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	path := filepath.Join(dir, "manifest.json")
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
