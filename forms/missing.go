package forms

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// MissingField is one control the mapper could not fill from the profile.
type MissingField struct {
	Field  string `json:"field"`
	Reason string `json:"reason,omitempty"`
	Hint   string `json:"hint,omitempty"`
}

type missingRecord struct {
	RunID     string         `json:"runId"`
	ListingID string         `json:"listingId"`
	ApplyType string         `json:"applyType"`
	Timestamp string         `json:"timestamp"`
	Missing   []MissingField `json:"missing"`
}

// Skip reasons that mean data is genuinely absent rather than the control
// being unmappable.
var missingReasons = map[string]bool{
	"no data":        true,
	"missing-answer": true,
	"low confidence": true,
	"not-supported":  true,
	"needs-answer":   true,
}

// IsMissingReason reports whether a skip reason counts toward the
// missing-fields ledger.
func IsMissingReason(reason string) bool {
	return missingReasons[reason]
}

// RecordMissingFields appends one attempt's unfillable controls to
// missing_fields.json so missing profile data surfaces across runs.
func RecordMissingFields(dataDir, runID, listingID, applyType string, missing []MissingField) error {
	if dataDir == "" || len(missing) == 0 {
		return nil
	}
	path := filepath.Join(dataDir, "missing_fields.json")

	var records []missingRecord
	if raw, err := os.ReadFile(path); err == nil {
		// A corrupt ledger is replaced rather than blocking the attempt.
		_ = json.Unmarshal(raw, &records)
	}
	records = append(records, missingRecord{
		RunID:     runID,
		ListingID: listingID,
		ApplyType: applyType,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Missing:   missing,
	})

	payload, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal missing fields: %w", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("write missing fields: %w", err)
	}
	return nil
}
