package model

// ApplyStatus is the terminal status of one apply attempt.
type ApplyStatus string

const (
	StatusSubmitted ApplyStatus = "submitted"
	StatusFailed    ApplyStatus = "failed"
	StatusSkipped   ApplyStatus = "skipped"
	StatusDryRun    ApplyStatus = "dry-run"
)

// Attempted reports whether the status counts as "handled, do not retry".
func (s ApplyStatus) Attempted() bool {
	return s == StatusSubmitted || s == StatusDryRun
}

// ApplyArtifacts points at evidence captured during the attempt.
type ApplyArtifacts struct {
	ScreenshotPath string `json:"screenshotPath,omitempty"`
	LogPath        string `json:"logPath,omitempty"`
}

// ApplyResult is the terminal record of one apply attempt.
type ApplyResult struct {
	ListingID string         `json:"listingId"`
	Status    ApplyStatus    `json:"status"`
	Message   string         `json:"message,omitempty"`
	Artifacts ApplyArtifacts `json:"artifacts,omitempty"`
}
