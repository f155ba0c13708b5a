// Package boards defines the board connector contract and the shared
// per-attempt context handed to each connector.
package boards

import (
	"context"

	"autoapply/automation"
	"autoapply/forms"
	"autoapply/model"
	"autoapply/repository"
	"autoapply/runlog"
)

// Connector is one supported job board.
type Connector interface {
	Name() string
	// Search returns filtered listings open for application.
	Search(ctx context.Context, criteria model.SearchCriteria) ([]model.JobListing, error)
	// Apply attempts one listing end to end and always returns a terminal
	// result; connector-internal failures surface as a failed result, not
	// an error.
	Apply(actx *ApplyContext, listing model.JobListing) model.ApplyResult
}

// ApplyContext carries everything one apply attempt needs. A single context
// serves a whole run; per-listing state lives inside the connector.
type ApplyContext struct {
	RunID               string
	LogDir              string
	DataDir             string
	DryRun              bool
	KeepOpen            bool
	PauseOnVerification bool

	Profile  *model.CandidateProfile
	Resume   *model.ResumeAsset
	Criteria model.SearchCriteria

	Session automation.Session
	Engine  *forms.Engine
	RunLog  runlog.Logger
	Repo    repository.JobRepository

	// Generate and PersistAnswer are forwarded into the form engine meta.
	Generate      func(question string, profile *model.CandidateProfile) (string, error)
	PersistAnswer func(key, answer string) error
	WaitForHuman  func()
}
