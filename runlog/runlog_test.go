package runlog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogEventAppendsAndReplaysInOrder(t *testing.T) {
	dir := t.TempDir()
	logger, err := New(dir, "run-1")
	require.NoError(t, err)

	logger.LogEvent(Event{RunID: "run-1", ListingID: "42", Step: "attempt"})
	logger.LogEvent(Event{RunID: "run-1", ListingID: "42", Step: "field-filled", Field: "email"})
	logger.LogEvent(Event{RunID: "run-1", ListingID: "42", Step: "result", Status: "dry-run"})

	events, err := ReadEvents(logger.Path())
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "attempt", events[0].Step)
	assert.Equal(t, "field-filled", events[1].Step)
	assert.Equal(t, "email", events[1].Field)
	assert.Equal(t, "result", events[2].Step)
	assert.Equal(t, "dry-run", events[2].Status)
}

func TestLogEventStampsMissingTimestamps(t *testing.T) {
	logger, err := New(t.TempDir(), "run-2")
	require.NoError(t, err)

	logger.LogEvent(Event{ListingID: "1", Step: "attempt"})
	logger.LogEvent(Event{ListingID: "1", Step: "result", Timestamp: "2026-01-02T03:04:05Z"})

	events, err := ReadEvents(logger.Path())
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.NotEmpty(t, events[0].Timestamp)
	assert.Equal(t, "2026-01-02T03:04:05Z", events[1].Timestamp)
}

func TestNewReopensExistingLogForAppend(t *testing.T) {
	dir := t.TempDir()

	first, err := New(dir, "run-3")
	require.NoError(t, err)
	first.LogEvent(Event{ListingID: "1", Step: "attempt"})

	second, err := New(dir, "run-3")
	require.NoError(t, err)
	second.LogEvent(Event{ListingID: "1", Step: "result"})

	events, err := ReadEvents(second.Path())
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "attempt", events[0].Step)
	assert.Equal(t, "result", events[1].Step)
}

func TestCloseReleasesLogFile(t *testing.T) {
	logger, err := New(t.TempDir(), "run-5")
	require.NoError(t, err)
	logger.LogEvent(Event{ListingID: "1", Step: "attempt"})

	require.NoError(t, logger.Close())

	events, err := ReadEvents(logger.Path())
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestGroupByListingPreservesPerListingOrder(t *testing.T) {
	events := []Event{
		{ListingID: "a", Step: "attempt"},
		{ListingID: "b", Step: "attempt"},
		{ListingID: "a", Step: "result"},
		{ListingID: "b", Step: "skip"},
	}

	grouped := GroupByListing(events)
	require.Len(t, grouped, 2)
	require.Len(t, grouped["a"], 2)
	assert.Equal(t, "attempt", grouped["a"][0].Step)
	assert.Equal(t, "result", grouped["a"][1].Step)
	assert.Equal(t, "skip", grouped["b"][1].Step)
}

func TestWriteManifest(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteManifest(dir, Manifest{
		RunID:           "run-4",
		Board:           "greenhouse",
		DryRun:          true,
		MaxApplications: 5,
	}))

	raw, err := os.ReadFile(filepath.Join(dir, "manifest.json"))
	require.NoError(t, err)

	var manifest Manifest
	require.NoError(t, json.Unmarshal(raw, &manifest))
	assert.Equal(t, "run-4", manifest.RunID)
	assert.Equal(t, "greenhouse", manifest.Board)
	assert.True(t, manifest.DryRun)
	assert.Equal(t, 5, manifest.MaxApplications)
}
