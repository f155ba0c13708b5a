package forms

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMissingReason(t *testing.T) {
	for _, reason := range []string{"no data", "missing-answer", "low confidence", "not-supported", "needs-answer"} {
		assert.True(t, IsMissingReason(reason), reason)
	}
	for _, reason := range []string{"already filled", "no hint", "submit-control", "captcha", ""} {
		assert.False(t, IsMissingReason(reason), reason)
	}
}

func TestRecordMissingFieldsAppendsAcrossAttempts(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, RecordMissingFields(dir, "run-1", "42", "greenhouse", []MissingField{
		{Field: "linkedin", Reason: "no data", Hint: "linkedin profile"},
	}))
	require.NoError(t, RecordMissingFields(dir, "run-1", "43", "greenhouse", []MissingField{
		{Field: "coverLetter", Reason: "missing-answer"},
	}))

	raw, err := os.ReadFile(filepath.Join(dir, "missing_fields.json"))
	require.NoError(t, err)
	var records []missingRecord
	require.NoError(t, json.Unmarshal(raw, &records))
	require.Len(t, records, 2)
	assert.Equal(t, "42", records[0].ListingID)
	assert.Equal(t, "linkedin", records[0].Missing[0].Field)
	assert.Equal(t, "43", records[1].ListingID)
	assert.NotEmpty(t, records[0].Timestamp)
}

func TestRecordMissingFieldsReplacesCorruptLedger(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "missing_fields.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	require.NoError(t, RecordMissingFields(dir, "run-1", "42", "greenhouse", []MissingField{
		{Field: "phone", Reason: "no data"},
	}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var records []missingRecord
	require.NoError(t, json.Unmarshal(raw, &records))
	require.Len(t, records, 1)
}

func TestRecordMissingFieldsNoopWithoutData(t *testing.T) {
	assert.NoError(t, RecordMissingFields("", "run-1", "42", "greenhouse", []MissingField{{Field: "x"}}))
	dir := t.TempDir()
	assert.NoError(t, RecordMissingFields(dir, "run-1", "42", "greenhouse", nil))
	_, err := os.Stat(filepath.Join(dir, "missing_fields.json"))
	assert.True(t, os.IsNotExist(err))
}
