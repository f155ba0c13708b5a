package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "apply_42_step-1.png", SanitizeFilename("apply_42_step-1.png"))
	assert.Equal(t, "a-b-c", SanitizeFilename("a/b\\c"))
	assert.Equal(t, "one-two", SanitizeFilename("one   two"))
}

func TestScreenshotName(t *testing.T) {
	assert.Equal(t, "apply_42_before-fill.png", ScreenshotName("42", "before-fill"))
	assert.Equal(t, "apply_ab-cd_submitted.png", ScreenshotName("ab/cd", "submitted"))
}

func TestRetryStopsOnFirstSuccess(t *testing.T) {
	calls := 0
	err := Retry(3, 0, func() error {
		calls++
		if calls < 2 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRetryReturnsLastError(t *testing.T) {
	calls := 0
	err := Retry(3, 0, func() error {
		calls++
		return errors.New("always")
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}
