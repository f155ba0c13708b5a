package utils

import (
	"fmt"
	"os"
	"regexp"
	"time"
)

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9_.-]+`)

// SanitizeFilename collapses anything outside the safe filename alphabet
// into a single dash.
func SanitizeFilename(name string) string {
	return unsafeFilenameChars.ReplaceAllString(name, "-")
}

// ScreenshotName builds the canonical artifact filename for one apply step.
func ScreenshotName(listingID, step string) string {
	return SanitizeFilename(fmt.Sprintf("apply_%s_%s.png", listingID, step))
}

// EnsureDir creates dir and parents if missing.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

// FileExists reports whether path exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// Retry runs fn up to attempts times, sleeping delay between tries. It
// returns the last error when every attempt fails.
func Retry(attempts int, delay time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i < attempts-1 {
			time.Sleep(delay)
		}
	}
	return err
}
