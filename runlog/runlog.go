package runlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Event is one append-only audit record. Every pipeline state transition
// emits exactly one event before the pipeline proceeds.
type Event struct {
	RunID              string `json:"runId"`
	ListingID          string `json:"listingId"`
	ApplyType          string `json:"applyType"`
	Step               string `json:"step"`
	Status             string `json:"status,omitempty"`
	Title              string `json:"title,omitempty"`
	Company            string `json:"company,omitempty"`
	SubmitPolicy       string `json:"submitPolicy,omitempty"`
	SubmitPolicyReason string `json:"submitPolicyReason,omitempty"`
	Field              string `json:"field,omitempty"`
	Hint               string `json:"hint,omitempty"`
	Reason             string `json:"reason,omitempty"`
	ExternalURL        string `json:"externalUrl,omitempty"`
	ExternalATS        string `json:"externalAts,omitempty"`
	Timestamp          string `json:"timestamp"`
	ScreenshotPath     string `json:"screenshotPath,omitempty"`
}

// Logger is the append-only audit stream for one run.
type Logger interface {
	LogEvent(event Event)
	Path() string
	Close() error
}

type fileLogger struct {
	mu   sync.Mutex
	file *os.File
	path string
}

// New opens (or creates) the JSON-lines audit log for runID under logDir.
func New(logDir, runID string) (Logger, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	path := filepath.Join(logDir, fmt.Sprintf("run-%s.jsonl", runID))
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open run log: %w", err)
	}
	return &fileLogger{file: file, path: path}, nil
}

// LogEvent appends one line. Lines are never rewritten. A write failure is
// reported but never fails the pipeline step that emitted the event.
func (l *fileLogger) LogEvent(event Event) {
	if event.Timestamp == "" {
		event.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	line, err := json.Marshal(event)
	if err != nil {
		log.Warnf("marshal run event failed: %v", err)
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.file.Write(append(line, '\n')); err != nil {
		log.Warnf("append run event failed: %v", err)
	}
}

func (l *fileLogger) Path() string {
	return l.path
}

// Close releases the log file descriptor. The logger must not be used after.
func (l *fileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

// ReadEvents replays a run log in write order.
func ReadEvents(path string) ([]Event, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open run log: %w", err)
	}
	defer file.Close()

	var events []Event
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var event Event
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			return nil, fmt.Errorf("parse run event: %w", err)
		}
		events = append(events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan run log: %w", err)
	}
	return events, nil
}

// GroupByListing reduces a replayed event stream into per-listing histories,
// preserving write order within each listing.
func GroupByListing(events []Event) map[string][]Event {
	grouped := make(map[string][]Event)
	for _, event := range events {
		grouped[event.ListingID] = append(grouped[event.ListingID], event)
	}
	return grouped
}
