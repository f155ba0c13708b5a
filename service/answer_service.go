// Package service holds the answer generator and profile persistence used by
// the form engine's long-form sub-step.
package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"autoapply/config"
	"autoapply/model"
)

const answerSystemPrompt = "You are drafting concise, professional job application responses. " +
	"Use the candidate profile only. Keep responses under 1200 characters unless asked."

// AnswerService generates long-form answers through an OpenAI-compatible
// chat-completions endpoint. Requests per run are budget-limited.
type AnswerService struct {
	cfg        config.LLMConfig
	httpClient *http.Client

	mu       sync.Mutex
	requests int
}

func NewAnswerService(cfg config.LLMConfig) *AnswerService {
	return &AnswerService{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// GenerateAnswer drafts an answer for one screening question. Returns an
// empty string without error when generation is disabled or the per-run
// budget is spent.
func (s *AnswerService) GenerateAnswer(question string, profile *model.CandidateProfile) (string, error) {
	if !s.cfg.Enabled() {
		return "", nil
	}

	s.mu.Lock()
	if s.cfg.MaxRequests > 0 && s.requests >= s.cfg.MaxRequests {
		s.mu.Unlock()
		log.Warn("Answer generation budget exhausted for this run.")
		return "", nil
	}
	s.requests++
	s.mu.Unlock()

	payload := chatRequest{
		Model: s.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: answerSystemPrompt},
			{Role: "user", Content: buildUserPrompt(profile, question)},
		},
		MaxTokens:   600,
		Temperature: 0.4,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal answer request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.endpoint(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create answer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("answer request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read answer response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("answer request failed: status %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("parse answer response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

func (s *AnswerService) endpoint() string {
	base := strings.TrimRight(s.cfg.BaseURL, "/")
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	if strings.Contains(base, "/v1") {
		return base + "/chat/completions"
	}
	return base + "/v1/chat/completions"
}

func buildUserPrompt(profile *model.CandidateProfile, question string) string {
	lines := []string{
		"Candidate Profile:",
		"Name: " + profile.FullName,
		"Location: " + profile.Location,
	}
	if profile.Summary != "" {
		lines = append(lines, "Summary: "+profile.Summary)
	}
	if len(profile.Skills) > 0 {
		lines = append(lines, "Skills: "+strings.Join(profile.Skills, ", "))
	}
	if profile.LinkedIn != "" {
		lines = append(lines, "LinkedIn: "+profile.LinkedIn)
	}
	if profile.GitHub != "" {
		lines = append(lines, "GitHub: "+profile.GitHub)
	}
	lines = append(lines, "", "Question:", question, "", "Answer:")
	return strings.Join(lines, "\n")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
