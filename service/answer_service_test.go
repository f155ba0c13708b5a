package service

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autoapply/config"
	"autoapply/model"
)

func TestGenerateAnswerDisabledReturnsEmpty(t *testing.T) {
	svc := NewAnswerService(config.LLMConfig{})
	answer, err := svc.GenerateAnswer("Why this company?", &model.CandidateProfile{})
	require.NoError(t, err)
	assert.Empty(t, answer)
}

func TestGenerateAnswerCallsChatCompletions(t *testing.T) {
	var gotPath, gotAuth string
	var gotReq chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(chatResponse{Choices: []struct {
			Message chatMessage `json:"message"`
		}{{Message: chatMessage{Role: "assistant", Content: "  I build data pipelines.  "}}}})
	}))
	defer server.Close()

	svc := NewAnswerService(config.LLMConfig{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Model:   "gpt-4o-mini",
	})
	profile := &model.CandidateProfile{FullName: "Jordan Smith", Skills: []string{"Go", "SQL"}}

	answer, err := svc.GenerateAnswer("Why do you want to work here?", profile)
	require.NoError(t, err)
	assert.Equal(t, "I build data pipelines.", answer)
	assert.Equal(t, "/v1/chat/completions", gotPath)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "gpt-4o-mini", gotReq.Model)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Contains(t, gotReq.Messages[1].Content, "Jordan Smith")
	assert.Contains(t, gotReq.Messages[1].Content, "Why do you want to work here?")
	assert.Contains(t, gotReq.Messages[1].Content, "Go, SQL")
}

func TestGenerateAnswerHonorsRequestBudget(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(chatResponse{Choices: []struct {
			Message chatMessage `json:"message"`
		}{{Message: chatMessage{Content: "ok"}}}})
	}))
	defer server.Close()

	svc := NewAnswerService(config.LLMConfig{
		BaseURL:     server.URL,
		APIKey:      "k",
		Model:       "m",
		MaxRequests: 1,
	})
	profile := &model.CandidateProfile{FullName: "Jordan Smith"}

	answer, err := svc.GenerateAnswer("q1", profile)
	require.NoError(t, err)
	assert.Equal(t, "ok", answer)

	answer, err = svc.GenerateAnswer("q2", profile)
	require.NoError(t, err)
	assert.Empty(t, answer)
	assert.Equal(t, 1, calls)
}

func TestGenerateAnswerSurfacesHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	svc := NewAnswerService(config.LLMConfig{BaseURL: server.URL, APIKey: "k", Model: "m"})
	_, err := svc.GenerateAnswer("q", &model.CandidateProfile{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestEndpointHandlesBaseURLVariants(t *testing.T) {
	cases := []struct {
		base string
		want string
	}{
		{"", "https://api.openai.com/v1/chat/completions"},
		{"https://api.openai.com/v1", "https://api.openai.com/v1/chat/completions"},
		{"https://api.openai.com/v1/", "https://api.openai.com/v1/chat/completions"},
		{"http://localhost:8080", "http://localhost:8080/v1/chat/completions"},
	}
	for _, tc := range cases {
		svc := NewAnswerService(config.LLMConfig{BaseURL: tc.base})
		assert.Equal(t, tc.want, svc.endpoint(), "base %q", tc.base)
	}
}
