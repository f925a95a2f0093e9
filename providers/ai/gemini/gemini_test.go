package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"promptrelay/providers/ai"
)

func TestNew(t *testing.T) {
	provider := New()
	if provider == nil {
		t.Fatal("New() returned nil")
	}
	if provider.baseURL != defaultBaseURL {
		t.Errorf("expected baseURL %q, got %q", defaultBaseURL, provider.baseURL)
	}
}

func TestWithAPIKey(t *testing.T) {
	provider := New().WithAPIKey("test-key").(*GeminiProvider)
	if provider.apiKey != "test-key" {
		t.Errorf("expected apiKey %q, got %q", "test-key", provider.apiKey)
	}
}

func TestWithBaseURL(t *testing.T) {
	provider := New().WithBaseURL("https://custom.api.com").(*GeminiProvider)
	if provider.baseURL != "https://custom.api.com" {
		t.Errorf("expected baseURL %q, got %q", "https://custom.api.com", provider.baseURL)
	}
}

func TestSendMessage_Basic(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Verify method and path
		if r.Method != "POST" {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if !strings.Contains(r.URL.Path, "gemini-2.0-flash:generateContent") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		// Verify Gemini auth header
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("missing or incorrect x-goog-api-key header: %s", r.Header.Get("x-goog-api-key"))
		}

		// Verify no Bearer auth
		if r.Header.Get("Authorization") != "" {
			t.Errorf("unexpected Authorization header: %s", r.Header.Get("Authorization"))
		}

		// Parse request
		var req generateContentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}

		if len(req.Contents) == 0 {
			t.Error("expected contents in request")
		}
		if req.SystemInstruction == nil || len(req.SystemInstruction.Parts) == 0 {
			t.Error("expected system instruction in request")
		}

		resp := generateContentResponse{
			Candidates: []candidate{{
				Content: &content{
					Role:  "model",
					Parts: []part{{Text: "Recursion is a function calling itself."}},
				},
				FinishReason: "STOP",
			}},
			UsageMetadata: &usageMetadata{
				PromptTokenCount:     10,
				CandidatesTokenCount: 8,
				TotalTokenCount:      18,
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider := New().
		WithAPIKey("test-key").
		WithBaseURL(server.URL).(*GeminiProvider)

	response, err := provider.SendMessage(context.Background(), ai.ChatRequest{
		Model:        "gemini-2.0-flash",
		SystemPrompt: "You are a helpful assistant.",
		Messages:     []ai.Message{{Role: ai.RoleUser, Content: "Explain recursion"}},
	})

	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	if response.Content != "Recursion is a function calling itself." {
		t.Errorf("unexpected content: %s", response.Content)
	}

	if response.FinishReason != "stop" {
		t.Errorf("expected finish_reason 'stop', got %q", response.FinishReason)
	}

	if response.Usage == nil {
		t.Fatal("expected usage in response")
	}

	if response.Usage.TotalTokens != 18 {
		t.Errorf("expected 18 total tokens, got %d", response.Usage.TotalTokens)
	}
}

func TestSendMessage_DefaultModel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, defaultModel+":generateContent") {
			t.Errorf("expected default model in path, got: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(generateContentResponse{
			Candidates: []candidate{{
				Content:      &content{Parts: []part{{Text: "ok"}}},
				FinishReason: "STOP",
			}},
		})
	}))
	defer server.Close()

	provider := New().
		WithAPIKey("test-key").
		WithBaseURL(server.URL).(*GeminiProvider)

	response, err := provider.SendMessage(context.Background(), ai.ChatRequest{
		Messages: []ai.Message{{Role: ai.RoleUser, Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if response.Model != defaultModel {
		t.Errorf("expected model %q, got %q", defaultModel, response.Model)
	}
}

func TestSendMessage_MissingAPIKey(t *testing.T) {
	provider := &GeminiProvider{baseURL: defaultBaseURL, client: &http.Client{}}

	_, err := provider.SendMessage(context.Background(), ai.ChatRequest{
		Messages: []ai.Message{{Role: ai.RoleUser, Content: "hi"}},
	})
	if err == nil {
		t.Fatal("expected error for missing API key")
	}
}

func TestSendMessage_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"code":429,"message":"Resource has been exhausted"}}`))
	}))
	defer server.Close()

	provider := New().
		WithAPIKey("test-key").
		WithBaseURL(server.URL).(*GeminiProvider)

	_, err := provider.SendMessage(context.Background(), ai.ChatRequest{
		Messages: []ai.Message{{Role: ai.RoleUser, Content: "hi"}},
	})
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestSendMessage_InvalidRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":400,"message":"Invalid argument"}}`))
	}))
	defer server.Close()

	provider := New().
		WithAPIKey("test-key").
		WithBaseURL(server.URL).(*GeminiProvider)

	_, err := provider.SendMessage(context.Background(), ai.ChatRequest{
		Messages: []ai.Message{{Role: ai.RoleUser, Content: "hi"}},
	})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestSendMessage_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"code":500,"message":"Internal error"}}`))
	}))
	defer server.Close()

	provider := New().
		WithAPIKey("test-key").
		WithBaseURL(server.URL).(*GeminiProvider)

	_, err := provider.SendMessage(context.Background(), ai.ChatRequest{
		Messages: []ai.Message{{Role: ai.RoleUser, Content: "hi"}},
	})
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	// Internal errors are not classified as rate limit or validation failures.
	if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrInvalidRequest) {
		t.Errorf("500 should not map to a classified error, got %v", err)
	}
}

func TestSendMessage_BlockedPrompt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateContentResponse{
			PromptFeedback: &promptFeedback{BlockReason: "SAFETY"},
		})
	}))
	defer server.Close()

	provider := New().
		WithAPIKey("test-key").
		WithBaseURL(server.URL).(*GeminiProvider)

	_, err := provider.SendMessage(context.Background(), ai.ChatRequest{
		Messages: []ai.Message{{Role: ai.RoleUser, Content: "hi"}},
	})
	if !errors.Is(err, ErrBlocked) {
		t.Fatalf("expected ErrBlocked, got %v", err)
	}
	if !strings.Contains(err.Error(), "SAFETY") {
		t.Errorf("expected block reason in error message, got %q", err.Error())
	}
}

func TestSendMessage_EmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateContentResponse{})
	}))
	defer server.Close()

	provider := New().
		WithAPIKey("test-key").
		WithBaseURL(server.URL).(*GeminiProvider)

	_, err := provider.SendMessage(context.Background(), ai.ChatRequest{
		Messages: []ai.Message{{Role: ai.RoleUser, Content: "hi"}},
	})
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestSendMessage_EmptyCandidateText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateContentResponse{
			Candidates: []candidate{{
				Content:      &content{Parts: []part{}},
				FinishReason: "STOP",
			}},
		})
	}))
	defer server.Close()

	provider := New().
		WithAPIKey("test-key").
		WithBaseURL(server.URL).(*GeminiProvider)

	_, err := provider.SendMessage(context.Background(), ai.ChatRequest{
		Messages: []ai.Message{{Role: ai.RoleUser, Content: "hi"}},
	})
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestSendMessage_SafetySettingsForwarded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateContentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if len(req.SafetySettings) != 4 {
			t.Errorf("expected 4 safety settings, got %d", len(req.SafetySettings))
		}
		for _, s := range req.SafetySettings {
			if s.Threshold != "BLOCK_NONE" {
				t.Errorf("expected threshold BLOCK_NONE, got %q", s.Threshold)
			}
		}
		json.NewEncoder(w).Encode(generateContentResponse{
			Candidates: []candidate{{
				Content:      &content{Parts: []part{{Text: "ok"}}},
				FinishReason: "STOP",
			}},
		})
	}))
	defer server.Close()

	provider := New().
		WithAPIKey("test-key").
		WithBaseURL(server.URL).(*GeminiProvider)

	_, err := provider.SendMessage(context.Background(), ai.ChatRequest{
		Messages: []ai.Message{{Role: ai.RoleUser, Content: "hi"}},
		GenerationConfig: &ai.GenerationConfig{
			SafetySettings: DefaultSafetySettings,
		},
	})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
}
