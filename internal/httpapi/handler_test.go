package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"promptrelay/core/chat"
	"promptrelay/internal/config"
	"promptrelay/providers/ai/gemini"
	"promptrelay/providers/observability/slogobs"
)

// stubChat returns a canned result or error and records requests.
type stubChat struct {
	requests []chat.Request
	result   *chat.Result
	err      error
}

func (s *stubChat) Chat(ctx context.Context, req chat.Request) (*chat.Result, error) {
	s.requests = append(s.requests, req)
	return s.result, s.err
}

func quietObserver() *slogobs.Observer {
	return slogobs.New(slogobs.WithOutput(io.Discard))
}

func newTestHandler(cfg config.Config, svc chatService) *Handler {
	return New(cfg, svc, quietObserver())
}

func postJSON(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandle_OptionsPreflight(t *testing.T) {
	h := newTestHandler(config.Config{}, &stubChat{})

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected CORS origin header")
	}
	if !strings.Contains(rec.Header().Get("Access-Control-Allow-Methods"), "POST") {
		t.Error("expected POST in allowed methods")
	}
}

func TestHandle_MethodNotAllowed(t *testing.T) {
	h := newTestHandler(config.Config{}, &stubChat{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

func TestHandle_BadJSON(t *testing.T) {
	h := newTestHandler(config.Config{}, &stubChat{})

	rec := postJSON(t, h.Routes(), "{not json")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandle_UnknownAction(t *testing.T) {
	h := newTestHandler(config.Config{}, &stubChat{})

	rec := postJSON(t, h.Routes(), `{"action":"selfDestruct"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestVerifyPassword(t *testing.T) {
	h := newTestHandler(config.Config{ProPassword: "hunter2"}, &stubChat{})

	rec := postJSON(t, h.Routes(), `{"action":"verifyPassword","proToken":"hunter2"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp verifyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if !resp.Success {
		t.Error("expected success for matching token")
	}

	rec = postJSON(t, h.Routes(), `{"action":"verifyPassword","proToken":"wrong"}`)
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.Success {
		t.Error("expected failure for wrong token")
	}
}

func TestVerifyPassword_Unconfigured(t *testing.T) {
	h := newTestHandler(config.Config{}, &stubChat{})

	rec := postJSON(t, h.Routes(), `{"action":"verifyPassword","proToken":"anything"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 for missing secret, got %d", rec.Code)
	}
}

func TestChatAction_MissingPrompt(t *testing.T) {
	svc := &stubChat{}
	h := newTestHandler(config.Config{}, svc)

	rec := postJSON(t, h.Routes(), `{"action":"chat"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if len(svc.requests) != 0 {
		t.Error("service must not be called without a prompt")
	}
}

func TestChatAction_ImageWithoutData(t *testing.T) {
	h := newTestHandler(config.Config{}, &stubChat{})

	rec := postJSON(t, h.Routes(), `{"action":"chat","prompt":"hi","image":{"mimeType":"image/png"}}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for image without data, got %d", rec.Code)
	}
}

func TestChatAction_ProTokenMismatch(t *testing.T) {
	svc := &stubChat{}
	h := newTestHandler(config.Config{ProPassword: "hunter2"}, svc)

	rec := postJSON(t, h.Routes(), `{"action":"chat","prompt":"hi","isPro":true,"proToken":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if len(svc.requests) != 0 {
		t.Error("service must not be called with a bad pro token")
	}
}

func TestChatAction_ProUnconfigured(t *testing.T) {
	h := newTestHandler(config.Config{}, &stubChat{})

	rec := postJSON(t, h.Routes(), `{"action":"chat","prompt":"hi","isPro":true,"proToken":"x"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 for missing secret, got %d", rec.Code)
	}
}

func TestChatAction_Success(t *testing.T) {
	canvas := "func main() {}"
	svc := &stubChat{result: &chat.Result{
		Answer:      "Here you go.",
		Canvas:      canvas,
		HasCanvas:   true,
		UsedContext: []string{"programming"},
	}}
	h := newTestHandler(config.Config{}, svc)

	rec := postJSON(t, h.Routes(), `{"action":"chat","prompt":"Write main","memories":[{"id":"1","text":"codes in go","topics":["programming"]}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp chatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.AIResponse != "Here you go." {
		t.Errorf("unexpected aiResponse: %q", resp.AIResponse)
	}
	if resp.CanvasContent == nil || *resp.CanvasContent != canvas {
		t.Errorf("unexpected canvasContent: %v", resp.CanvasContent)
	}
	if len(resp.UsedContext) != 1 || resp.UsedContext[0] != "programming" {
		t.Errorf("unexpected usedContext: %v", resp.UsedContext)
	}

	if len(svc.requests) != 1 || len(svc.requests[0].Memories) != 1 {
		t.Fatalf("expected memories forwarded to the service")
	}
}

func TestChatAction_ErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"rate limited", fmt.Errorf("stage generate_answer: %w", gemini.ErrRateLimited), http.StatusTooManyRequests},
		{"invalid request", fmt.Errorf("stage generate_answer: %w", gemini.ErrInvalidRequest), http.StatusBadRequest},
		{"blocked", fmt.Errorf("stage generate_answer: %w", gemini.ErrBlocked), http.StatusBadRequest},
		{"empty response", fmt.Errorf("stage generate_answer: %w", gemini.ErrEmptyResponse), http.StatusInternalServerError},
		{"generic", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestHandler(config.Config{}, &stubChat{err: tc.err})

			rec := postJSON(t, h.Routes(), `{"action":"chat","prompt":"hi"}`)
			if rec.Code != tc.wantStatus {
				t.Errorf("expected %d, got %d", tc.wantStatus, rec.Code)
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("bad response body: %v", err)
			}
			if resp.Error == "" {
				t.Error("expected error message in body")
			}
		})
	}
}

func TestHealthz(t *testing.T) {
	h := newTestHandler(config.Config{}, &stubChat{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
