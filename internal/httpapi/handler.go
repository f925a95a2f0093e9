// Package httpapi exposes the gateway over HTTP: a single POST endpoint that
// routes on the body's action field, an OPTIONS preflight response, and a
// health probe. Errors are mapped to statuses by class; the client only ever
// sees a short message while full diagnostics are logged server-side.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"promptrelay/core/chat"
	"promptrelay/core/memory"
	"promptrelay/internal/config"
	"promptrelay/providers/ai"
	"promptrelay/providers/ai/gemini"
	"promptrelay/providers/observability"
)

// chatService is the part of chat.Service the handler needs.
type chatService interface {
	Chat(ctx context.Context, req chat.Request) (*chat.Result, error)
}

// Handler serves the gateway endpoint.
type Handler struct {
	cfg      config.Config
	chat     chatService
	observer observability.Provider
}

// New builds the handler. observer must not be nil; use slogobs.New().
func New(cfg config.Config, svc chatService, observer observability.Provider) *Handler {
	return &Handler{cfg: cfg, chat: svc, observer: observer}
}

// Routes returns the ServeMux with the endpoint and the health probe mounted.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", h.handle)
	mux.HandleFunc("/healthz", h.handleHealth)
	return mux
}

// requestBody is the wire format the frontend sends. The action field decides
// which of the remaining fields matter.
type requestBody struct {
	Action string `json:"action"`

	Prompt            string     `json:"prompt"`
	IsPro             bool       `json:"isPro"`
	ProToken          string     `json:"proToken"`
	UseDynamicPersona bool       `json:"useDynamicPersona"`
	Image             *imageData `json:"image"`

	Memories       []memory.Memory `json:"memories"`
	GlobalMemories []memory.Memory `json:"globalMemories"`
	ChatMemories   []memory.Memory `json:"chatMemories"`

	IsAutoMemory     bool `json:"isAutoMemory"`
	AutoMemoryGlobal bool `json:"autoMemoryGlobal"`
	AutoMemoryChat   bool `json:"autoMemoryChat"`
}

type imageData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// chatResponse is the success wire format for the chat action. canvasContent
// is null when the answer carried no canvas block.
type chatResponse struct {
	AIResponse      string         `json:"aiResponse"`
	CanvasContent   *string        `json:"canvasContent"`
	NewMemory       *memory.Memory `json:"newMemory,omitempty"`
	NewGlobalMemory *memory.Memory `json:"newGlobalMemory,omitempty"`
	NewChatMemory   *memory.Memory `json:"newChatMemory,omitempty"`
	UsedContext     []string       `json:"usedContext"`
}

type verifyResponse struct {
	Success bool `json:"success"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handle(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	start := time.Now()

	var body requestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.observer.Warn(r.Context(), "malformed request body", observability.Error(err))
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, span := h.observer.StartSpan(r.Context(), observability.SpanChatRequest,
		observability.String(observability.AttrHTTPMethod, r.Method),
		observability.String(observability.AttrRequestAction, body.Action),
	)
	ctx = observability.ContextWithObserver(ctx, h.observer)
	defer span.End()

	var status int
	switch body.Action {
	case "verifyPassword":
		status = h.verifyPassword(ctx, w, body)
	case "chat":
		status = h.chatAction(ctx, w, body)
	default:
		h.observer.Warn(ctx, "unknown action", observability.String(observability.AttrRequestAction, body.Action))
		status = writeError(w, http.StatusBadRequest, "unknown action")
	}

	span.SetAttributes(observability.Int(observability.AttrHTTPStatusCode, status))
	if status >= 500 {
		span.SetStatus(observability.StatusError, http.StatusText(status))
	} else {
		span.SetStatus(observability.StatusOK, "")
	}

	h.observer.Counter(observability.MetricRequestCount).Add(ctx, 1,
		observability.String(observability.AttrRequestAction, body.Action),
		observability.Int(observability.AttrHTTPStatusCode, status),
	)
	h.observer.Histogram(observability.MetricRequestDuration).Record(ctx, time.Since(start).Seconds(),
		observability.String(observability.AttrRequestAction, body.Action),
	)
}

// verifyPassword answers whether the supplied token matches the configured
// pro secret. A missing secret is a deployment fault, not an auth failure.
func (h *Handler) verifyPassword(ctx context.Context, w http.ResponseWriter, body requestBody) int {
	if h.cfg.ProPassword == "" {
		h.observer.Error(ctx, "pro password not configured")
		return writeError(w, http.StatusInternalServerError, "pro access not configured")
	}

	return writeJSON(w, http.StatusOK, verifyResponse{
		Success: body.ProToken == h.cfg.ProPassword,
	})
}

func (h *Handler) chatAction(ctx context.Context, w http.ResponseWriter, body requestBody) int {
	if body.Prompt == "" {
		return writeError(w, http.StatusBadRequest, "prompt is required")
	}
	if body.Image != nil && (body.Image.MimeType == "" || body.Image.Data == "") {
		return writeError(w, http.StatusBadRequest, "image requires mimeType and data")
	}

	if body.IsPro {
		if h.cfg.ProPassword == "" {
			h.observer.Error(ctx, "pro password not configured")
			return writeError(w, http.StatusInternalServerError, "pro access not configured")
		}
		if body.ProToken != h.cfg.ProPassword {
			return writeError(w, http.StatusUnauthorized, "invalid pro token")
		}
	}

	req := chat.Request{
		Prompt:            body.Prompt,
		IsPro:             body.IsPro,
		UseDynamicPersona: body.UseDynamicPersona,
		Memories:          body.Memories,
		GlobalMemories:    body.GlobalMemories,
		ChatMemories:      body.ChatMemories,
		AutoMemory:        body.IsAutoMemory,
		AutoMemoryGlobal:  body.AutoMemoryGlobal,
		AutoMemoryChat:    body.AutoMemoryChat,
	}
	if body.Image != nil {
		req.Image = &ai.ImageData{MimeType: body.Image.MimeType, Data: body.Image.Data}
	}

	result, err := h.chat.Chat(ctx, req)
	if err != nil {
		return h.writeChatError(ctx, w, err)
	}

	resp := chatResponse{
		AIResponse:      result.Answer,
		NewMemory:       result.NewMemory,
		NewGlobalMemory: result.NewGlobalMemory,
		NewChatMemory:   result.NewChatMemory,
		UsedContext:     result.UsedContext,
	}
	if result.HasCanvas {
		resp.CanvasContent = &result.Canvas
	}

	return writeJSON(w, http.StatusOK, resp)
}

// writeChatError maps a pipeline failure to a response status by error class.
// The client message stays short; the wrapped chain goes to the log.
func (h *Handler) writeChatError(ctx context.Context, w http.ResponseWriter, err error) int {
	h.observer.Error(ctx, "chat request failed", observability.Error(err))

	switch {
	case errors.Is(err, chat.ErrEmptyPrompt):
		return writeError(w, http.StatusBadRequest, "prompt is required")
	case errors.Is(err, gemini.ErrRateLimited):
		return writeError(w, http.StatusTooManyRequests, "upstream rate limit exceeded")
	case errors.Is(err, gemini.ErrInvalidRequest):
		return writeError(w, http.StatusBadRequest, "request rejected by upstream")
	case errors.Is(err, gemini.ErrBlocked):
		return writeError(w, http.StatusBadRequest, "prompt blocked by content filter")
	case errors.Is(err, context.Canceled):
		// Client went away; 499 in spirit, but 500 is the closest standard code.
		return writeError(w, http.StatusInternalServerError, "request cancelled")
	default:
		return writeError(w, http.StatusInternalServerError, "generation failed")
	}
}

func setCORSHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
	h.Set("Access-Control-Max-Age", "86400")
}

func writeJSON(w http.ResponseWriter, status int, payload any) int {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
	return status
}

func writeError(w http.ResponseWriter, status int, msg string) int {
	return writeJSON(w, status, errorResponse{Error: msg})
}
