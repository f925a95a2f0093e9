package chat

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"promptrelay/core/llm"
	"promptrelay/core/memory"
	"promptrelay/providers/ai"
	"promptrelay/providers/observability"
)

// ErrEmptyPrompt is returned when a chat request carries no prompt text.
var ErrEmptyPrompt = errors.New("chat: prompt is required")

// Request is a fully validated chat exchange request.
type Request struct {
	Prompt            string
	IsPro             bool
	UseDynamicPersona bool
	Image             *ai.ImageData

	// Memory lists are merged before selection; the split only matters for
	// which auto-memory scopes the frontend persists.
	Memories       []memory.Memory
	GlobalMemories []memory.Memory
	ChatMemories   []memory.Memory

	AutoMemory       bool
	AutoMemoryGlobal bool
	AutoMemoryChat   bool
}

// Result is the outcome of a successful chat exchange.
type Result struct {
	Answer    string
	Canvas    string
	HasCanvas bool

	NewMemory       *memory.Memory
	NewGlobalMemory *memory.Memory
	NewChatMemory   *memory.Memory

	// UsedContext lists the topics of the memories injected into the prompt.
	UsedContext []string
}

// Options configures a chat Service.
type Options struct {
	// Model is the upstream model identifier. Empty uses the provider default.
	Model string

	// ContextBudgetChars caps how many characters of memory text the system
	// prompt may carry.
	ContextBudgetChars int

	// Temperature and MaxOutputTokens are passed through to generation.
	Temperature     float32
	MaxOutputTokens int
}

// Service runs chat exchanges through the stage pipeline. All model round
// trips go through the injected SendFunc, so middleware applies uniformly.
type Service struct {
	send llm.SendFunc
	opts Options

	now   func() time.Time
	newID func() string
}

// NewService builds a Service around the middleware-wrapped send function.
func NewService(send llm.SendFunc, opts Options) *Service {
	return &Service{
		send:  send,
		opts:  opts,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// state is the mutable carrier threaded through the pipeline stages.
type state struct {
	req Request

	selection    memory.Selection
	persona      string
	systemPrompt string
	rawAnswer    string

	result Result
}

// Chat executes the full pipeline for one request.
func (s *Service) Chat(ctx context.Context, req Request) (*Result, error) {
	if req.Prompt == "" {
		return nil, ErrEmptyPrompt
	}

	st := &state{req: req}

	stages := []Stage{
		{Name: "select_memories", Policy: FailFast, Run: s.selectMemories},
		{Name: "infer_persona", Policy: Degrade, Run: s.inferPersona},
		{Name: "compose_prompt", Policy: FailFast, Run: s.composePrompt},
		{Name: "generate_answer", Policy: FailFast, Run: s.generateAnswer},
		{Name: "split_canvas", Policy: FailFast, Run: s.splitCanvas},
		{Name: "auto_memory", Policy: Degrade, Run: s.autoMemory},
	}

	if err := runPipeline(ctx, stages, st); err != nil {
		return nil, err
	}

	return &st.result, nil
}

func (s *Service) selectMemories(ctx context.Context, st *state) error {
	candidates := make([]memory.Memory, 0, len(st.req.Memories)+len(st.req.GlobalMemories)+len(st.req.ChatMemories))
	candidates = append(candidates, st.req.Memories...)
	candidates = append(candidates, st.req.GlobalMemories...)
	candidates = append(candidates, st.req.ChatMemories...)

	st.selection = memory.SelectRelevant(candidates, st.req.Prompt, s.opts.ContextBudgetChars, s.now())
	st.result.UsedContext = st.selection.Topics
	if st.result.UsedContext == nil {
		st.result.UsedContext = []string{}
	}

	if span := observability.SpanFromContext(ctx); span != nil {
		span.SetAttributes(
			observability.Int(observability.AttrMemoryCandidates, len(candidates)),
			observability.Int(observability.AttrMemorySelected, len(st.selection.Memories)),
			observability.Int(observability.AttrMemoryBudgetChars, s.opts.ContextBudgetChars),
		)
	}
	return nil
}

func (s *Service) composePrompt(ctx context.Context, st *state) error {
	st.systemPrompt = composeSystemPrompt(st.persona, st.req.IsPro, st.selection)
	return nil
}

func (s *Service) generateAnswer(ctx context.Context, st *state) error {
	userMsg := ai.Message{Role: ai.RoleUser, Content: st.req.Prompt, Image: st.req.Image}

	resp, err := s.send(ctx, ai.ChatRequest{
		Model:        s.opts.Model,
		SystemPrompt: st.systemPrompt,
		Messages:     []ai.Message{userMsg},
		GenerationConfig: &ai.GenerationConfig{
			Temperature:     s.opts.Temperature,
			MaxOutputTokens: s.opts.MaxOutputTokens,
			SafetySettings:  defaultSafetySettings(),
		},
	})
	if err != nil {
		return err
	}

	st.rawAnswer = resp.Content
	return nil
}

func (s *Service) splitCanvas(ctx context.Context, st *state) error {
	st.result.Answer, st.result.Canvas, st.result.HasCanvas = SplitCanvas(st.rawAnswer)
	return nil
}

// defaultSafetySettings turns off upstream content filtering for every harm
// category. Presentation-level filtering is the frontend's concern.
func defaultSafetySettings() []ai.SafetySetting {
	categories := []string{
		"HARM_CATEGORY_HARASSMENT",
		"HARM_CATEGORY_HATE_SPEECH",
		"HARM_CATEGORY_SEXUALLY_EXPLICIT",
		"HARM_CATEGORY_DANGEROUS_CONTENT",
	}

	settings := make([]ai.SafetySetting, len(categories))
	for i, c := range categories {
		settings[i] = ai.SafetySetting{Category: c, Threshold: "BLOCK_NONE"}
	}
	return settings
}
