package chat

import (
	"context"
	"errors"
	"strings"

	"promptrelay/providers/ai"
)

const personaInferencePrompt = "Name the single expert persona best suited to answer the user's request. " +
	"Reply with one short line describing that persona, for example: " +
	"\"a senior compiler engineer who explains with concrete examples\". " +
	"Reply with the persona line only, no preamble."

// inferPersona runs the optional dynamic-persona round trip. It is a Degrade
// stage: on any failure st.persona stays empty and the composer falls back to
// the static persona instruction.
func (s *Service) inferPersona(ctx context.Context, st *state) error {
	if !st.req.UseDynamicPersona {
		return nil
	}

	resp, err := s.send(ctx, ai.ChatRequest{
		Model:        s.opts.Model,
		SystemPrompt: personaInferencePrompt,
		Messages:     []ai.Message{{Role: ai.RoleUser, Content: st.req.Prompt}},
		GenerationConfig: &ai.GenerationConfig{
			MaxOutputTokens: 100,
			SafetySettings:  defaultSafetySettings(),
		},
	})
	if err != nil {
		return err
	}

	persona := firstLine(resp.Content)
	if persona == "" {
		return errors.New("empty persona suggestion")
	}

	st.persona = persona
	return nil
}

// firstLine trims the reply down to its first non-empty line.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
