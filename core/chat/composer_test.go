package chat

import (
	"strings"
	"testing"

	"promptrelay/core/memory"
)

func TestComposeSystemPrompt_Generalist(t *testing.T) {
	prompt := composeSystemPrompt("", false, memory.Selection{})

	if !strings.Contains(prompt, identityBlock) {
		t.Error("expected identity block")
	}
	if !strings.Contains(prompt, personaGeneralist) {
		t.Error("expected generalist persona instruction")
	}
	if !strings.Contains(prompt, CanvasStartMarker) {
		t.Error("expected canvas instruction with start marker")
	}
	if strings.Contains(prompt, "about the user") {
		t.Error("unexpected memory block for empty selection")
	}
}

func TestComposeSystemPrompt_Pro(t *testing.T) {
	prompt := composeSystemPrompt("", true, memory.Selection{})
	if !strings.Contains(prompt, personaPro) {
		t.Error("expected pro persona instruction")
	}
}

func TestComposeSystemPrompt_InferredPersonaWins(t *testing.T) {
	prompt := composeSystemPrompt("a patient violin teacher", true, memory.Selection{})
	if !strings.Contains(prompt, "a patient violin teacher") {
		t.Error("expected inferred persona in prompt")
	}
	if strings.Contains(prompt, personaPro) {
		t.Error("inferred persona should replace the static pro instruction")
	}
}

func TestComposeSystemPrompt_MemoryBlock(t *testing.T) {
	sel := memory.Selection{
		Memories: []memory.Memory{
			{Text: "prefers concise answers"},
			{Text: "is learning the cello"},
		},
		Topics: []string{"preferences", "music"},
	}

	prompt := composeSystemPrompt("", false, sel)
	if !strings.Contains(prompt, "- prefers concise answers\n") {
		t.Error("expected first memory in context block")
	}
	if !strings.Contains(prompt, "- is learning the cello\n") {
		t.Error("expected second memory in context block")
	}
}
