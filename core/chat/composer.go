package chat

import (
	"strings"

	"promptrelay/core/memory"
)

// identityBlock is the fixed opening of every system prompt. It keeps the
// assistant honest about being an AI regardless of the adopted persona.
const identityBlock = "You are a helpful AI assistant. " +
	"If the user asks who or what you are, disclose that you are an AI. " +
	"Never claim to be a human."

const (
	personaPro        = "Silently infer the expert persona best suited to the user's request and adopt it for this answer. Do not announce or describe the persona."
	personaGeneralist = "Answer as a knowledgeable generalist polymath."
)

// canvasInstruction tells the model how to mark long-form content so the
// frontend can render it in a separate panel.
const canvasInstruction = "When a substantial part of your answer is long-form or technical content " +
	"(code, documents, step-by-step guides, tables), place that part between " +
	CanvasStartMarker + " and " + CanvasEndMarker + " markers. " +
	"Keep the conversational part of your answer outside the markers."

// composeSystemPrompt assembles the system prompt from its fixed blocks.
// An inferred persona (from the dynamic-persona stage) takes precedence over
// the static pro/generalist instruction. The memory block is present only
// when the selection is non-empty.
func composeSystemPrompt(inferredPersona string, isPro bool, sel memory.Selection) string {
	var b strings.Builder

	b.WriteString(identityBlock)
	b.WriteString("\n\n")

	switch {
	case inferredPersona != "":
		b.WriteString("Adopt this persona for your answer: ")
		b.WriteString(inferredPersona)
	case isPro:
		b.WriteString(personaPro)
	default:
		b.WriteString(personaGeneralist)
	}

	if len(sel.Memories) > 0 {
		b.WriteString("\n\nYou know the following about the user. Use it when relevant, without reciting it:\n")
		for _, m := range sel.Memories {
			b.WriteString("- ")
			b.WriteString(m.Text)
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(canvasInstruction)

	return b.String()
}
