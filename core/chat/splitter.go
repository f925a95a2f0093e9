package chat

import "strings"

// Markers the model is instructed to wrap long-form content in.
const (
	CanvasStartMarker = "[CANVAS_START]"
	CanvasEndMarker   = "[CANVAS_END]"
)

// SplitCanvas separates canvas content from the conversational part of a
// model answer. When both markers are present in order, the chat text is what
// precedes the start marker and the canvas is what sits between the markers;
// anything after the end marker is discarded. Otherwise the whole text is
// chat and hasCanvas is false.
func SplitCanvas(text string) (chatText, canvas string, hasCanvas bool) {
	start := strings.Index(text, CanvasStartMarker)
	if start < 0 {
		return strings.TrimSpace(text), "", false
	}

	rest := text[start+len(CanvasStartMarker):]
	end := strings.Index(rest, CanvasEndMarker)
	if end < 0 {
		return strings.TrimSpace(text), "", false
	}

	return strings.TrimSpace(text[:start]), strings.TrimSpace(rest[:end]), true
}
