package gemini

import (
	"fmt"
	"strings"
	"time"

	"promptrelay/providers/ai"
)

// requestToGemini converts an ai.ChatRequest to a Gemini generateContentRequest.
func requestToGemini(request ai.ChatRequest) generateContentRequest {
	req := generateContentRequest{}

	// Build system instruction
	if request.SystemPrompt != "" {
		req.SystemInstruction = &systemInstruction{
			Parts: []part{{Text: request.SystemPrompt}},
		}
	}

	// Build contents from messages
	req.Contents = buildContents(request.Messages)

	// Build generation config
	req.GenerationConfig = buildGenerationConfig(request.GenerationConfig, request.ResponseFormat)

	// Build safety settings
	if request.GenerationConfig != nil && len(request.GenerationConfig.SafetySettings) > 0 {
		req.SafetySettings = buildSafetySettings(request.GenerationConfig.SafetySettings)
	}

	return req
}

// buildContents converts ai.Message slice to Gemini content slice.
// Role mapping: user -> user, assistant -> model.
func buildContents(messages []ai.Message) []content {
	var contents []content

	for _, msg := range messages {
		switch msg.Role {
		case ai.RoleUser:
			userContent := content{Role: "user"}
			if msg.Content != "" {
				userContent.Parts = append(userContent.Parts, part{Text: msg.Content})
			}
			if msg.Image != nil {
				userContent.Parts = append(userContent.Parts, part{
					InlineData: &inlineData{
						MimeType: msg.Image.MimeType,
						Data:     msg.Image.Data,
					},
				})
			}
			if len(userContent.Parts) > 0 {
				contents = append(contents, userContent)
			}

		case ai.RoleAssistant:
			if msg.Content != "" {
				contents = append(contents, content{
					Role:  "model",
					Parts: []part{{Text: msg.Content}},
				})
			}

		case ai.RoleSystem:
			// System messages should go to SystemInstruction, not here.
			// If someone passes a system message in Messages, convert to user message.
			contents = append(contents, content{
				Role:  "user",
				Parts: []part{{Text: msg.Content}},
			})
		}
	}

	return contents
}

// buildGenerationConfig converts ai.GenerationConfig and ai.ResponseFormat to Gemini generationConfig.
func buildGenerationConfig(cfg *ai.GenerationConfig, respFmt *ai.ResponseFormat) *generationConfig {
	if cfg == nil && respFmt == nil {
		return nil
	}

	gc := &generationConfig{}

	if cfg != nil {
		if cfg.Temperature > 0 {
			t := float64(cfg.Temperature)
			gc.Temperature = &t
		}

		if cfg.TopP > 0 {
			p := float64(cfg.TopP)
			gc.TopP = &p
		}

		if cfg.MaxOutputTokens > 0 {
			gc.MaxOutputTokens = &cfg.MaxOutputTokens
		}
	}

	// Response format: json_object asks Gemini for a bare JSON document.
	if respFmt != nil && respFmt.Type == "json_object" {
		gc.ResponseMimeType = "application/json"
	}

	return gc
}

// buildSafetySettings converts ai.SafetySetting slice to Gemini safetySetting slice.
func buildSafetySettings(settings []ai.SafetySetting) []safetySetting {
	result := make([]safetySetting, len(settings))
	for i, s := range settings {
		result[i] = safetySetting{
			Category:  s.Category,
			Threshold: s.Threshold,
		}
	}
	return result
}

// geminiToGeneric converts a Gemini generateContentResponse to ai.ChatResponse.
func geminiToGeneric(resp generateContentResponse) *ai.ChatResponse {
	result := &ai.ChatResponse{
		Id:      fmt.Sprintf("gemini-%d", time.Now().UnixNano()),
		Model:   resp.ModelVersion,
		Created: time.Now().Unix(),
	}

	// Handle empty response
	if len(resp.Candidates) == 0 {
		result.FinishReason = "error"
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			result.FinishReason = "content_filter"
			result.Refusal = resp.PromptFeedback.BlockReason
		}
		return result
	}

	candidate := resp.Candidates[0]

	// Map finish reason
	result.FinishReason = mapFinishReason(candidate.FinishReason)

	// Extract content text
	if candidate.Content != nil {
		var textParts []string
		for _, p := range candidate.Content.Parts {
			if p.Text != "" {
				textParts = append(textParts, p.Text)
			}
		}
		result.Content = strings.Join(textParts, "\n")
	}

	// Map usage
	if resp.UsageMetadata != nil {
		result.Usage = &ai.Usage{
			PromptTokens:     resp.UsageMetadata.PromptTokenCount,
			CompletionTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      resp.UsageMetadata.TotalTokenCount,
		}
	}

	return result
}

// mapFinishReason converts Gemini finish reason to ai.ChatResponse finish reason.
func mapFinishReason(geminiReason string) string {
	switch geminiReason {
	case "STOP":
		return "stop"
	case "MAX_TOKENS":
		return "length"
	case "SAFETY":
		return "content_filter"
	case "RECITATION":
		return "content_filter"
	default:
		return "stop"
	}
}
