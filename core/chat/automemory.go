package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"promptrelay/core/memory"
	"promptrelay/core/parse"
	"promptrelay/providers/ai"
)

const maxMemoryTopics = 3

const autoMemoryPrompt = "From the conversation below, extract at most one durable fact about the user " +
	"worth remembering for future conversations (a preference, a skill, a recurring interest). " +
	"Respond with a JSON object of the form {\"text\": \"<one short sentence>\", \"topics\": [\"<topic>\", ...]} " +
	"with at most 3 lowercase topics. " +
	"If the conversation reveals nothing durable, respond with {\"text\": \"\", \"topics\": []}."

// memoryExtraction is the JSON shape the model is asked to produce.
type memoryExtraction struct {
	Text   string   `json:"text"`
	Topics []string `json:"topics"`
}

// autoMemory derives a compact memory record from the finished exchange and
// assigns it to every scope the request enabled. It is a Degrade stage: any
// failure (network, upstream rejection, unparseable reply) leaves all new
// memory fields nil and never fails the request.
func (s *Service) autoMemory(ctx context.Context, st *state) error {
	if !st.req.AutoMemory && !st.req.AutoMemoryGlobal && !st.req.AutoMemoryChat {
		return nil
	}

	transcript := fmt.Sprintf("User: %s\n\nAssistant: %s", st.req.Prompt, st.rawAnswer)

	resp, err := s.send(ctx, ai.ChatRequest{
		Model:          s.opts.Model,
		SystemPrompt:   autoMemoryPrompt,
		Messages:       []ai.Message{{Role: ai.RoleUser, Content: transcript}},
		ResponseFormat: &ai.ResponseFormat{Type: "json_object"},
		GenerationConfig: &ai.GenerationConfig{
			MaxOutputTokens: 200,
			SafetySettings:  defaultSafetySettings(),
		},
	})
	if err != nil {
		return err
	}

	extraction, err := parse.ParseStringAs[memoryExtraction](resp.Content)
	if err != nil {
		return err
	}

	extraction.Text = strings.TrimSpace(extraction.Text)
	if extraction.Text == "" {
		return errors.New("extraction produced no memory text")
	}
	if len(extraction.Topics) > maxMemoryTopics {
		extraction.Topics = extraction.Topics[:maxMemoryTopics]
	}

	if st.req.AutoMemory {
		st.result.NewMemory = s.newRecord(extraction)
	}
	if st.req.AutoMemoryGlobal {
		st.result.NewGlobalMemory = s.newRecord(extraction)
	}
	if st.req.AutoMemoryChat {
		st.result.NewChatMemory = s.newRecord(extraction)
	}

	return nil
}

func (s *Service) newRecord(e memoryExtraction) *memory.Memory {
	topics := e.Topics
	if topics == nil {
		topics = []string{}
	}
	return &memory.Memory{
		ID:           s.newID(),
		Text:         e.Text,
		Topics:       topics,
		TokenCount:   memory.EstimateTokens(e.Text),
		LastAccessed: s.now(),
	}
}
