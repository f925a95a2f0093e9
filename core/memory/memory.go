package memory

import "time"

// Memory is a single stored fact about the user. Records arrive with the
// request and are never mutated; a request sees a consistent snapshot.
type Memory struct {
	ID           string    `json:"id"`
	Text         string    `json:"text"`
	Topics       []string  `json:"topics"`
	TokenCount   int       `json:"tokenCount,omitempty"`
	LastAccessed time.Time `json:"lastAccessed,omitzero"`
}

// EstimatedTokens returns the record's token count, falling back to a
// chars/4 estimate when the frontend did not provide one.
func (m Memory) EstimatedTokens() int {
	if m.TokenCount > 0 {
		return m.TokenCount
	}
	return (len(m.Text) + 3) / 4
}

// EstimateTokens returns a chars/4 token estimate for arbitrary text.
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}
