package parse

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ParseStringAs parses LLM output into the target type T.
//
// The content is first stripped of markdown code fences and surrounding
// prose, then unmarshaled. If unmarshaling fails, the JSON is repaired with
// jsonrepair and retried once.
//
// Example usage:
//
//	type Extraction struct {
//	    Text   string   `json:"text"`
//	    Topics []string `json:"topics"`
//	}
//
//	// Works with clean JSON, fenced JSON, or prose around JSON:
//	out, err := ParseStringAs[Extraction]("Sure! ```json\n{\"text\":\"...\"}\n```")
func ParseStringAs[T any](content string) (T, error) {
	var result T

	candidate := ExtractFirstJSONObject(content)
	if candidate == "" {
		candidate = strings.TrimSpace(content)
	}

	err := json.Unmarshal([]byte(candidate), &result)
	if err == nil {
		return result, nil
	}

	// The model may emit almost-JSON: single quotes, trailing commas,
	// unquoted keys. Repair and retry before giving up.
	repaired, repairErr := jsonrepair.JSONRepair(candidate)
	if repairErr != nil {
		return result, fmt.Errorf("failed to unmarshal content as %T and failed to repair JSON: unmarshal error: %w, repair error: %v", result, err, repairErr)
	}

	if err = json.Unmarshal([]byte(repaired), &result); err != nil {
		return result, fmt.Errorf("failed to unmarshal repaired JSON as %T: %w", result, err)
	}
	return result, nil
}

// ExtractFirstJSONObject returns the first balanced top-level JSON object in
// s, or "" if none is found. Brace matching is string-aware, so braces inside
// quoted values do not terminate the object early.
func ExtractFirstJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}

	return ""
}
