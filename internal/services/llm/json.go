package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON returns the JSON document embedded in a model response.
// Generative backends occasionally wrap output in markdown code fences or
// surrounding prose even when asked for bare JSON.
func ExtractJSON(s string) (string, error) {
	s = strings.TrimSpace(s)

	if isValidJSON(s) {
		return s, nil
	}

	// Strip markdown code fences
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
		if isValidJSON(s) {
			return s, nil
		}
	}

	// Fall back to the outermost brace or bracket pair
	for _, pair := range [][2]rune{{'{', '}'}, {'[', ']'}} {
		start := strings.IndexRune(s, pair[0])
		end := strings.LastIndex(s, string(pair[1]))
		if start >= 0 && end > start {
			candidate := s[start : end+1]
			if isValidJSON(candidate) {
				return candidate, nil
			}
		}
	}

	return "", fmt.Errorf("no valid JSON found in response")
}

func isValidJSON(s string) bool {
	if s == "" {
		return false
	}
	var v any
	return json.Unmarshal([]byte(s), &v) == nil
}
