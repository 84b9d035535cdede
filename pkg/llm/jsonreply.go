package llm

import (
	"fmt"
	"strings"
)

// ExtractJSONObject strips markdown fences and returns the text from the first
// '{' to the last '}'. Models often wrap JSON in prose or code blocks.
func ExtractJSONObject(reply string) (string, error) {
	s := strings.TrimSpace(reply)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("%w: no JSON object in reply", ErrMalformedOutput)
	}
	return s[start : end+1], nil
}
