package assistant

import (
	"regexp"
	"strconv"
	"strings"

	"library-assistant-be/internal/constant"
	"library-assistant-be/pkg/llm"
	"library-assistant-be/pkg/rag/search"
)

var bookLimitPattern = regexp.MustCompile(`(\d+)\s*books?`)

// minHistoryForReuse is the formatted prior-history length below which a
// cached context is never trusted.
const minHistoryForReuse = 50

// LatestQuery returns the content of the last user message.
func LatestQuery(history []llm.Message) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == llm.RoleUser {
			return history[i].Content
		}
	}
	return ""
}

// BookLimit reads "<n> books" from the query, defaulting to 5, clamped to [1, 20].
func BookLimit(query string) int {
	m := bookLimitPattern.FindStringSubmatch(strings.ToLower(query))
	if m == nil {
		return constant.DefaultBookLimit
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		// more digits than an int holds
		return constant.MaxBookLimit
	}
	if n < constant.MinBookLimit {
		return constant.MinBookLimit
	}
	return search.ClampLimit(n)
}

// FormatHistory renders messages as "User: ...\nAssistant: ...\n".
func FormatHistory(messages []llm.Message) string {
	var sb strings.Builder
	for _, m := range messages {
		if m.Role == llm.RoleUser {
			sb.WriteString("User: ")
		} else {
			sb.WriteString("Assistant: ")
		}
		sb.WriteString(m.Content)
		sb.WriteString("\n")
	}
	return sb.String()
}

// ShouldRetrieve decides whether a turn needs fresh books or can reuse the
// previous context. priorHistory is the formatted history before the query.
func ShouldRetrieve(query, priorHistory string) bool {
	if len(priorHistory) < minHistoryForReuse {
		return true
	}

	q := strings.ToLower(query)
	for _, indicator := range constant.NewQueryIndicators {
		if strings.Contains(q, indicator) {
			return true
		}
	}
	for _, keyword := range constant.FilterKeywords {
		if strings.Contains(q, keyword) {
			return true
		}
	}
	return false
}
