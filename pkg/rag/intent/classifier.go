// Package intent decides which retrieval path a chat turn takes.
package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"library-assistant-be/internal/constant"
	"library-assistant-be/internal/pkg/logger"
	"library-assistant-be/internal/pkg/metrics"
	"library-assistant-be/pkg/llm"
)

type Type string

const (
	Generic    Type = "generic"
	Similarity Type = "similarity"
	Filtered   Type = "filtered"
)

// Intent represents the detected user intent
type Intent struct {
	Type       Type    `json:"intent"`
	TargetBook *string `json:"target_book,omitempty"`
}

// Default is the intent used whenever classification fails.
func Default() Intent {
	return Intent{Type: Filtered}
}

type rawIntent struct {
	Intent     string  `json:"intent"`
	TargetBook *string `json:"target_book"`
}

// Parse decodes a classifier reply. Unknown tags are malformed output.
func Parse(reply string) (Intent, error) {
	raw, err := llm.ExtractJSONObject(reply)
	if err != nil {
		return Intent{}, err
	}

	var r rawIntent
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return Intent{}, fmt.Errorf("%w: %w", llm.ErrMalformedOutput, err)
	}

	var t Type
	switch Type(strings.ToLower(strings.TrimSpace(r.Intent))) {
	case Generic:
		t = Generic
	case Similarity:
		t = Similarity
	case Filtered:
		t = Filtered
	default:
		return Intent{}, fmt.Errorf("%w: unknown intent %q", llm.ErrMalformedOutput, r.Intent)
	}

	in := Intent{Type: t}
	if t == Similarity && r.TargetBook != nil {
		if title := strings.TrimSpace(*r.TargetBook); title != "" && !strings.EqualFold(title, "null") {
			in.TargetBook = &title
		}
	}
	return in, nil
}

type Classifier struct {
	llm     llm.LLMProvider
	logger  logger.ILogger
	metrics *metrics.Metrics
	timeout time.Duration
}

func NewClassifier(provider llm.LLMProvider, log logger.ILogger, m *metrics.Metrics, timeout time.Duration) *Classifier {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Classifier{llm: provider, logger: log, metrics: m, timeout: timeout}
}

// Classify makes a single attempt and falls back to Default on any failure.
func (c *Classifier) Classify(ctx context.Context, query string) Intent {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reply, err := llm.Complete(ctx, c.llm,
		constant.IntentClassificationPrompt,
		fmt.Sprintf(constant.IntentUserPrompt, query),
		llm.WithJSONFormat(), llm.WithTemperature(0.1), llm.WithMaxTokens(100),
	)
	if err == nil {
		var in Intent
		if in, err = Parse(reply); err == nil {
			c.logger.Debug("INTENT", "Classified query", map[string]interface{}{
				"intent":      string(in.Type),
				"target_book": in.TargetBook,
			})
			return in
		}
	}

	c.metrics.Fallback("intent")
	c.logger.Warn("INTENT", "Intent classification failed, defaulting to filtered", map[string]interface{}{
		"error": err.Error(),
	})
	return Default()
}
