package filter

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

// Filter is the structured predicate set pulled out of a query. Nil means "no constraint".
type Filter struct {
	SearchPhrase *string  `json:"search_query,omitempty"`
	MaxPages     *int     `json:"max_pages,omitempty"`
	MinPages     *int     `json:"min_pages,omitempty"`
	Genre        *string  `json:"genre,omitempty"`
	YearStart    *int     `json:"year_start,omitempty"`
	YearEnd      *int     `json:"year_end,omitempty"`
	Language     *string  `json:"language,omitempty"`
	Pacing       *string  `json:"pacing,omitempty"`
	Tone         *string  `json:"tone,omitempty"`
	Themes       []string `json:"themes,omitempty"`
	Moods        []string `json:"moods,omitempty"`
}

// IsEmpty reports whether no structured constraint is set. SearchPhrase does not count.
func (f Filter) IsEmpty() bool {
	return f.MaxPages == nil && f.MinPages == nil && f.Genre == nil &&
		f.YearStart == nil && f.YearEnd == nil && f.Language == nil &&
		f.Pacing == nil && f.Tone == nil && len(f.Themes) == 0 && len(f.Moods) == 0
}

// String renders the filter for the system prompt.
func (f Filter) String() string {
	b, err := json.Marshal(f)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// Fallback is the degenerate filter used when extraction fails.
func Fallback(query string) Filter {
	q := query
	return Filter{SearchPhrase: &q}
}

func cleanString(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" || strings.EqualFold(v, "null") {
		return nil
	}
	return &v
}

func cleanInt(n *int) *int {
	if n == nil || *n <= 0 {
		return nil
	}
	return n
}

func cleanList(items []string) []string {
	var out []string
	for _, item := range items {
		if v := strings.TrimSpace(item); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Normalize drops empty strings, non-positive numbers and blank list items.
func (f Filter) Normalize() Filter {
	return Filter{
		SearchPhrase: cleanString(f.SearchPhrase),
		MaxPages:     cleanInt(f.MaxPages),
		MinPages:     cleanInt(f.MinPages),
		Genre:        cleanString(f.Genre),
		YearStart:    cleanInt(f.YearStart),
		YearEnd:      cleanInt(f.YearEnd),
		Language:     cleanString(f.Language),
		Pacing:       cleanString(f.Pacing),
		Tone:         cleanString(f.Tone),
		Themes:       cleanList(f.Themes),
		Moods:        cleanList(f.Moods),
	}
}

// Parse decodes a model reply into a Filter.
func Parse(reply string) (Filter, error) {
	raw, err := llm.ExtractJSONObject(reply)
	if err != nil {
		return Filter{}, err
	}
	var f Filter
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		return Filter{}, fmt.Errorf("%w: %w", llm.ErrMalformedOutput, err)
	}
	return f.Normalize(), nil
}

type Extractor struct {
	llm     llm.LLMProvider
	logger  logger.ILogger
	metrics *metrics.Metrics
	timeout time.Duration
}

func NewExtractor(provider llm.LLMProvider, log logger.ILogger, m *metrics.Metrics, timeout time.Duration) *Extractor {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Extractor{llm: provider, logger: log, metrics: m, timeout: timeout}
}

// Extract never fails: any backend or parse error yields Fallback(query).
func (e *Extractor) Extract(ctx context.Context, query string) Filter {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	reply, err := llm.Complete(ctx, e.llm,
		constant.FilterExtractionPrompt,
		fmt.Sprintf(constant.FilterUserPrompt, query),
		llm.WithJSONFormat(), llm.WithTemperature(0.1), llm.WithMaxTokens(300),
	)
	if err == nil {
		var f Filter
		if f, err = Parse(reply); err == nil {
			e.logger.Debug("FILTER", "Extracted filters", map[string]interface{}{"filter": f.String()})
			return f
		}
	}

	e.metrics.Fallback("filter")
	e.logger.Warn("FILTER", "Filter extraction failed, using raw query", map[string]interface{}{
		"error": err.Error(),
	})
	return Fallback(query)
}
