package intent

import (
	"context"
	"errors"
	"testing"

	"library-assistant-be/internal/pkg/logger"
	"library-assistant-be/pkg/llm"
	"library-assistant-be/pkg/llm/llmtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name       string
		reply      string
		wantType   Type
		wantTarget string
		wantErr    bool
	}{
		{"generic", `{"intent": "generic", "target_book": null}`, Generic, "", false},
		{"similarity with target", `{"intent": "similarity", "target_book": "Dune"}`, Similarity, "Dune", false},
		{"case and whitespace", `{"intent": "  Similarity ", "target_book": " Rebecca "}`, Similarity, "Rebecca", false},
		{"similarity without target", `{"intent": "similarity", "target_book": ""}`, Similarity, "", false},
		{"target ignored for filtered", `{"intent": "filtered", "target_book": "Dune"}`, Filtered, "", false},
		{"fenced", "```json\n{\"intent\":\"filtered\"}\n```", Filtered, "", false},
		{"unknown tag", `{"intent": "chitchat"}`, "", "", true},
		{"no json", `generic`, "", "", true},
		{"wrong type", `{"intent": 3}`, "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.reply)
			if tt.wantErr {
				assert.True(t, errors.Is(err, llm.ErrMalformedOutput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, got.Type)
			if tt.wantTarget == "" {
				assert.Nil(t, got.TargetBook)
			} else {
				require.NotNil(t, got.TargetBook)
				assert.Equal(t, tt.wantTarget, *got.TargetBook)
			}
		})
	}
}

func TestClassifyScenarios(t *testing.T) {
	tests := []struct {
		name  string
		query string
		reply string
		want  Type
	}{
		{"similar to a title", "anything similar to Project Hail Mary?", `{"intent":"similarity","target_book":"Project Hail Mary"}`, Similarity},
		{"open recommendation", "recommend me something", `{"intent":"generic","target_book":null}`, Generic},
		{"criteria", "mystery novels under 300 pages", `{"intent":"filtered","target_book":null}`, Filtered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &llmtest.Provider{Reply: tt.reply}
			c := NewClassifier(provider, logger.NewNopLogger(), nil, 0)

			got := c.Classify(context.Background(), tt.query)
			assert.Equal(t, tt.want, got.Type)

			calls := provider.Calls()
			require.Len(t, calls, 1)
			assert.True(t, calls[0].Options.JSON)
			assert.Contains(t, calls[0].History[1].Content, tt.query)
		})
	}
}

func TestClassifyFallsBackToFiltered(t *testing.T) {
	tests := []struct {
		name     string
		provider *llmtest.Provider
	}{
		{"backend down", &llmtest.Provider{ChatErr: llm.ErrBackendUnavailable}},
		{"garbage", &llmtest.Provider{Reply: "I think they want books"}},
		{"bad tag", &llmtest.Provider{Reply: `{"intent":"greeting"}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassifier(tt.provider, logger.NewNopLogger(), nil, 0)
			got := c.Classify(context.Background(), "hello there")
			assert.Equal(t, Default(), got)
			assert.Equal(t, Filtered, got.Type)
			assert.Nil(t, got.TargetBook)
			assert.Len(t, tt.provider.Calls(), 1)
		})
	}
}
