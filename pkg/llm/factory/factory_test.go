package factory

import (
	"testing"

	"library-assistant-be/internal/config"
	"library-assistant-be/pkg/llm/ollama"
	"library-assistant-be/pkg/llm/openai"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLLMProvider(t *testing.T) {
	p, err := NewLLMProvider(config.AIConfig{LLMProvider: "ollama", LLMModel: "qwen"})
	require.NoError(t, err)
	assert.IsType(t, &ollama.OllamaProvider{}, p)

	p, err = NewLLMProvider(config.AIConfig{LLMProvider: "openai", LLMModel: "gpt-4o-mini", OpenAIAPIKey: "sk-test"})
	require.NoError(t, err)
	assert.IsType(t, &openai.OpenAIProvider{}, p)

	_, err = NewLLMProvider(config.AIConfig{LLMProvider: "openai"})
	assert.Error(t, err)

	_, err = NewLLMProvider(config.AIConfig{LLMProvider: "gemini"})
	assert.EqualError(t, err, "unsupported LLM provider: gemini")
}
