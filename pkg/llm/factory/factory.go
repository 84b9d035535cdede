package factory

import (
	"fmt"

	"library-assistant-be/internal/config"
	"library-assistant-be/pkg/llm"
	"library-assistant-be/pkg/llm/ollama"
	"library-assistant-be/pkg/llm/openai"
)

func NewLLMProvider(cfg config.AIConfig) (llm.LLMProvider, error) {
	switch cfg.LLMProvider {
	case "ollama", "":
		baseURL := cfg.OllamaBaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, cfg.LLMModel)
	case "openai":
		return openai.NewOpenAIProvider(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.LLMModel)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}
}
