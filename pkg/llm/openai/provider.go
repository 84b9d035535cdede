package openai

import (
	"context"
	"errors"
	"fmt"

	"library-assistant-be/pkg/llm"

	"github.com/tmc/langchaingo/llms"
	lcopenai "github.com/tmc/langchaingo/llms/openai"
)

// OpenAIProvider talks to any OpenAI-compatible chat endpoint through langchaingo.
type OpenAIProvider struct {
	model     llms.Model
	ModelName string
}

var _ llm.LLMProvider = &OpenAIProvider{}

func NewOpenAIProvider(baseURL, apiKey, modelName string) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key required")
	}
	opts := []lcopenai.Option{
		lcopenai.WithToken(apiKey),
		lcopenai.WithModel(modelName),
	}
	if baseURL != "" {
		opts = append(opts, lcopenai.WithBaseURL(baseURL))
	}
	model, err := lcopenai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create openai model: %w", err)
	}
	return &OpenAIProvider{model: model, ModelName: modelName}, nil
}

func toMessageContent(history []llm.Message) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(history))
	for _, msg := range history {
		role := llms.ChatMessageTypeHuman
		switch msg.Role {
		case llm.RoleSystem:
			role = llms.ChatMessageTypeSystem
		case llm.RoleAssistant, "model":
			role = llms.ChatMessageTypeAI
		}
		out = append(out, llms.TextParts(role, msg.Content))
	}
	return out
}

func callOptions(options *llm.Options) []llms.CallOption {
	callOpts := []llms.CallOption{llms.WithTemperature(options.Temperature)}
	if options.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(options.MaxTokens))
	}
	if options.Model != "" {
		callOpts = append(callOpts, llms.WithModel(options.Model))
	}
	if options.JSON {
		callOpts = append(callOpts, llms.WithJSONMode())
	}
	return callOpts
}

func (p *OpenAIProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.ApplyOptions(0.7, opts...)
	resp, err := p.model.GenerateContent(ctx, toMessageContent(history), callOptions(options)...)
	if err != nil {
		return "", fmt.Errorf("%w: %w", llm.ErrBackendUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no response choices", llm.ErrMalformedOutput)
	}
	return resp.Choices[0].Content, nil
}

func (p *OpenAIProvider) ChatStream(ctx context.Context, history []llm.Message, onChunk llm.ChunkHandler, opts ...llm.Option) error {
	options := llm.ApplyOptions(0.7, opts...)

	var handlerErr error
	callOpts := append(callOptions(options), llms.WithStreamingFunc(func(_ context.Context, chunk []byte) error {
		if len(chunk) == 0 {
			return nil
		}
		if err := onChunk(string(chunk)); err != nil {
			handlerErr = err
			return err
		}
		return nil
	}))

	_, err := p.model.GenerateContent(ctx, toMessageContent(history), callOpts...)
	if handlerErr != nil {
		return handlerErr
	}
	if err != nil {
		if errors.Is(err, llm.ErrBackendUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %w", llm.ErrBackendUnavailable, err)
	}
	return nil
}
