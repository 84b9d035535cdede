package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"library-assistant-be/pkg/llm"

	"github.com/ollama/ollama/api"
)

type OllamaProvider struct {
	client    *api.Client
	ModelName string
}

// Ensure OllamaProvider implements LLMProvider
var _ llm.LLMProvider = &OllamaProvider{}

func NewOllamaProvider(baseURL, modelName string) (*OllamaProvider, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama url: %w", err)
	}
	return &OllamaProvider{
		client: api.NewClient(u, &http.Client{
			Timeout: 120 * time.Second,
		}),
		ModelName: modelName,
	}, nil
}

func (o *OllamaProvider) buildRequest(history []llm.Message, options *llm.Options, stream bool) *api.ChatRequest {
	messages := make([]api.Message, len(history))
	for i, msg := range history {
		role := msg.Role
		if role == "model" {
			role = llm.RoleAssistant
		}
		messages[i] = api.Message{Role: role, Content: msg.Content}
	}

	model := o.ModelName
	if options.Model != "" {
		model = options.Model
	}

	req := &api.ChatRequest{
		Model:    model,
		Messages: messages,
		Stream:   &stream,
		Options: map[string]any{
			"temperature": options.Temperature,
		},
	}
	if options.MaxTokens > 0 {
		req.Options["num_predict"] = options.MaxTokens
	}
	if options.JSON {
		req.Format = json.RawMessage(`"json"`)
	}
	return req
}

func (o *OllamaProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.ApplyOptions(0.7, opts...)
	req := o.buildRequest(history, options, false)

	var sb strings.Builder
	err := o.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		sb.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", classify(err)
	}
	return sb.String(), nil
}

func (o *OllamaProvider) ChatStream(ctx context.Context, history []llm.Message, onChunk llm.ChunkHandler, opts ...llm.Option) error {
	options := llm.ApplyOptions(0.7, opts...)
	req := o.buildRequest(history, options, true)

	var handlerErr error
	err := o.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		if resp.Message.Content == "" {
			return nil
		}
		if err := onChunk(resp.Message.Content); err != nil {
			handlerErr = err
			return err
		}
		return nil
	})
	if handlerErr != nil {
		return handlerErr
	}
	if err != nil {
		return classify(err)
	}
	return nil
}

func classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", llm.ErrBackendUnavailable, err)
	}
	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		return fmt.Errorf("%w: ollama status %d: %s", llm.ErrBackendUnavailable, statusErr.StatusCode, statusErr.ErrorMessage)
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return fmt.Errorf("%w: %w", llm.ErrMalformedOutput, err)
	}
	return fmt.Errorf("%w: %w", llm.ErrBackendUnavailable, err)
}
