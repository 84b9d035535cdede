package llm

import (
	"context"
	"errors"
)

var (
	// ErrBackendUnavailable wraps transport failures and non-2xx replies.
	ErrBackendUnavailable = errors.New("completion backend unavailable")
	// ErrMalformedOutput marks replies that do not decode into the expected shape.
	ErrMalformedOutput = errors.New("malformed completion output")
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
	JSON        bool   // Ask the backend for a JSON-only reply
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithJSONFormat() Option {
	return func(o *Options) {
		o.JSON = true
	}
}

// ApplyOptions resolves opts over the given default temperature.
func ApplyOptions(defaultTemperature float64, opts ...Option) *Options {
	options := &Options{Temperature: defaultTemperature}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// ChunkHandler receives streamed text fragments in order. Returning an error aborts the stream.
type ChunkHandler func(chunk string) error

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the full response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// ChatStream sends a chat history and delivers the response fragment by fragment
	ChatStream(ctx context.Context, history []Message, onChunk ChunkHandler, options ...Option) error
}

// Complete runs a single blocking system+user exchange.
func Complete(ctx context.Context, p LLMProvider, systemPrompt, userPrompt string, options ...Option) (string, error) {
	history := []Message{
		{Role: RoleSystem, Content: systemPrompt},
		{Role: RoleUser, Content: userPrompt},
	}
	return p.Chat(ctx, history, options...)
}
