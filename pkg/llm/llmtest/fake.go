// Package llmtest provides a scripted LLMProvider for tests.
package llmtest

import (
	"context"
	"sync"

	"library-assistant-be/pkg/llm"
)

// Call records one request made to the fake.
type Call struct {
	History []llm.Message
	Options llm.Options
	Stream  bool
}

// Provider replays Reply for Chat and Chunks for ChatStream. When StreamErr is
// set, it is returned after all Chunks are delivered.
type Provider struct {
	Reply     string
	ChatErr   error
	Chunks    []string
	StreamErr error

	// ReplyFor, when set, overrides Reply based on the system prompt.
	ReplyFor func(system string) (string, error)

	mu    sync.Mutex
	calls []Call
}

var _ llm.LLMProvider = &Provider{}

func (p *Provider) record(history []llm.Message, opts []llm.Option, stream bool) {
	options := llm.ApplyOptions(0, opts...)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, Call{History: append([]llm.Message(nil), history...), Options: *options, Stream: stream})
}

func (p *Provider) Calls() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Call(nil), p.calls...)
}

func (p *Provider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	p.record(history, opts, false)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if p.ReplyFor != nil {
		system := ""
		if len(history) > 0 && history[0].Role == llm.RoleSystem {
			system = history[0].Content
		}
		return p.ReplyFor(system)
	}
	return p.Reply, p.ChatErr
}

func (p *Provider) ChatStream(ctx context.Context, history []llm.Message, onChunk llm.ChunkHandler, opts ...llm.Option) error {
	p.record(history, opts, true)
	for _, chunk := range p.Chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := onChunk(chunk); err != nil {
			return err
		}
	}
	return p.StreamErr
}
