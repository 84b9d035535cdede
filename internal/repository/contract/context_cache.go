package contract

import "context"

// ContextCache keeps the last grounding context built for a chat session.
type ContextCache interface {
	Get(ctx context.Context, sessionID string) (string, bool, error)
	Save(ctx context.Context, sessionID, contextBlock string) error
}
