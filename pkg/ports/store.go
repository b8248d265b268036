package ports

import (
	"context"

	"github.com/aurida/helpline/pkg/domain"
)

// CheckpointStore persists conversation state between turns. At most one
// checkpoint exists per conversation id; Save is last-write-wins.
//
// The core issues operations for a single id sequentially; cross-id
// operations may run concurrently.
type CheckpointStore interface {
	// Save overwrites the checkpoint for the conversation id.
	Save(ctx context.Context, conversationID string, state *domain.ConversationState) error

	// Load returns the most recent checkpoint.
	// Returns domain.ErrConversationNotFound for unknown ids.
	Load(ctx context.Context, conversationID string) (*domain.ConversationState, error)

	// Delete removes the checkpoint for the conversation id.
	Delete(ctx context.Context, conversationID string) error

	// List returns the ids of all stored conversations.
	List(ctx context.Context) ([]string, error)
}
