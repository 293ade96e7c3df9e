package conversations

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound         = errors.New("conversation not found")
	ErrForbidden        = errors.New("forbidden")
	ErrInvalidInput     = errors.New("invalid input")
	ErrDocumentNotFound = errors.New("document not found")
)

// Repo persists conversations, their messages and document links.
// Methods taking userID treat conversations owned by someone else as missing.
type Repo interface {
	// Create stores a conversation together with its first message.
	Create(ctx context.Context, conv Conversation, first Message) error
	ListByUser(ctx context.Context, userID string) ([]Conversation, error)
	Get(ctx context.Context, userID, conversationID string) (Conversation, error)
	Messages(ctx context.Context, conversationID string) ([]Message, error)
	DocumentIDs(ctx context.Context, conversationID string) ([]string, error)
	Delete(ctx context.Context, userID, conversationID string) error
	// AddMessage appends msg and sets the conversation's updated_at to msg.CreatedAt.
	AddMessage(ctx context.Context, msg Message) error
	// LinkDocuments records links; existing links are left untouched.
	LinkDocuments(ctx context.Context, conversationID string, documentIDs []string, at time.Time) error
}
