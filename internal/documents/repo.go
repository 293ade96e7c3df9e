package documents

import (
	"context"
	"errors"
)

var (
	ErrNotFound     = errors.New("document not found")
	ErrInvalidInput = errors.New("invalid input")
)

// DocumentsRepo defines persistence operations for documents.
// Reads other than GetText leave TextContent empty.
type DocumentsRepo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, userID, documentID string) (Document, error)
	GetText(ctx context.Context, userID, documentID string) (string, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Document, error)
	OwnersByIDs(ctx context.Context, documentIDs []string) (map[string]string, error)
}
