package documents

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of DocumentsRepo.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Document
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID: make(map[string]Document),
	}
}

// Create stores a document.
func (r *MemoryRepo) Create(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[doc.ID] = doc
	return nil
}

// GetByID returns a document's metadata by ID for its owner.
func (r *MemoryRepo) GetByID(ctx context.Context, userID, documentID string) (Document, error) {
	doc, err := r.get(ctx, userID, documentID)
	if err != nil {
		return Document{}, err
	}
	doc.TextContent = ""
	return doc, nil
}

// GetText returns the stored text of a document for its owner.
func (r *MemoryRepo) GetText(ctx context.Context, userID, documentID string) (string, error) {
	doc, err := r.get(ctx, userID, documentID)
	if err != nil {
		return "", err
	}
	return doc.TextContent, nil
}

func (r *MemoryRepo) get(ctx context.Context, userID, documentID string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.byID[documentID]
	if !ok || doc.UserID != userID {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

// ListByUser returns documents for a user, newest first, honoring limit/offset.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	r.mu.RLock()
	docs := make([]Document, 0)
	for _, doc := range r.byID {
		if doc.UserID == userID {
			doc.TextContent = ""
			docs = append(docs, doc)
		}
	}
	r.mu.RUnlock()

	if offset >= len(docs) {
		return []Document{}, nil
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})

	end := len(docs)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return docs[offset:end], nil
}

// OwnersByIDs maps each known document ID to its owner. Unknown IDs are omitted.
func (r *MemoryRepo) OwnersByIDs(ctx context.Context, documentIDs []string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	owners := make(map[string]string, len(documentIDs))
	for _, id := range documentIDs {
		if doc, ok := r.byID[id]; ok {
			owners[id] = doc.UserID
		}
	}
	return owners, nil
}

var _ DocumentsRepo = (*MemoryRepo)(nil)
