package conversations

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu       sync.RWMutex
	convs    map[string]Conversation
	messages map[string][]Message
	links    map[string][]string
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		convs:    make(map[string]Conversation),
		messages: make(map[string][]Message),
		links:    make(map[string][]string),
	}
}

func (r *MemoryRepo) Create(ctx context.Context, conv Conversation, first Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.convs[conv.ID] = conv
	r.messages[conv.ID] = []Message{cloneMessage(first)}
	return nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]Conversation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Conversation, 0)
	for _, conv := range r.convs {
		if conv.UserID == userID {
			out = append(out, conv)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (r *MemoryRepo) Get(ctx context.Context, userID, conversationID string) (Conversation, error) {
	if err := ctx.Err(); err != nil {
		return Conversation{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	conv, ok := r.convs[conversationID]
	if !ok || conv.UserID != userID {
		return Conversation{}, ErrNotFound
	}
	return conv, nil
}

func (r *MemoryRepo) Messages(ctx context.Context, conversationID string) ([]Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	src := r.messages[conversationID]
	out := make([]Message, 0, len(src))
	for _, msg := range src {
		out = append(out, cloneMessage(msg))
	}
	return out, nil
}

func (r *MemoryRepo) DocumentIDs(ctx context.Context, conversationID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string{}, r.links[conversationID]...), nil
}

func (r *MemoryRepo) Delete(ctx context.Context, userID, conversationID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	conv, ok := r.convs[conversationID]
	if !ok || conv.UserID != userID {
		return ErrNotFound
	}
	delete(r.messages, conversationID)
	delete(r.links, conversationID)
	delete(r.convs, conversationID)
	return nil
}

func (r *MemoryRepo) AddMessage(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	conv, ok := r.convs[msg.ConversationID]
	if !ok {
		return ErrNotFound
	}
	r.messages[msg.ConversationID] = append(r.messages[msg.ConversationID], cloneMessage(msg))
	conv.UpdatedAt = msg.CreatedAt
	r.convs[conv.ID] = conv
	return nil
}

func (r *MemoryRepo) LinkDocuments(ctx context.Context, conversationID string, documentIDs []string, _ time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.convs[conversationID]; !ok {
		return ErrNotFound
	}
	existing := r.links[conversationID]
	seen := make(map[string]struct{}, len(existing))
	for _, id := range existing {
		seen[id] = struct{}{}
	}
	for _, id := range documentIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		existing = append(existing, id)
	}
	r.links[conversationID] = existing
	return nil
}

func cloneMessage(msg Message) Message {
	if msg.Attachments != nil {
		msg.Attachments = append([]byte(nil), msg.Attachments...)
	}
	return msg
}
