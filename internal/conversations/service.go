package conversations

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"docchat-backend/internal/shared/telemetry"
)

// DocumentOwners resolves document IDs to their owning user IDs. Unknown IDs are absent.
type DocumentOwners interface {
	OwnersByIDs(ctx context.Context, documentIDs []string) (map[string]string, error)
}

// Service implements conversation operations scoped to the calling user.
type Service struct {
	Repo Repo
	Docs DocumentOwners

	now func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repo, docs DocumentOwners) *Service {
	return &Service{Repo: repo, Docs: docs}
}

func (s *Service) List(ctx context.Context, userID string) ([]Conversation, error) {
	return s.Repo.ListByUser(ctx, userID)
}

// Create starts a conversation seeded with the assistant greeting.
func (s *Service) Create(ctx context.Context, userID, title string) (Conversation, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultTitle
	}
	now := s.clock()
	conv := Conversation{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	greeting := Message{
		ID:             uuid.NewString(),
		ConversationID: conv.ID,
		Role:           RoleAssistant,
		Content:        Greeting,
		CreatedAt:      now,
	}
	if err := s.Repo.Create(ctx, conv, greeting); err != nil {
		return Conversation{}, err
	}
	telemetry.Info("conversation.created", map[string]any{"conversationId": conv.ID, "userId": userID})
	return conv, nil
}

func (s *Service) Get(ctx context.Context, userID, conversationID string) (Detail, error) {
	conv, err := s.owned(ctx, userID, conversationID)
	if err != nil {
		return Detail{}, err
	}
	messages, err := s.Repo.Messages(ctx, conv.ID)
	if err != nil {
		return Detail{}, err
	}
	documentIDs, err := s.Repo.DocumentIDs(ctx, conv.ID)
	if err != nil {
		return Detail{}, err
	}
	return Detail{Conversation: conv, Messages: messages, DocumentIDs: documentIDs}, nil
}

func (s *Service) Delete(ctx context.Context, userID, conversationID string) error {
	if _, err := uuid.Parse(conversationID); err != nil {
		return ErrNotFound
	}
	if err := s.Repo.Delete(ctx, userID, conversationID); err != nil {
		return err
	}
	telemetry.Info("conversation.deleted", map[string]any{"conversationId": conversationID, "userId": userID})
	return nil
}

// AddMessage appends a message and bumps the conversation's updated time.
func (s *Service) AddMessage(ctx context.Context, userID, conversationID, role, content string, attachments json.RawMessage) (Message, error) {
	conv, err := s.owned(ctx, userID, conversationID)
	if err != nil {
		return Message{}, err
	}
	if role == "" || content == "" {
		return Message{}, fmt.Errorf("%w: role and content are required", ErrInvalidInput)
	}
	if !validRole(role) {
		return Message{}, fmt.Errorf("%w: role must be user or assistant", ErrInvalidInput)
	}
	if len(attachments) > 0 && string(attachments) == "null" {
		attachments = nil
	}

	msg := Message{
		ID:             uuid.NewString(),
		ConversationID: conv.ID,
		Role:           role,
		Content:        content,
		Attachments:    attachments,
		CreatedAt:      s.clock(),
	}
	if err := s.Repo.AddMessage(ctx, msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}

// LinkDocuments links documents the caller owns. Any document owned by another user
// rejects the whole request; unknown IDs are reported as missing.
func (s *Service) LinkDocuments(ctx context.Context, userID, conversationID string, documentIDs []string) error {
	conv, err := s.owned(ctx, userID, conversationID)
	if err != nil {
		return err
	}
	if documentIDs == nil {
		return fmt.Errorf("%w: documentIds is required", ErrInvalidInput)
	}

	ids := dedupe(documentIDs)
	if len(ids) == 0 {
		return nil
	}
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return ErrDocumentNotFound
		}
	}

	owners, err := s.Docs.OwnersByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, id := range ids {
		owner, ok := owners[id]
		if ok && owner != userID {
			telemetry.Warn("conversation.link.forbidden", map[string]any{
				"conversationId": conv.ID,
				"documentId":     id,
				"userId":         userID,
			})
			return ErrForbidden
		}
	}
	for _, id := range ids {
		if _, ok := owners[id]; !ok {
			return ErrDocumentNotFound
		}
	}

	return s.Repo.LinkDocuments(ctx, conv.ID, ids, s.clock())
}

func (s *Service) owned(ctx context.Context, userID, conversationID string) (Conversation, error) {
	if _, err := uuid.Parse(conversationID); err != nil {
		return Conversation{}, ErrNotFound
	}
	return s.Repo.Get(ctx, userID, conversationID)
}

func (s *Service) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now().UTC()
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
