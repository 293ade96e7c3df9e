package qa

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"docchat-backend/internal/llm"
	"docchat-backend/internal/shared/telemetry"
)

const (
	systemPrompt = "You are an assistant that answers questions based only on the provided PDF context."

	defaultMaxContextWords = 90000
	previewChars           = 100
)

// ErrDocumentLookup marks failures reading the document, as opposed to the upstream call.
var (
	ErrQuestionRequired = errors.New("question is required")
	ErrMessagesRequired = errors.New("messages array is required")
	ErrDocumentLookup   = errors.New("document lookup failed")
)

// DocumentText reads the stored text of a document owned by userID.
type DocumentText interface {
	Text(ctx context.Context, userID, documentID string) (string, error)
}

// Service answers questions about stored documents via an upstream chat model.
type Service struct {
	Docs            DocumentText
	LLM             llm.ChatClient
	Model           string
	ChatModel       string
	MaxContextWords int
}

// Ask builds a context+question prompt from the document text and returns the model's answer.
func (s *Service) Ask(ctx context.Context, userID, documentID, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", ErrQuestionRequired
	}

	text, err := s.Docs.Text(ctx, userID, documentID)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDocumentLookup, err)
	}

	docContext := TruncateWords(text, s.maxContextWords())
	telemetry.Info("qa.input", map[string]any{
		"documentId":     documentID,
		"userId":         userID,
		"originalChars":  len([]rune(strings.TrimSpace(text))),
		"truncatedChars": len([]rune(docContext)),
		"questionChars":  len([]rune(question)),
		"model":          s.Model,
	})
	telemetry.Debug("qa.context", map[string]any{
		"documentId": documentID,
		"head":       preview(docContext),
	})

	start := time.Now()
	answer, err := s.LLM.Complete(ctx, s.Model, BuildMessages(docContext, question))
	if err != nil {
		return "", err
	}
	telemetry.Info("qa.output", map[string]any{
		"documentId":  documentID,
		"answerChars": len([]rune(answer)),
		"durationMs":  time.Since(start).Milliseconds(),
	})
	return answer, nil
}

// Chat forwards a caller-built conversation unchanged. model falls back to ChatModel.
func (s *Service) Chat(ctx context.Context, messages []llm.Message, model string) (string, error) {
	if len(messages) == 0 {
		return "", ErrMessagesRequired
	}
	if strings.TrimSpace(model) == "" {
		model = s.ChatModel
	}
	return s.LLM.Complete(ctx, model, messages)
}

// BuildMessages returns the two-message prompt used for document questions.
func BuildMessages(docContext, question string) []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleUser, Content: "Context:\n" + docContext + "\n\nQuestion: " + question},
	}
}

func (s *Service) maxContextWords() int {
	if s.MaxContextWords > 0 {
		return s.MaxContextWords
	}
	return defaultMaxContextWords
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewChars {
		return text
	}
	return string(runes[:previewChars]) + "..."
}
