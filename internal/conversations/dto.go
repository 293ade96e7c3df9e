package conversations

import (
	"encoding/json"
	"time"
)

type conversationSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type listResponse struct {
	Conversations []conversationSummary `json:"conversations"`
}

type createRequest struct {
	Title string `json:"title"`
}

type createResponse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type messageResponse struct {
	ID          string          `json:"id"`
	Role        string          `json:"role"`
	Content     string          `json:"content"`
	Attachments json.RawMessage `json:"attachments,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type detailResponse struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Messages    []messageResponse `json:"messages"`
	DocumentIDs []string          `json:"documentIds"`
}

type addMessageRequest struct {
	Role        string          `json:"role"`
	Content     string          `json:"content"`
	Attachments json.RawMessage `json:"attachments"`
}

type idResponse struct {
	ID string `json:"id"`
}

type linkRequest struct {
	DocumentIDs []string `json:"documentIds"`
}

func toDetailResponse(d Detail) detailResponse {
	messages := make([]messageResponse, 0, len(d.Messages))
	for _, msg := range d.Messages {
		messages = append(messages, messageResponse{
			ID:          msg.ID,
			Role:        msg.Role,
			Content:     msg.Content,
			Attachments: msg.Attachments,
			CreatedAt:   msg.CreatedAt,
		})
	}
	documentIDs := d.DocumentIDs
	if documentIDs == nil {
		documentIDs = []string{}
	}
	return detailResponse{
		ID:          d.Conversation.ID,
		Title:       d.Conversation.Title,
		Messages:    messages,
		DocumentIDs: documentIDs,
	}
}
