package conversations

import (
	"encoding/json"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	DefaultTitle = "New chat"
	Greeting     = "Hi! How can I help you today?"
)

// Conversation is a chat transcript owned by one user.
type Conversation struct {
	ID        string
	UserID    string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Message is one turn of a conversation. Attachments is opaque client JSON.
type Message struct {
	ID             string
	ConversationID string
	Role           string
	Content        string
	Attachments    json.RawMessage
	CreatedAt      time.Time
}

// Detail is a conversation with its messages (oldest first) and linked document IDs.
type Detail struct {
	Conversation Conversation
	Messages     []Message
	DocumentIDs  []string
}

func validRole(role string) bool {
	return role == RoleUser || role == RoleAssistant
}
