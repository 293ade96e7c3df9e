package llm

import (
	"context"
	"errors"
	"fmt"
)

// Message roles understood by chat-completion endpoints.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrNotConfigured is returned before any network I/O when no API credential is set.
var ErrNotConfigured = errors.New("llm api key not configured")

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatClient sends a conversation to an upstream chat-completion service and returns the
// first choice's content, or "" when the upstream returned no choices.
type ChatClient interface {
	Complete(ctx context.Context, model string, messages []Message) (string, error)
}

// UpstreamError is a non-2xx reply from the upstream service. Body is kept verbatim.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.StatusCode)
}
