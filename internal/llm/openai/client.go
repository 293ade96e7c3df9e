package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"docchat-backend/internal/llm"
	"docchat-backend/internal/shared/metrics"
	"docchat-backend/internal/shared/telemetry"
)

const defaultBaseURL = "https://api.groq.com/openai/v1"

// maxErrorBody bounds how much of a failed upstream reply is kept.
const maxErrorBody = 64 << 10

// Client implements llm.ChatClient against an OpenAI-compatible Chat Completions API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a client. An empty apiKey is allowed; calls then fail with
// llm.ErrNotConfigured.
func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != ""
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []llm.Message `json:"messages"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message llm.Message `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
}

// Complete posts messages to {base}/chat/completions. No retries are attempted.
func (c *Client) Complete(ctx context.Context, model string, messages []llm.Message) (string, error) {
	if !c.Configured() {
		return "", llm.ErrNotConfigured
	}

	start := time.Now()
	content, err := c.complete(ctx, model, messages)
	elapsed := time.Since(start)

	fields := map[string]any{
		"model":      model,
		"messages":   len(messages),
		"durationMs": elapsed.Milliseconds(),
	}
	if err != nil {
		var upErr *llm.UpstreamError
		if errors.As(err, &upErr) {
			fields["status"] = upErr.StatusCode
			metrics.ObserveLLM("upstream_error", elapsed)
		} else {
			metrics.ObserveLLM("transport_error", elapsed)
		}
		fields["err"] = err
		telemetry.Error("llm.error", fields)
		return "", err
	}
	metrics.ObserveLLM("ok", elapsed)
	fields["answerChars"] = len(content)
	telemetry.Info("llm.done", fields)
	return content, nil
}

func (c *Client) complete(ctx context.Context, model string, messages []llm.Message) (string, error) {
	payload, err := json.Marshal(chatRequest{Model: model, Messages: messages})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return "", fmt.Errorf("llm request timeout: %w", err)
		}
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &llm.UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("llm response parse: %w", err)
	}
	if parsed.Usage != nil {
		telemetry.Debug("llm.usage", map[string]any{
			"model":            model,
			"promptTokens":     parsed.Usage.PromptTokens,
			"completionTokens": parsed.Usage.CompletionTokens,
			"totalTokens":      parsed.Usage.TotalTokens,
		})
	}
	if len(parsed.Choices) == 0 {
		return "", nil
	}
	return parsed.Choices[0].Message.Content, nil
}

var _ llm.ChatClient = (*Client)(nil)
