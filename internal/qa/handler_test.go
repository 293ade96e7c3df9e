package qa

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"docchat-backend/internal/llm"
)

type failingDocs struct {
	err error
}

func (f failingDocs) Text(context.Context, string, string) (string, error) {
	return "", f.err
}

func newTestRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userId", "u1")
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func postJSON(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

type errorPayload struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Detail  string `json:"detail"`
	} `json:"error"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var payload errorPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload
}

func TestAskHandlerStatuses(t *testing.T) {
	docs := &stubDocs{texts: map[string]string{"u1/d1": "some text"}}

	t.Run("ok", func(t *testing.T) {
		r := newTestRouter(newTestService(docs, &stubLLM{answer: "yes"}))
		rec := postJSON(r, "/api/v1/documents/d1/ask", `{"question":"ok?"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, `{"answer":"yes"}`, rec.Body.String())
	})

	t.Run("missing question", func(t *testing.T) {
		r := newTestRouter(newTestService(docs, &stubLLM{}))
		rec := postJSON(r, "/api/v1/documents/d1/ask", `{}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "Question is required", decodeError(t, rec).Error.Message)
	})

	t.Run("unknown document", func(t *testing.T) {
		r := newTestRouter(newTestService(docs, &stubLLM{}))
		rec := postJSON(r, "/api/v1/documents/nope/ask", `{"question":"q"}`)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("document store failure is internal", func(t *testing.T) {
		client := &stubLLM{}
		svc := newTestService(docs, client)
		svc.Docs = failingDocs{err: errors.New("connection refused")}
		r := newTestRouter(svc)
		rec := postJSON(r, "/api/v1/documents/d1/ask", `{"question":"q"}`)
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.Equal(t, "internal_error", decodeError(t, rec).Error.Code)
		require.Zero(t, client.calls)
	})

	t.Run("not configured", func(t *testing.T) {
		r := newTestRouter(newTestService(docs, &stubLLM{err: llm.ErrNotConfigured}))
		rec := postJSON(r, "/api/v1/documents/d1/ask", `{"question":"q"}`)
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.Equal(t, "Groq API key not configured", decodeError(t, rec).Error.Message)
	})

	t.Run("upstream error carries body", func(t *testing.T) {
		upErr := &llm.UpstreamError{StatusCode: 429, Body: `{"error":"rate"}`}
		r := newTestRouter(newTestService(docs, &stubLLM{err: upErr}))
		rec := postJSON(r, "/api/v1/documents/d1/ask", `{"question":"q"}`)
		require.Equal(t, http.StatusBadGateway, rec.Code)
		payload := decodeError(t, rec)
		require.Equal(t, "Groq API error", payload.Error.Message)
		require.Equal(t, `{"error":"rate"}`, payload.Error.Detail)
	})
}

func TestChatHandler(t *testing.T) {
	client := &stubLLM{answer: "pong"}
	r := newTestRouter(newTestService(&stubDocs{}, client))

	rec := postJSON(r, "/api/v1/chat", `{"messages":[{"role":"user","content":"ping"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"response":"pong"}`, rec.Body.String())
	require.Equal(t, "chat-model", client.model)

	rec = postJSON(r, "/api/v1/chat", `{"messages":[]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Messages array is required", decodeError(t, rec).Error.Message)
}
