package qa

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docchat-backend/internal/documents"
	"docchat-backend/internal/llm"
	"docchat-backend/internal/shared/server/middleware"
	"docchat-backend/internal/shared/server/respond"
)

// Handler exposes the question-answering and chat passthrough endpoints.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches qa routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents/:id/ask", h.ask)
	rg.POST("/chat", h.chat)
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

type chatRequest struct {
	Messages []llm.Message `json:"messages"`
	Model    string        `json:"model"`
}

type chatResponse struct {
	Response string `json:"response"`
}

func (h *Handler) ask(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "Unauthorized", nil)
		return
	}
	documentID := c.Param("id")
	c.Set("documentId", documentID)

	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Question is required", nil)
		return
	}

	answer, err := h.Svc.Ask(c.Request.Context(), userID, documentID, req.Question)
	if err != nil {
		switch {
		case errors.Is(err, ErrQuestionRequired):
			respond.Error(c, http.StatusBadRequest, "validation_error", "Question is required", nil)
		case errors.Is(err, documents.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "Document not found", nil)
		case errors.Is(err, ErrDocumentLookup):
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load document", nil)
		default:
			writeUpstreamError(c, err)
		}
		return
	}
	respond.OK(c, askResponse{Answer: answer})
}

func (h *Handler) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Messages) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Messages array is required", nil)
		return
	}

	answer, err := h.Svc.Chat(c.Request.Context(), req.Messages, req.Model)
	if err != nil {
		if errors.Is(err, ErrMessagesRequired) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "Messages array is required", nil)
			return
		}
		writeUpstreamError(c, err)
		return
	}
	respond.OK(c, chatResponse{Response: answer})
}

func writeUpstreamError(c *gin.Context, err error) {
	var upErr *llm.UpstreamError
	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		respond.Error(c, http.StatusInternalServerError, "llm_not_configured", "Groq API key not configured", nil)
	case errors.As(err, &upErr):
		respond.UpstreamError(c, http.StatusBadGateway, "upstream_error", "Groq API error", upErr.Body)
	default:
		respond.Error(c, http.StatusBadGateway, "upstream_unavailable", "Groq API unavailable", nil)
	}
}
