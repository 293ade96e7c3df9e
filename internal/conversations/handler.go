package conversations

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docchat-backend/internal/shared/server/middleware"
	"docchat-backend/internal/shared/server/respond"
)

// Handler wires conversation endpoints to the service.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches conversation routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/conversations")
	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:id", h.get)
	g.DELETE("/:id", h.delete)
	g.POST("/:id/messages", h.addMessage)
	g.POST("/:id/documents", h.linkDocuments)
}

func (h *Handler) list(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	convs, err := h.Svc.List(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err, "failed to list conversations")
		return
	}
	resp := listResponse{Conversations: make([]conversationSummary, 0, len(convs))}
	for _, conv := range convs {
		resp.Conversations = append(resp.Conversations, conversationSummary{
			ID:        conv.ID,
			Title:     conv.Title,
			UpdatedAt: conv.UpdatedAt,
		})
	}
	respond.OK(c, resp)
}

func (h *Handler) create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	conv, err := h.Svc.Create(c.Request.Context(), userID, req.Title)
	if err != nil {
		writeError(c, err, "failed to create conversation")
		return
	}
	c.Set("conversationId", conv.ID)
	respond.JSON(c, http.StatusCreated, createResponse{ID: conv.ID, Title: conv.Title})
}

func (h *Handler) get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id := c.Param("id")
	c.Set("conversationId", id)
	detail, err := h.Svc.Get(c.Request.Context(), userID, id)
	if err != nil {
		writeError(c, err, "failed to fetch conversation")
		return
	}
	respond.OK(c, toDetailResponse(detail))
}

func (h *Handler) delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id := c.Param("id")
	c.Set("conversationId", id)
	if err := h.Svc.Delete(c.Request.Context(), userID, id); err != nil {
		writeError(c, err, "failed to delete conversation")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) addMessage(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id := c.Param("id")
	c.Set("conversationId", id)

	var req addMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respond.Error(c, http.StatusBadRequest, "validation_error", "role and content are required", nil)
		return
	}
	msg, err := h.Svc.AddMessage(c.Request.Context(), userID, id, req.Role, req.Content, req.Attachments)
	if err != nil {
		writeError(c, err, "failed to add message")
		return
	}
	respond.JSON(c, http.StatusCreated, idResponse{ID: msg.ID})
}

func (h *Handler) linkDocuments(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id := c.Param("id")
	c.Set("conversationId", id)

	var req linkRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respond.Error(c, http.StatusBadRequest, "validation_error", "documentIds is required", nil)
		return
	}
	if err := h.Svc.LinkDocuments(c.Request.Context(), userID, id, req.DocumentIDs); err != nil {
		writeError(c, err, "failed to link documents")
		return
	}
	respond.OK(c, gin.H{"ok": true})
}

func requireUser(c *gin.Context) (string, bool) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "Unauthorized", nil)
		return "", false
	}
	return userID, true
}

func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Conversation not found", nil)
	case errors.Is(err, ErrDocumentNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Document not found", nil)
	case errors.Is(err, ErrForbidden):
		respond.Error(c, http.StatusForbidden, "forbidden", "Forbidden", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", strings.TrimPrefix(err.Error(), ErrInvalidInput.Error()+": "), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
