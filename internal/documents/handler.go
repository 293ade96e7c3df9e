package documents

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"docchat-backend/internal/extract"
	"docchat-backend/internal/shared/server/middleware"
	"docchat-backend/internal/shared/server/respond"
	"docchat-backend/internal/uploads"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc    *Service
	Intake *uploads.Intake
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, intake *uploads.Intake) *Handler {
	return &Handler{Svc: svc, Intake: intake}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents/upload", h.upload)
	rg.GET("/documents/:id", h.get)
	rg.GET("/documents", h.list)
}

func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "Unauthorized", nil)
		return
	}

	file, err := h.Intake.Receive(c.Request.Context(), c.Request)
	if err != nil {
		switch {
		case errors.Is(err, uploads.ErrTooLarge):
			respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "File too large", gin.H{"maxBytes": h.Intake.MaxBytes})
		case errors.Is(err, uploads.ErrUnsupportedFormat):
			respond.Error(c, http.StatusUnsupportedMediaType, "unsupported_media_type", "Unsupported file type", nil)
		case errors.Is(err, uploads.ErrMissingFile):
			respond.Error(c, http.StatusBadRequest, "validation_error", "No file uploaded", nil)
		case errors.Is(err, uploads.ErrUnexpectedField):
			respond.Error(c, http.StatusBadRequest, "validation_error", "Upload the document under the \"file\" field", nil)
		case errors.Is(err, uploads.ErrMultipleFiles):
			respond.Error(c, http.StatusBadRequest, "validation_error", "Upload exactly one file", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to store upload", nil)
		}
		return
	}

	doc, err := h.Svc.Ingest(c.Request.Context(), userID, file)
	if err != nil {
		switch {
		case IsExtractionError(err):
			respond.Error(c, http.StatusUnprocessableEntity, "extraction_failed", extract.UserMessage(err), nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to save document", nil)
		}
		return
	}

	c.Set("documentId", doc.ID)
	respond.JSON(c, http.StatusCreated, uploadResponse{ID: doc.ID})
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	documentID := c.Param("id")
	c.Set("documentId", documentID)

	doc, err := h.Svc.Get(c.Request.Context(), userID, documentID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "Document not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch document", nil)
		}
		return
	}

	respond.OK(c, toResponse(doc))
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit := 20
	offset := 0

	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 0 {
		limit = 0
	}
	if limit > 50 {
		limit = 50
	}

	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	docs, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list documents", nil)
		}
		return
	}

	resp := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		resp = append(resp, toResponse(doc))
	}
	respond.OK(c, resp)
}
