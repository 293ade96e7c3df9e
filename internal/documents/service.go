package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"docchat-backend/internal/extract"
	"docchat-backend/internal/shared/metrics"
	"docchat-backend/internal/shared/storage/object"
	"docchat-backend/internal/shared/telemetry"
	"docchat-backend/internal/uploads"
)

// StoragePathPrefix is the public prefix recorded for stored uploads.
const StoragePathPrefix = "/uploads/"

// TextExtractor turns raw document bytes into normalized text.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte, mimeType string) (extract.Result, error)
}

// Service runs extraction for stored uploads and serves document reads.
type Service struct {
	Store        object.ObjectStore
	Repo         DocumentsRepo
	Extractor    TextExtractor
	MaxTextChars int

	now func() time.Time
}

// Ingest extracts, truncates and persists an uploaded file. On any failure the stored
// object is deleted and no document is written; on success the object is kept.
func (s *Service) Ingest(ctx context.Context, userID string, file uploads.UploadedFile) (Document, error) {
	start := time.Now()
	fields := map[string]any{
		"userId":     userID,
		"filename":   file.OriginalName,
		"mimeType":   file.MimeType,
		"sizeBytes":  file.SizeBytes,
		"storageKey": file.StorageKey,
	}
	telemetry.Info("upload.start", fields)

	doc, err := s.ingest(ctx, userID, file)
	fields["durationMs"] = time.Since(start).Milliseconds()
	if err != nil {
		s.discard(file.StorageKey)
		fields["err"] = err
		if IsExtractionError(err) {
			metrics.IncUpload("rejected")
			telemetry.Warn("upload.rejected", fields)
		} else {
			metrics.IncUpload("failed")
			telemetry.Error("upload.failed", fields)
		}
		return Document{}, err
	}

	metrics.IncUpload("created")
	fields["documentId"] = doc.ID
	fields["chars"] = len([]rune(doc.TextContent))
	fields["pages"] = doc.PageCount
	telemetry.Info("upload.done", fields)
	return doc, nil
}

func (s *Service) ingest(ctx context.Context, userID string, file uploads.UploadedFile) (Document, error) {
	if strings.TrimSpace(userID) == "" {
		return Document{}, fmt.Errorf("%w: user id required", ErrInvalidInput)
	}

	data, err := s.read(ctx, file.StorageKey)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %v", extract.ErrExtractionIO, err)
	}

	res, err := s.Extractor.Extract(ctx, data, file.MimeType)
	if err != nil {
		return Document{}, err
	}
	text := TruncateRunes(res.Text, s.MaxTextChars)
	if strings.TrimSpace(text) == "" {
		return Document{}, extract.ErrNoExtractableText
	}

	now := s.clock().UTC()
	doc := Document{
		ID:               uuid.NewString(),
		UserID:           userID,
		OriginalFilename: file.OriginalName,
		MimeType:         file.MimeType,
		SizeBytes:        file.SizeBytes,
		PageCount:        res.PageCount,
		StoragePath:      StoragePathPrefix + path.Base(file.StorageKey),
		TextContent:      text,
		Checksum:         file.Checksum,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, fmt.Errorf("create document: %w", err)
	}
	return doc, nil
}

func (s *Service) read(ctx context.Context, key string) ([]byte, error) {
	rc, err := s.Store.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (s *Service) discard(key string) {
	if key == "" {
		return
	}
	if err := s.Store.Delete(context.Background(), key); err != nil {
		telemetry.Error("upload.cleanup_failed", map[string]any{"storageKey": key, "err": err})
	}
}

func (s *Service) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

// Get returns a document's metadata for its owner.
func (s *Service) Get(ctx context.Context, userID, documentID string) (Document, error) {
	if _, err := uuid.Parse(documentID); err != nil {
		return Document{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, userID, documentID)
}

// Text returns the stored text of a document for its owner.
func (s *Service) Text(ctx context.Context, userID, documentID string) (string, error) {
	if _, err := uuid.Parse(documentID); err != nil {
		return "", ErrNotFound
	}
	return s.Repo.GetText(ctx, userID, documentID)
}

// List returns the caller's documents, newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Document, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id required", ErrInvalidInput)
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// IsExtractionError reports whether err belongs to the extraction failure taxonomy.
func IsExtractionError(err error) bool {
	return errors.Is(err, extract.ErrUnsupportedFormat) ||
		errors.Is(err, extract.ErrImageContentRejected) ||
		errors.Is(err, extract.ErrNoExtractableText) ||
		errors.Is(err, extract.ErrExtractionIO) ||
		errors.Is(err, extract.ErrExtractionFailed)
}
