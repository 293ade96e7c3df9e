package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"docchat-backend/internal/extract"
	"docchat-backend/internal/shared/storage/object"
	"docchat-backend/internal/shared/telemetry"
)

// FileField is the multipart field that carries the upload.
const FileField = "file"

// multipartOverhead leaves room for boundaries and part headers on top of the file cap.
const multipartOverhead = 1 << 20

var (
	ErrMissingFile       = errors.New("file is required")
	ErrTooLarge          = errors.New("file exceeds upload size limit")
	ErrUnsupportedFormat = extract.ErrUnsupportedFormat
	ErrUnexpectedField   = errors.New("unexpected file field")
	ErrMultipleFiles     = errors.New("only one file may be uploaded")
)

// UploadedFile is a stored upload awaiting extraction.
type UploadedFile struct {
	OriginalName string
	MimeType     string
	SizeBytes    int64
	StorageKey   string
	Checksum     string
}

// Intake streams a single multipart file into the object store.
type Intake struct {
	Store    object.ObjectStore
	MaxBytes int64
}

// Receive validates and stores the single file part of r. The declared content type is
// checked before any byte is written, and the part is cut off once it passes MaxBytes.
// A file under any other field, or a second file, rejects the whole request.
func (in *Intake) Receive(ctx context.Context, r *http.Request) (UploadedFile, error) {
	if in.MaxBytes > 0 {
		r.Body = http.MaxBytesReader(nil, r.Body, in.MaxBytes+multipartOverhead)
	}
	mr, err := r.MultipartReader()
	if err != nil {
		return UploadedFile{}, fmt.Errorf("%w: %v", ErrMissingFile, err)
	}

	var (
		file   UploadedFile
		stored bool
	)
	fail := func(err error) (UploadedFile, error) {
		if stored {
			in.discard(file.StorageKey)
		}
		return UploadedFile{}, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			if !stored {
				return UploadedFile{}, ErrMissingFile
			}
			return file, nil
		}
		if err != nil {
			if isBodyTooLarge(err) {
				return fail(ErrTooLarge)
			}
			return fail(fmt.Errorf("%w: %v", ErrMissingFile, err))
		}

		switch {
		case part.FileName() != "" && part.FormName() != FileField:
			part.Close()
			return fail(fmt.Errorf("%w: %q", ErrUnexpectedField, part.FormName()))
		case part.FileName() != "" && stored:
			part.Close()
			return fail(ErrMultipleFiles)
		case part.FileName() == "":
			_, copyErr := io.Copy(io.Discard, part)
			part.Close()
			if copyErr != nil && isBodyTooLarge(copyErr) {
				return fail(ErrTooLarge)
			}
			continue
		}

		file, err = in.store(ctx, part)
		part.Close()
		if err != nil {
			return UploadedFile{}, err
		}
		stored = true
	}
}

func (in *Intake) store(ctx context.Context, part *multipart.Part) (UploadedFile, error) {
	mimeType := cleanMediaType(part.Header.Get("Content-Type"))
	if !extract.Allowed(mimeType) {
		telemetry.Warn("upload.rejected", map[string]any{
			"filename": part.FileName(),
			"mimeType": mimeType,
			"reason":   "unsupported_type",
		})
		return UploadedFile{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, mimeType)
	}

	capped := &capReader{r: part, remaining: in.MaxBytes, unlimited: in.MaxBytes <= 0}
	obj, err := in.Store.Save(ctx, part.FileName(), capped)
	if err != nil {
		if capped.exceeded || isBodyTooLarge(err) {
			if obj.Key != "" {
				in.discard(obj.Key)
			}
			telemetry.Warn("upload.rejected", map[string]any{
				"filename": part.FileName(),
				"mimeType": mimeType,
				"reason":   "too_large",
				"maxBytes": in.MaxBytes,
			})
			return UploadedFile{}, ErrTooLarge
		}
		return UploadedFile{}, fmt.Errorf("store upload: %w", err)
	}

	return UploadedFile{
		OriginalName: part.FileName(),
		MimeType:     mimeType,
		SizeBytes:    obj.SizeBytes,
		StorageKey:   obj.Key,
		Checksum:     obj.Checksum,
	}, nil
}

func (in *Intake) discard(key string) {
	if err := in.Store.Delete(context.Background(), key); err != nil {
		telemetry.Error("upload.cleanup_failed", map[string]any{"storageKey": key, "err": err})
	}
}

// capReader fails the read that would take the stream past its limit.
type capReader struct {
	r         io.Reader
	remaining int64
	unlimited bool
	exceeded  bool
}

func (c *capReader) Read(p []byte) (int, error) {
	if c.unlimited {
		return c.r.Read(p)
	}
	if int64(len(p)) > c.remaining+1 {
		p = p[:c.remaining+1]
	}
	n, err := c.r.Read(p)
	if int64(n) > c.remaining {
		c.exceeded = true
		return 0, ErrTooLarge
	}
	c.remaining -= int64(n)
	return n, err
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || errors.Is(err, ErrTooLarge)
}

func cleanMediaType(raw string) string {
	mediaType, _, err := mime.ParseMediaType(raw)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(strings.Split(raw, ";")[0]))
	}
	return mediaType
}
