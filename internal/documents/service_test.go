package documents

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"docchat-backend/internal/extract"
	"docchat-backend/internal/extract/extracttest"
	"docchat-backend/internal/shared/storage/object/local"
	"docchat-backend/internal/uploads"
)

type stubExtractor struct {
	text  string
	pages int
	err   error
}

func (s stubExtractor) Extract(ctx context.Context, data []byte, mimeType string) (extract.Result, error) {
	if s.err != nil {
		return extract.Result{}, s.err
	}
	return extract.Result{Text: s.text, PageCount: s.pages}, nil
}

type fixture struct {
	svc  *Service
	repo *MemoryRepo
	dir  string
}

func newFixture(t *testing.T, ex TextExtractor, maxChars int) fixture {
	t.Helper()
	dir := t.TempDir()
	repo := NewMemoryRepo()
	return fixture{
		svc: &Service{
			Store:        local.New(dir),
			Repo:         repo,
			Extractor:    ex,
			MaxTextChars: maxChars,
			now:          func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
		},
		repo: repo,
		dir:  dir,
	}
}

func (f fixture) stage(t *testing.T, name, mimeType string, data []byte) uploads.UploadedFile {
	t.Helper()
	obj, err := f.svc.Store.Save(context.Background(), name, strings.NewReader(string(data)))
	require.NoError(t, err)
	return uploads.UploadedFile{
		OriginalName: name,
		MimeType:     mimeType,
		SizeBytes:    obj.SizeBytes,
		StorageKey:   obj.Key,
		Checksum:     obj.Checksum,
	}
}

func (f fixture) files(t *testing.T) int {
	t.Helper()
	entries, err := os.ReadDir(f.dir)
	require.NoError(t, err)
	return len(entries)
}

func TestIngestPersistsTruncatedText(t *testing.T) {
	f := newFixture(t, stubExtractor{text: "abcdefghij", pages: 3}, 4)
	file := f.stage(t, "notes.pdf", extract.MimePDF, []byte("%PDF"))

	doc, err := f.svc.Ingest(context.Background(), "user-1", file)
	require.NoError(t, err)
	require.Equal(t, "abcd", doc.TextContent)
	require.Equal(t, 3, doc.PageCount)
	require.Equal(t, "/uploads/"+filepath.Base(file.StorageKey), doc.StoragePath)
	require.Equal(t, file.Checksum, doc.Checksum)
	require.Equal(t, 1, f.files(t), "stored object is kept on success")

	text, err := f.repo.GetText(context.Background(), "user-1", doc.ID)
	require.NoError(t, err)
	require.Equal(t, "abcd", text)
}

func TestIngestExtractionFailureRemovesObject(t *testing.T) {
	f := newFixture(t, stubExtractor{err: extract.ErrNoExtractableText}, 100)
	file := f.stage(t, "scan.pdf", extract.MimePDF, []byte("%PDF"))

	_, err := f.svc.Ingest(context.Background(), "user-1", file)
	require.ErrorIs(t, err, extract.ErrNoExtractableText)
	require.Equal(t, 0, f.files(t))

	docs, err := f.repo.ListByUser(context.Background(), "user-1", 10, 0)
	require.NoError(t, err)
	require.Empty(t, docs)
}

func TestIngestWhitespaceOnlyIsNoText(t *testing.T) {
	f := newFixture(t, stubExtractor{text: " \n \n"}, 100)
	file := f.stage(t, "blank.docx", extract.MimeDOCX, []byte("PK"))

	_, err := f.svc.Ingest(context.Background(), "user-1", file)
	require.ErrorIs(t, err, extract.ErrNoExtractableText)
	require.Equal(t, 0, f.files(t))
}

func TestIngestMissingObjectIsExtractionIO(t *testing.T) {
	f := newFixture(t, stubExtractor{text: "unused"}, 100)

	_, err := f.svc.Ingest(context.Background(), "user-1", uploads.UploadedFile{
		OriginalName: "gone.pdf",
		MimeType:     extract.MimePDF,
		StorageKey:   "1-2-gone.pdf",
	})
	require.ErrorIs(t, err, extract.ErrExtractionIO)
	require.True(t, IsExtractionError(err))
}

func TestIngestDOCXRoundTrip(t *testing.T) {
	f := newFixture(t, extract.New(1000), 1_000_000)
	content := "Project plan\tPhase one\r\nBudget  approved"
	file := f.stage(t, "plan.docx", extract.MimeDOCX, extracttest.DOCX([]string{content}))

	doc, err := f.svc.Ingest(context.Background(), "user-1", file)
	require.NoError(t, err)

	text, err := f.svc.Text(context.Background(), "user-1", doc.ID)
	require.NoError(t, err)
	require.Equal(t, extract.Normalize(content), text)
	require.Zero(t, doc.PageCount)
}

func TestIngestPDFRecordsPageCount(t *testing.T) {
	f := newFixture(t, extract.New(1000), 1_000_000)
	file := f.stage(t, "report.pdf", extract.MimePDF, extracttest.PDF(extracttest.TextLines(3000), false))

	doc, err := f.svc.Ingest(context.Background(), "user-1", file)
	require.NoError(t, err)
	require.Equal(t, 1, doc.PageCount)

	got, err := f.svc.Get(context.Background(), "user-1", doc.ID)
	require.NoError(t, err)
	require.Equal(t, 1, toResponse(got).PageCount)
}

func TestGetIsOwnerScoped(t *testing.T) {
	f := newFixture(t, stubExtractor{text: "some text"}, 100)
	file := f.stage(t, "a.pdf", extract.MimePDF, []byte("%PDF"))
	doc, err := f.svc.Ingest(context.Background(), "owner", file)
	require.NoError(t, err)

	got, err := f.svc.Get(context.Background(), "owner", doc.ID)
	require.NoError(t, err)
	require.Equal(t, "a.pdf", got.OriginalFilename)
	require.Empty(t, got.TextContent)

	_, err = f.svc.Get(context.Background(), "someone-else", doc.ID)
	require.True(t, errors.Is(err, ErrNotFound))

	_, err = f.svc.Get(context.Background(), "owner", "not-a-uuid")
	require.ErrorIs(t, err, ErrNotFound)
}
