package local

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"docchat-backend/internal/shared/storage/object"
)

func TestSaveOpenDelete(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)
	ctx := context.Background()

	obj, err := store.Save(ctx, "My Report.pdf", strings.NewReader("%PDF-1.4 body"))
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(obj.Key, "-My_Report.pdf"), obj.Key)
	require.Equal(t, int64(len("%PDF-1.4 body")), obj.SizeBytes)
	require.Len(t, obj.Checksum, 64, "sha256 hex checksum")
	require.FileExists(t, filepath.Join(dir, obj.Key))

	rc, err := store.Open(ctx, obj.Key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.4 body", string(data))

	require.NoError(t, store.Delete(ctx, obj.Key))
	_, err = store.Open(ctx, obj.Key)
	require.ErrorIs(t, err, object.ErrNotFound)
	require.NoError(t, store.Delete(ctx, obj.Key), "second Delete is a no-op")
}

func TestSaveDotOnlyNameUsesPlaceholder(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)

	obj, err := store.Save(context.Background(), "..", strings.NewReader("%PDF-1.4 body"))
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(obj.Key, "-file"), obj.Key)
	require.FileExists(t, filepath.Join(dir, obj.Key))
}

type failingReader struct{ sent bool }

func (f *failingReader) Read(p []byte) (int, error) {
	if !f.sent {
		f.sent = true
		return copy(p, "partial"), nil
	}
	return 0, errors.New("client went away")
}

func TestSaveRemovesPartialFileOnError(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)

	_, err := store.Save(context.Background(), "a.pdf", &failingReader{})
	require.Error(t, err)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries, "no leftover files")
}

func TestOpenRejectsTraversal(t *testing.T) {
	store := New(t.TempDir())
	_, err := store.Open(context.Background(), "../secret")
	require.Error(t, err)
}
