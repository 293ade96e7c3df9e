package util

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashingReader(t *testing.T) {
	hr := NewHashingReader(strings.NewReader("hello world"))
	_, err := io.Copy(io.Discard, hr)
	require.NoError(t, err)
	require.Equal(t, int64(11), hr.Size())
	require.Equal(t, "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9", hr.Sum())
}
