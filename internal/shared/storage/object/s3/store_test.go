package s3

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyPrefix(t *testing.T) {
	cases := []struct {
		prefix, key, want string
	}{
		{"", "a.pdf", "a.pdf"},
		{"uploads", "a.pdf", "uploads/a.pdf"},
		{"/uploads/", "/a.pdf", "uploads/a.pdf"},
		{"uploads", "", "uploads"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, applyPrefix(tc.prefix, tc.key), "applyPrefix(%q, %q)", tc.prefix, tc.key)
	}
}

func TestNormalizePrefix(t *testing.T) {
	require.Equal(t, "docs", normalizePrefix("  /docs/ "))
}
