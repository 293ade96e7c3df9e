package telemetry

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel("warn")
	t.Cleanup(func() {
		SetOutput(nil)
		SetLevel("debug")
	})

	Info("dropped", nil)
	Warn("kept", map[string]any{"filename": "a.pdf", "err": errors.New("boom")})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1, buf.String())
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &payload))
	require.Equal(t, "kept", payload["msg"])
	require.Equal(t, "warn", payload["level"])
	require.Equal(t, "boom", payload["err"], "errors render as strings")
}
