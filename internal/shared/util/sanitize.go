package util

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"
)

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9_.-]+`)

// fallbackFileName stands in for names that sanitize to nothing usable.
const fallbackFileName = "file"

// SanitizeFileName replaces every run of characters outside [a-zA-Z0-9_.-] with "_".
// Names that end up empty or only dots become "file".
func SanitizeFileName(name string) string {
	s := unsafeNameChars.ReplaceAllString(strings.TrimSpace(name), "_")
	if strings.Trim(s, ".") == "" {
		return fallbackFileName
	}
	return s
}

// StoredFileName builds a collision-resistant name: <unix millis>-<random>-<sanitized>.
func StoredFileName(original string, now time.Time) string {
	return fmt.Sprintf("%d-%d-%s", now.UnixMilli(), randomSuffix(), SanitizeFileName(original))
}

func randomSuffix() int64 {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000_000))
	if err != nil {
		return time.Now().UnixNano() % 1_000_000_000
	}
	return n.Int64()
}
