package extract

import (
	"context"
	"fmt"
	"time"

	"docchat-backend/internal/shared/metrics"
	"docchat-backend/internal/shared/telemetry"
)

const defaultMinPDFTextChars = 1000

// Extractor turns a stored document into normalized text.
type Extractor struct {
	// MinPDFTextChars is the trimmed text length at or below which a PDF counts as scanned.
	MinPDFTextChars int
}

// New returns an Extractor with the given scanned-PDF threshold.
func New(minPDFTextChars int) *Extractor {
	if minPDFTextChars <= 0 {
		minPDFTextChars = defaultMinPDFTextChars
	}
	return &Extractor{MinPDFTextChars: minPDFTextChars}
}

// Result is the outcome of a successful extraction.
type Result struct {
	Text string
	// PageCount is zero when the format carries no page structure.
	PageCount int
}

// Extract dispatches on the declared MIME type and returns normalized text.
func (e *Extractor) Extract(ctx context.Context, data []byte, mimeType string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	format, err := FormatFromMIME(mimeType)
	if err != nil {
		return Result{}, err
	}

	start := time.Now()
	telemetry.Info("extract.start", map[string]any{
		"format":    format.String(),
		"mimeType":  mimeType,
		"sizeBytes": len(data),
	})

	var res Result
	switch format {
	case FormatPDF:
		res, err = e.extractPDF(ctx, data)
	case FormatDOC:
		res.Text, err = extractDOC(data)
	case FormatDOCX:
		res.Text, err = extractDOCX(data)
	default:
		err = ErrUnsupportedFormat
	}
	elapsed := time.Since(start)
	metrics.ObserveExtraction(format.String(), elapsed)

	if err != nil {
		telemetry.Warn("extract.failed", map[string]any{
			"format":     format.String(),
			"mimeType":   mimeType,
			"durationMs": elapsed.Milliseconds(),
			"err":        err,
		})
		return Result{}, err
	}
	telemetry.Info("extract.done", map[string]any{
		"format":     format.String(),
		"chars":      len([]rune(res.Text)),
		"pages":      res.PageCount,
		"durationMs": elapsed.Milliseconds(),
	})
	return res, nil
}

func (e *Extractor) threshold() int {
	if e == nil || e.MinPDFTextChars <= 0 {
		return defaultMinPDFTextChars
	}
	return e.MinPDFTextChars
}

func wrapLibraryErr(format Format, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrExtractionFailed, format, err)
}
