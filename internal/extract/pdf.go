package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"docchat-backend/internal/shared/telemetry"
)

var imageMarker = regexp.MustCompile(`/Subtype\s*/Image`)

func (e *Extractor) extractPDF(ctx context.Context, data []byte) (Result, error) {
	if err := scanForImages(data); err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	layout, err := inspectPDF(data)
	if err != nil {
		telemetry.Warn("extract.pdf.inspect_failed", map[string]any{"sizeBytes": len(data), "err": err})
	} else if layout.Images > 0 {
		telemetry.Info("extract.pdf.images", map[string]any{"pages": layout.Pages, "images": layout.Images})
		return Result{}, ErrImageContentRejected
	}

	text, err := pdfPlainText(data)
	if err != nil {
		telemetry.Warn("extract.pdf.parse_failed", map[string]any{"sizeBytes": len(data), "err": err})
		text = ""
	}
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= e.threshold() {
		telemetry.Info("extract.pdf.insufficient_text", map[string]any{
			"chars":     utf8.RuneCountInString(text),
			"threshold": e.threshold(),
		})
		return Result{}, ErrNoExtractableText
	}
	return Result{Text: Normalize(text), PageCount: layout.Pages}, nil
}

// scanForImages fails closed: an unreadable payload is rejected rather than let through.
func scanForImages(data []byte) error {
	if data == nil {
		return ErrExtractionIO
	}
	if imageMarker.Match(data) {
		return ErrImageContentRejected
	}
	return nil
}

func pdfPlainText(data []byte) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("pdf parser panic: %v", rec)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// pdfLayout is the page structure pdfcpu reports for a parsed file.
type pdfLayout struct {
	Pages  int
	Images int
}

// inspectPDF counts pages and the image objects they reference.
func inspectPDF(data []byte) (layout pdfLayout, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			layout, err = pdfLayout{}, fmt.Errorf("pdfcpu panic: %v", rec)
		}
	}()

	pdfCtx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return pdfLayout{}, err
	}
	layout.Pages = pdfCtx.PageCount
	for page := 1; page <= pdfCtx.PageCount; page++ {
		layout.Images += len(pdfcpu.ImageObjNrs(pdfCtx, page))
	}
	return layout, nil
}
