package extract

import (
	"strings"
)

// Format is the closed set of document formats the pipeline accepts.
type Format int

const (
	FormatPDF Format = iota + 1
	FormatDOC
	FormatDOCX
)

const (
	MimePDF  = "application/pdf"
	MimeDOC  = "application/msword"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

func (f Format) String() string {
	switch f {
	case FormatPDF:
		return "pdf"
	case FormatDOC:
		return "doc"
	case FormatDOCX:
		return "docx"
	default:
		return "unknown"
	}
}

// FormatFromMIME maps a declared MIME type to a Format. Parameters and case are ignored.
// The file content is never consulted.
func FormatFromMIME(mimeType string) (Format, error) {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	switch clean {
	case MimePDF:
		return FormatPDF, nil
	case MimeDOC:
		return FormatDOC, nil
	case MimeDOCX:
		return FormatDOCX, nil
	}
	if strings.HasPrefix(clean, "image/") {
		return 0, ErrImageFile
	}
	return 0, ErrUnsupportedFormat
}

// Allowed reports whether mimeType is accepted for upload.
func Allowed(mimeType string) bool {
	_, err := FormatFromMIME(mimeType)
	return err == nil
}
