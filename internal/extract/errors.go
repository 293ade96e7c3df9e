package extract

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedFormat    = errors.New("unsupported file type for extraction")
	ErrImageFile            = fmt.Errorf("%w: image files are not allowed", ErrUnsupportedFormat)
	ErrImageContentRejected = errors.New("pdf contains images which are not allowed")
	ErrNoExtractableText    = errors.New("pdf appears to be scanned or contains no extractable text")
	ErrExtractionIO         = errors.New("unable to verify pdf contents")
	ErrExtractionFailed     = errors.New("unable to extract text from the provided file")
)

// UserMessage maps an extraction failure to the message returned to API callers.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrImageFile):
		return "Image files are not allowed"
	case errors.Is(err, ErrUnsupportedFormat):
		return "Unsupported file type for extraction"
	case errors.Is(err, ErrImageContentRejected):
		return "PDF contains images which are not allowed"
	case errors.Is(err, ErrNoExtractableText):
		return "PDF appears to be scanned or contains no extractable text"
	case errors.Is(err, ErrExtractionIO):
		return "Unable to verify PDF contents"
	default:
		return "Unable to extract text from the provided file"
	}
}
