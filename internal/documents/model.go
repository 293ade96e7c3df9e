package documents

import "time"

// Document is an uploaded file whose text was extracted successfully.
// Rows are immutable once written.
type Document struct {
	ID               string
	UserID           string
	OriginalFilename string
	MimeType         string
	SizeBytes        int64
	PageCount        int // zero for formats without pages
	StoragePath      string
	TextContent      string
	Checksum         string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
