package documents

import "time"

// DocumentResponse is the outward-facing representation of a document.
type DocumentResponse struct {
	ID               string    `json:"id"`
	OriginalFilename string    `json:"originalFilename"`
	SizeBytes        int64     `json:"sizeBytes"`
	PageCount        int       `json:"pageCount,omitempty"`
	MimeType         string    `json:"mimeType"`
	CreatedAt        time.Time `json:"createdAt"`
}

type uploadResponse struct {
	ID string `json:"id"`
}

func toResponse(doc Document) DocumentResponse {
	return DocumentResponse{
		ID:               doc.ID,
		OriginalFilename: doc.OriginalFilename,
		SizeBytes:        doc.SizeBytes,
		PageCount:        doc.PageCount,
		MimeType:         doc.MimeType,
		CreatedAt:        doc.CreatedAt,
	}
}
