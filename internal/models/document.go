package models

import "time"

// Document represents an uploaded receipt file attached to a claim.
// Documents are immutable once created; the only lifecycle operations
// are attach and (while the claim is still a draft) delete.
type Document struct {
	ID           int64     `json:"id"`
	ClaimID      int64     `json:"claim_id"`
	UserID       int64     `json:"user_id"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"original_name"`
	FileType     string    `json:"file_type"`
	FileSize     int64     `json:"file_size"`
	FileURL      string    `json:"file_url"`
	DocumentType string    `json:"document_type"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// Document type constants
const (
	DocumentTypeReceipt = "receipt"
	DocumentTypeInvoice = "invoice"
	DocumentTypeTicket  = "ticket"
	DocumentTypeBill    = "bill"
	DocumentTypeOther   = "other"
)

var validDocumentTypes = map[string]bool{
	DocumentTypeReceipt: true,
	DocumentTypeInvoice: true,
	DocumentTypeTicket:  true,
	DocumentTypeBill:    true,
	DocumentTypeOther:   true,
}

// IsValidDocumentType returns true if the document type is in the known set.
func IsValidDocumentType(t string) bool {
	return validDocumentTypes[t]
}

var allowedFileTypes = map[string]bool{
	"pdf":  true,
	"jpg":  true,
	"jpeg": true,
	"png":  true,
}

// IsAllowedFileType returns true if the file extension is on the
// upload allow-list.
func IsAllowedFileType(ext string) bool {
	return allowedFileTypes[ext]
}
