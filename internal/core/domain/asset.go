package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// AssetRecord is a file loaded into memory, ready to be embedded in a metadata record
type AssetRecord struct {
	Content  []byte
	Filename string // Base name only (e.g. letter_a.jpg)
	MimeType string
}

// Size returns the number of content bytes
func (a *AssetRecord) Size() int {
	return len(a.Content)
}

// Hash returns the hex encoded SHA-256 of the content
func (a *AssetRecord) Hash() string {
	sum := sha256.Sum256(a.Content)
	return hex.EncodeToString(sum[:])
}

// UploadEntry is a local history record of a completed upload
type UploadEntry struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Filename    string    `json:"filename"` // Original file name, empty for static image references
	Hash        string    `json:"hash"`     // SHA-256 of the image bytes
	URI         string    `json:"uri"`      // Metadata URI returned by the service
	IPNFT       string    `json:"ipnft"`
	UploadedAt  time.Time `json:"uploaded_at"`
}
