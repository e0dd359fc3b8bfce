package ports

import (
	"context"

	"github.com/kamal-hamza/nfts-cli/internal/core/domain"
)

// FileLoader defines the port for reading an asset into memory
type FileLoader interface {
	// Load reads the whole file at path (or http(s) URL) and guesses its MIME type
	Load(ctx context.Context, path string) (*domain.AssetRecord, error)
}

// StorageClient defines the port for submitting metadata to the storage service
type StorageClient interface {
	// Store submits the record and any embedded files in a single request
	Store(ctx context.Context, record *domain.MetadataRecord) (*domain.UploadResult, error)
}

// HistoryRepository defines the port for the local upload history
type HistoryRepository interface {
	// Save appends an entry to the history
	Save(ctx context.Context, entry domain.UploadEntry) error

	// List returns all entries, newest first
	List(ctx context.Context) ([]domain.UploadEntry, error)

	// GetByHash returns the most recent entry for the given content hash
	GetByHash(ctx context.Context, hash string) (*domain.UploadEntry, error)

	// Search finds entries whose name, description or filename match the query
	Search(ctx context.Context, query string) ([]domain.UploadEntry, error)
}
