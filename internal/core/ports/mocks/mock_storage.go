package mocks

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/kamal-hamza/nfts-cli/internal/core/domain"
)

// MockFileLoader serves assets from an in-memory map keyed by path
type MockFileLoader struct {
	Files map[string]*domain.AssetRecord
}

// NewMockFileLoader creates a new mock loader
func NewMockFileLoader() *MockFileLoader {
	return &MockFileLoader{Files: make(map[string]*domain.AssetRecord)}
}

// Load returns the registered asset or a NotFoundError
func (m *MockFileLoader) Load(ctx context.Context, path string) (*domain.AssetRecord, error) {
	asset, ok := m.Files[path]
	if !ok {
		return nil, &domain.NotFoundError{Path: path, Err: os.ErrNotExist}
	}
	return asset, nil
}

// MockStorageClient records submitted metadata and returns canned results
type MockStorageClient struct {
	mu      sync.Mutex
	Records []*domain.MetadataRecord
	Err     error
}

// NewMockStorageClient creates a new mock storage client
func NewMockStorageClient() *MockStorageClient {
	return &MockStorageClient{}
}

// Store records the metadata and returns a deterministic result
func (m *MockStorageClient) Store(ctx context.Context, record *domain.MetadataRecord) (*domain.UploadResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	m.Records = append(m.Records, record)
	ipnft := fmt.Sprintf("bafymock%d", len(m.Records))
	return &domain.UploadResult{
		URI:   "ipfs://" + ipnft + "/metadata.json",
		IPNFT: ipnft,
	}, nil
}

// Calls returns the number of successful submissions
func (m *MockStorageClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Records)
}
