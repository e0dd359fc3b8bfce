package mocks

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/kamal-hamza/nfts-cli/internal/core/domain"
)

// MockHistoryRepository is a mock implementation of the HistoryRepository interface for testing
type MockHistoryRepository struct {
	mu      sync.RWMutex
	entries []domain.UploadEntry

	// SaveErr, when set, is returned by every Save call
	SaveErr error
}

// NewMockHistoryRepository creates a new mock history repository
func NewMockHistoryRepository() *MockHistoryRepository {
	return &MockHistoryRepository{}
}

// Save prepends an entry so List stays newest first
func (m *MockHistoryRepository) Save(ctx context.Context, entry domain.UploadEntry) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append([]domain.UploadEntry{entry}, m.entries...)
	return nil
}

// List returns all entries, newest first
func (m *MockHistoryRepository) List(ctx context.Context) ([]domain.UploadEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.UploadEntry(nil), m.entries...), nil
}

// GetByHash returns the newest entry with the given hash
func (m *MockHistoryRepository) GetByHash(ctx context.Context, hash string) (*domain.UploadEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.entries {
		if e.Hash == hash {
			entry := e
			return &entry, nil
		}
	}
	return nil, os.ErrNotExist
}

// Search finds entries whose name contains the query
func (m *MockHistoryRepository) Search(ctx context.Context, query string) ([]domain.UploadEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	query = strings.ToLower(query)
	var matches []domain.UploadEntry
	for _, e := range m.entries {
		if strings.Contains(strings.ToLower(e.Name), query) {
			matches = append(matches, e)
		}
	}
	return matches, nil
}
