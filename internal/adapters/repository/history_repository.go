package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/kamal-hamza/nfts-cli/internal/core/domain"
)

// FileHistoryRepository keeps the upload history in a JSON manifest
type FileHistoryRepository struct {
	manifestPath string
	mu           sync.RWMutex
	entries      []domain.UploadEntry
}

// NewFileHistoryRepository creates a repository backed by the manifest at path
func NewFileHistoryRepository(manifestPath string) *FileHistoryRepository {
	return &FileHistoryRepository{manifestPath: manifestPath}
}

// load re-reads the manifest so writes from other processes are kept.
// Callers hold the write lock.
func (r *FileHistoryRepository) load() error {
	data, err := os.ReadFile(r.manifestPath)
	if err != nil {
		if os.IsNotExist(err) {
			r.entries = nil
			return nil
		}
		return fmt.Errorf("failed to read history: %w", err)
	}

	var entries []domain.UploadEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to parse history: %w", err)
	}
	r.entries = entries
	return nil
}

// Save appends an entry and rewrites the manifest
func (r *FileHistoryRepository) Save(ctx context.Context, entry domain.UploadEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.load(); err != nil {
		return err
	}
	r.entries = append(r.entries, entry)
	return r.flush()
}

// flush writes the entries to disk via a temp file
func (r *FileHistoryRepository) flush() error {
	if err := os.MkdirAll(filepath.Dir(r.manifestPath), 0755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	data, err := json.MarshalIndent(r.entries, "", "  ")
	if err != nil {
		return err
	}

	tmp := r.manifestPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, r.manifestPath)
}

// List returns all entries, newest first
func (r *FileHistoryRepository) List(ctx context.Context) ([]domain.UploadEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.load(); err != nil {
		return nil, err
	}
	return newestFirst(r.entries), nil
}

// GetByHash returns the most recent upload of the given content
func (r *FileHistoryRepository) GetByHash(ctx context.Context, hash string) (*domain.UploadEntry, error) {
	if hash == "" {
		return nil, os.ErrNotExist
	}
	entries, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.Hash == hash {
			entry := e
			return &entry, nil
		}
	}
	return nil, os.ErrNotExist
}

// Search matches the query against name, description, filename and the name's slug
func (r *FileHistoryRepository) Search(ctx context.Context, query string) ([]domain.UploadEntry, error) {
	entries, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return entries, nil
	}

	slug := domain.GenerateSlug(query)

	var matches []domain.UploadEntry
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Name), query) ||
			strings.Contains(strings.ToLower(e.Description), query) ||
			strings.Contains(strings.ToLower(e.Filename), query) ||
			(slug != "" && strings.Contains(domain.GenerateSlug(e.Name), slug)) {
			matches = append(matches, e)
		}
	}
	return matches, nil
}

func newestFirst(entries []domain.UploadEntry) []domain.UploadEntry {
	out := append([]domain.UploadEntry(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UploadedAt.After(out[j].UploadedAt)
	})
	return out
}
