// Package localstore is a small content-addressed blob store used by the
// development backend. Blobs are addressed by CIDv1 (sha2-256); directories
// are JSON listings addressed with the dag-json codec.
package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/ipfs/go-cid"
	mh "github.com/multiformats/go-multihash"
	"github.com/spf13/afero"
)

const blobDir = "blobs"

var (
	// ErrNotFound is returned when a CID or path is not in the store
	ErrNotFound = errors.New("content not found")

	rawPrefix = cid.Prefix{Version: 1, Codec: cid.Raw, MhType: mh.SHA2_256, MhLength: -1}
	dirPrefix = cid.Prefix{Version: 1, Codec: cid.DagJSON, MhType: mh.SHA2_256, MhLength: -1}
)

// listing is the canonical encoding of a directory
type listing struct {
	Entries map[string]string `json:"entries"` // name -> CID
}

// Store keeps blobs on an afero filesystem with an LRU read cache
type Store struct {
	fs    afero.Fs
	cache *lru.Cache[string, []byte]
	mu    sync.Mutex // serialises writes
}

// New creates a store rooted at fs
func New(fs afero.Fs, cacheSize int) (*Store, error) {
	if cacheSize <= 0 {
		cacheSize = 128
	}
	cache, err := lru.New[string, []byte](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}
	if err := fs.MkdirAll(blobDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create blob directory: %w", err)
	}
	return &Store{fs: fs, cache: cache}, nil
}

// Put stores raw bytes and returns their CID. Storing the same bytes twice is a no-op.
func (s *Store) Put(data []byte) (cid.Cid, error) {
	return s.put(rawPrefix, data)
}

// PutDirectory stores every entry and a listing that wraps them. It returns the
// directory CID and the CID of each entry.
func (s *Store) PutDirectory(entries map[string][]byte) (cid.Cid, map[string]cid.Cid, error) {
	l := listing{Entries: make(map[string]string, len(entries))}
	ids := make(map[string]cid.Cid, len(entries))

	for name, data := range entries {
		if name == "" || strings.Contains(name, "/") {
			return cid.Undef, nil, fmt.Errorf("invalid directory entry name %q", name)
		}
		id, err := s.Put(data)
		if err != nil {
			return cid.Undef, nil, err
		}
		l.Entries[name] = id.String()
		ids[name] = id
	}

	// encoding/json sorts map keys, so equal entries give an equal listing
	encoded, err := json.Marshal(l)
	if err != nil {
		return cid.Undef, nil, fmt.Errorf("failed to encode listing: %w", err)
	}
	dir, err := s.put(dirPrefix, encoded)
	if err != nil {
		return cid.Undef, nil, err
	}
	return dir, ids, nil
}

func (s *Store) put(prefix cid.Prefix, data []byte) (cid.Cid, error) {
	id, err := prefix.Sum(data)
	if err != nil {
		return cid.Undef, fmt.Errorf("failed to hash content: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Has(id) {
		return id, nil
	}

	target := blobPath(id)

	tmp := target + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0644); err != nil {
		return cid.Undef, fmt.Errorf("failed to write blob: %w", err)
	}
	if err := s.fs.Rename(tmp, target); err != nil {
		return cid.Undef, fmt.Errorf("failed to commit blob: %w", err)
	}
	return id, nil
}

// Get returns the bytes stored under id
func (s *Store) Get(id cid.Cid) ([]byte, error) {
	key := id.String()
	if data, ok := s.cache.Get(key); ok {
		return data, nil
	}

	data, err := afero.ReadFile(s.fs, blobPath(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}
	s.cache.Add(key, data)
	return data, nil
}

// Has reports whether id is stored
func (s *Store) Has(id cid.Cid) bool {
	if s.cache.Contains(id.String()) {
		return true
	}
	ok, _ := afero.Exists(s.fs, blobPath(id))
	return ok
}

// Resolve walks p (e.g. "image/letter_a.jpg") below root and returns the
// bytes and CID it points at. An empty path resolves to root itself.
func (s *Store) Resolve(root cid.Cid, p string) ([]byte, cid.Cid, error) {
	current := root
	for _, segment := range strings.Split(strings.Trim(path.Clean("/"+p), "/"), "/") {
		if segment == "" {
			continue
		}
		if !IsDirectory(current) {
			return nil, cid.Undef, ErrNotFound
		}
		entries, err := s.List(current)
		if err != nil {
			return nil, cid.Undef, err
		}
		next, ok := entries[segment]
		if !ok {
			return nil, cid.Undef, ErrNotFound
		}
		current = next
	}

	data, err := s.Get(current)
	if err != nil {
		return nil, cid.Undef, err
	}
	return data, current, nil
}

// List returns the entries of a directory
func (s *Store) List(dir cid.Cid) (map[string]cid.Cid, error) {
	if !IsDirectory(dir) {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	data, err := s.Get(dir)
	if err != nil {
		return nil, err
	}

	var l listing
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("corrupt listing %s: %w", dir, err)
	}

	entries := make(map[string]cid.Cid, len(l.Entries))
	for name, raw := range l.Entries {
		id, err := cid.Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("corrupt listing %s: %w", dir, err)
		}
		entries[name] = id
	}
	return entries, nil
}

// IsDirectory reports whether id addresses a directory listing
func IsDirectory(id cid.Cid) bool {
	return id.Defined() && id.Type() == cid.DagJSON
}

// Verify reports whether data hashes to id
func Verify(id cid.Cid, data []byte) bool {
	sum, err := id.Prefix().Sum(data)
	if err != nil {
		return false
	}
	return sum.Equals(id)
}

func blobPath(id cid.Cid) string {
	return path.Join(blobDir, id.String())
}
