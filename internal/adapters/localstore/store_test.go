package localstore

import (
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(afero.NewMemMapFs(), 4)
	require.NoError(t, err)
	return s
}

func TestStore_PutGet(t *testing.T) {
	s := newTestStore(t)
	data := []byte("0123456789")

	id, err := s.Put(data)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), id.Version())
	assert.Equal(t, uint64(cid.Raw), id.Type())
	assert.True(t, s.Has(id))
	assert.True(t, Verify(id, data))
	assert.False(t, Verify(id, []byte("tampered")))

	got, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	expected, err := rawPrefix.Sum(data)
	require.NoError(t, err)
	assert.True(t, expected.Equals(id))
}

func TestStore_PutIsIdempotent(t *testing.T) {
	s := newTestStore(t)

	first, err := s.Put([]byte("same"))
	require.NoError(t, err)
	second, err := s.Put([]byte("same"))
	require.NoError(t, err)

	assert.True(t, first.Equals(second))
}

func TestStore_KnownCID(t *testing.T) {
	// CIDv1 raw sha2-256 of the empty input
	id, err := rawPrefix.Sum([]byte{})
	require.NoError(t, err)
	assert.Equal(t, "bafkreihdwdcefgh4dqkjv67uzcmw7ojee6xedzdetojuzjevtenxquvyku", id.String())
}

func TestStore_GetMissing(t *testing.T) {
	s := newTestStore(t)
	id, err := rawPrefix.Sum([]byte("never stored"))
	require.NoError(t, err)

	_, err = s.Get(id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, s.Has(id))
}

func TestStore_Directory(t *testing.T) {
	s := newTestStore(t)
	image := []byte("0123456789")

	dir, ids, err := s.PutDirectory(map[string][]byte{
		"letter_a.jpg": image,
		"notes.txt":    []byte("hello"),
	})
	require.NoError(t, err)
	assert.True(t, IsDirectory(dir))
	assert.False(t, IsDirectory(ids["letter_a.jpg"]))

	data, id, err := s.Resolve(dir, "letter_a.jpg")
	require.NoError(t, err)
	assert.Equal(t, image, data)
	assert.True(t, id.Equals(ids["letter_a.jpg"]))

	entries, err := s.List(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	// Same entries give the same directory
	again, _, err := s.PutDirectory(map[string][]byte{
		"notes.txt":    []byte("hello"),
		"letter_a.jpg": image,
	})
	require.NoError(t, err)
	assert.True(t, dir.Equals(again))
}

func TestStore_ResolveErrors(t *testing.T) {
	s := newTestStore(t)
	dir, ids, err := s.PutDirectory(map[string][]byte{"a.png": []byte("a")})
	require.NoError(t, err)

	_, _, err = s.Resolve(dir, "missing.png")
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = s.Resolve(ids["a.png"], "child")
	assert.ErrorIs(t, err, ErrNotFound)

	data, _, err := s.Resolve(dir, "/a.png/")
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), data)
}

func TestStore_InvalidEntryName(t *testing.T) {
	s := newTestStore(t)

	_, _, err := s.PutDirectory(map[string][]byte{"a/b.png": []byte("x")})
	assert.Error(t, err)

	_, _, err = s.PutDirectory(map[string][]byte{"": []byte("x")})
	assert.Error(t, err)
}

func TestStore_ReadsThroughCacheEviction(t *testing.T) {
	s := newTestStore(t)

	var ids []cid.Cid
	for _, b := range []string{"1", "2", "3", "4", "5", "6"} {
		id, err := s.Put([]byte(b))
		require.NoError(t, err)
		ids = append(ids, id)
	}
	for i, id := range ids {
		data, err := s.Get(id)
		require.NoError(t, err)
		assert.Equal(t, []byte{"123456"[i]}, data)
	}
}
