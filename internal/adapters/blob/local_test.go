package blob

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"techconnect/internal/domain"
)

// Smallest valid PNG header, enough for content sniffing.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

func newTestStore(t *testing.T) (domain.BlobStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "http://localhost:8080/")
	require.NoError(t, err)
	return store, dir
}

func TestLocalStore_StoreImage(t *testing.T) {
	store, dir := newTestStore(t)

	url, err := store.Store(context.Background(), "poster.png", pngHeader)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:8080/uploads/"), url)
	assert.True(t, strings.HasSuffix(url, "-poster.png"), url)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)
}

func TestLocalStore_RejectsOversize(t *testing.T) {
	store, _ := newTestStore(t)

	big := append(append([]byte(nil), pngHeader...), bytes.Repeat([]byte{0}, domain.MaxBlobSize)...)
	_, err := store.Store(context.Background(), "huge.png", big)
	require.ErrorIs(t, err, domain.ErrBlobTooLarge)
}

func TestLocalStore_RejectsNonImage(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Store(context.Background(), "notes.txt", []byte("just some text, definitely not pixels"))
	require.ErrorIs(t, err, domain.ErrBlobNotAnImage)
}

func TestLocalStore_SanitizesFilename(t *testing.T) {
	store, dir := newTestStore(t)

	url, err := store.Store(context.Background(), "../../etc/passwd", pngHeader)
	require.NoError(t, err)
	assert.NotContains(t, url, "..")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.NotContains(t, entries[0].Name(), "/")
}
