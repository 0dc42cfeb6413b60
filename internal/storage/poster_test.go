package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowedExtension(t *testing.T) {
	assert.True(t, AllowedExtension("poster.png"))
	assert.True(t, AllowedExtension("POSTER.JPG"))
	assert.True(t, AllowedExtension("a.jpeg"))
	assert.True(t, AllowedExtension("a.gif"))
	assert.False(t, AllowedExtension("a.pdf"))
	assert.False(t, AllowedExtension("a.png.exe"))
	assert.False(t, AllowedExtension("noext"))
}

func TestDiskPosterStoreSave(t *testing.T) {
	dir := t.TempDir()
	store := NewDiskPosterStore(dir, "/static/posters/")

	url, err := store.Save(context.Background(), "poster.png", strings.NewReader("fake image data"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/static/posters/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	name := strings.TrimPrefix(url, "/static/posters/")
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, "fake image data", string(data))
}

func TestDiskPosterStoreUniqueNames(t *testing.T) {
	store := NewDiskPosterStore(t.TempDir(), "/static/posters")

	a, err := store.Save(context.Background(), "poster.jpg", strings.NewReader("one"))
	require.NoError(t, err)
	b, err := store.Save(context.Background(), "poster.jpg", strings.NewReader("two"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDiskPosterStoreRejectsExtension(t *testing.T) {
	store := NewDiskPosterStore(t.TempDir(), "/static/posters")

	_, err := store.Save(context.Background(), "malware.exe", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrBadExtension)
}

func TestDiskPosterStoreRejectsOversize(t *testing.T) {
	dir := t.TempDir()
	store := NewDiskPosterStore(dir, "/static/posters")

	big := bytes.NewReader(make([]byte, MaxPosterBytes+1))
	_, err := store.Save(context.Background(), "huge.png", big)
	assert.ErrorIs(t, err, ErrTooLarge)

	// The partial file must not be left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
