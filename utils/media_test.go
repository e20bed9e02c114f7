package utils

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalMediaStorePut(t *testing.T) {
	dir := t.TempDir()
	ms, err := NewLocalMediaStore(dir, "/uploads/")
	require.NoError(t, err)

	url, err := ms.Put(context.Background(), "posts/abc.png", strings.NewReader("png-bytes"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/posts/abc.png", url)

	got, err := os.ReadFile(filepath.Join(dir, "posts", "abc.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(got))
}

func TestLocalMediaStoreKeepsKeysInsideDir(t *testing.T) {
	dir := t.TempDir()
	ms, err := NewLocalMediaStore(dir, "/uploads")
	require.NoError(t, err)

	url, err := ms.Put(context.Background(), "../../etc/x.txt", strings.NewReader("x"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/etc/x.txt", url)
	assert.FileExists(t, filepath.Join(dir, "etc", "x.txt"))
}

func TestMediaKey(t *testing.T) {
	assert.Equal(t, "posts/123.jpg", MediaKey("posts", "123", "Foto.JPG"))
}
