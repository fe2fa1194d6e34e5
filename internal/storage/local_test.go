package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_SaveWritesFileAndReturnsPublicPath(t *testing.T) {
	dir := t.TempDir()
	local, err := NewLocal(dir, "/uploads/")
	require.NoError(t, err)

	content := "fake-png-bytes"
	ref, err := local.Save(context.Background(), "photo.png", strings.NewReader(content), int64(len(content)), "image/png")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(ref, "/uploads/"), "reference %q should live under the public prefix", ref)
	assert.Equal(t, ".png", filepath.Ext(ref))

	name := strings.TrimPrefix(ref, "/uploads/")
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestLocal_SaveGeneratesDistinctNames(t *testing.T) {
	local, err := NewLocal(t.TempDir(), "/uploads")
	require.NoError(t, err)

	ref1, err := local.Save(context.Background(), "a.jpg", strings.NewReader("one"), 3, "image/jpeg")
	require.NoError(t, err)
	ref2, err := local.Save(context.Background(), "a.jpg", strings.NewReader("two"), 3, "image/jpeg")
	require.NoError(t, err)

	assert.NotEqual(t, ref1, ref2)
}

func TestLocal_SaveCancelledContext(t *testing.T) {
	local, err := NewLocal(t.TempDir(), "/uploads")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = local.Save(ctx, "a.jpg", strings.NewReader("one"), 3, "image/jpeg")
	assert.ErrorIs(t, err, ErrUpload)
}

func TestNewLocal_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "public", "uploads")

	_, err := NewLocal(dir, "/uploads")
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
