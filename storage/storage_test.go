package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStore_Save(t *testing.T) {
	dir := t.TempDir()
	store := NewDiskStore(dir, "/uploads/")
	store.now = func() time.Time { return time.UnixMilli(1700000000000) }

	url, err := store.Save(context.Background(), "crm scan.pdf", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/1700000000000-crm_scan.pdf", url)

	data, err := os.ReadFile(filepath.Join(dir, "1700000000000-crm_scan.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
}

func TestDiskStore_StripsDirectories(t *testing.T) {
	dir := t.TempDir()
	store := NewDiskStore(dir, "/uploads")

	url, err := store.Save(context.Background(), "../../etc/passwd", strings.NewReader("x"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(url, "-passwd"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDiskStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDiskStore(t.TempDir(), "/uploads").Save(ctx, "a.pdf", strings.NewReader("x"))
	assert.ErrorIs(t, err, context.Canceled)
}
