package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalFileStorage_Save(t *testing.T) {
	ctx := context.Background()
	tempDir := t.TempDir()
	fs := NewLocalFileStorage(tempDir, zap.NewNop())

	t.Run("creates parent directories", func(t *testing.T) {
		err := fs.Save(ctx, filepath.Join("deep", "nested", "file.json"), []byte("[]"))

		require.NoError(t, err)
		assert.FileExists(t, filepath.Join(tempDir, "deep", "nested", "file.json"))
	})

	t.Run("overwrites existing file", func(t *testing.T) {
		require.NoError(t, fs.Save(ctx, "overwrite.json", []byte("original")))
		require.NoError(t, fs.Save(ctx, "overwrite.json", []byte("updated")))

		content, err := fs.Read(ctx, "overwrite.json")
		require.NoError(t, err)
		assert.Equal(t, []byte("updated"), content)
	})

	t.Run("leaves no temp files behind", func(t *testing.T) {
		dir := filepath.Join(tempDir, "clean")
		require.NoError(t, fs.Save(ctx, filepath.Join("clean", "a.json"), []byte("x")))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "a.json", entries[0].Name())
	})

	t.Run("saves empty content", func(t *testing.T) {
		require.NoError(t, fs.Save(ctx, "empty.txt", []byte{}))

		info, err := os.Stat(filepath.Join(tempDir, "empty.txt"))
		require.NoError(t, err)
		assert.Equal(t, int64(0), info.Size())
	})

	t.Run("rejects traversal", func(t *testing.T) {
		err := fs.Save(ctx, filepath.Join("..", "outside.json"), []byte("x"))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "escapes base directory")
	})
}

func TestLocalFileStorage_ReadMissing(t *testing.T) {
	fs := NewLocalFileStorage(t.TempDir(), zap.NewNop())

	_, err := fs.Read(context.Background(), "missing.json")

	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.False(t, fs.Exists(context.Background(), "missing.json"))
}

func TestLocalFileStorage_ValidatePath(t *testing.T) {
	tempDir := t.TempDir()
	fs := NewLocalFileStorage(tempDir, zap.NewNop())

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "inside base", path: filepath.Join(tempDir, "data", "file.json")},
		{name: "base itself", path: tempDir},
		{name: "absolute outside", path: "/etc/passwd", wantErr: true},
		{name: "traversal", path: filepath.Join(tempDir, "..", "..", "etc", "passwd"), wantErr: true},
		{name: "similar prefix", path: tempDir + "_malicious/file.txt", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fs.ValidatePath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
