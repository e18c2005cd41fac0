package main

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paper-archive/config"
	"paper-archive/services"
	"paper-archive/storage"
)

func decodeSnapshot(t *testing.T, data []byte) snapshot {
	t.Helper()
	zr, err := gzip.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer zr.Close()
	var s snapshot
	require.NoError(t, json.NewDecoder(zr).Decode(&s))
	return s
}

func TestCreateSnapshotWithoutFavorites(t *testing.T) {
	cfg := &config.Config{FavoritesBackend: config.BackendFile, FavoritesDir: t.TempDir()}

	data, err := createSnapshot(context.Background(), cfg)
	require.NoError(t, err)

	s := decodeSnapshot(t, data)
	assert.Len(t, s.CatalogIDs, 14)
	assert.Empty(t, s.Favorites)
	assert.Equal(t, config.BackendFile, s.Backend)
}

func TestCreateSnapshotReadsFavorites(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "favs")
	kv, err := storage.NewFileKV(dir)
	require.NoError(t, err)
	require.NoError(t, kv.Set(context.Background(), services.FavoritesKey, []byte(`["deepseek-r1","qwen-vl"]`)))

	cfg := &config.Config{FavoritesBackend: config.BackendFile, FavoritesDir: dir}
	data, err := createSnapshot(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, []string{"deepseek-r1", "qwen-vl"}, decodeSnapshot(t, data).Favorites)
}

func TestCreateSnapshotRejectsCorruptFavorites(t *testing.T) {
	dir := t.TempDir()
	kv, err := storage.NewFileKV(dir)
	require.NoError(t, err)
	require.NoError(t, kv.Set(context.Background(), services.FavoritesKey, []byte(`{broken`)))

	_, err = createSnapshot(context.Background(), &config.Config{FavoritesBackend: config.BackendFile, FavoritesDir: dir})
	assert.Error(t, err)
}
