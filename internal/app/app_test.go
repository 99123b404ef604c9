package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/plantpal/internal/config"
	"github.com/plantpal/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithSQLite(t *testing.T) {
	cfg := config.AppConfig{
		StorageEngine:     "sqlite",
		DatabasePath:      filepath.Join(t.TempDir(), "db", "plantpal.db"),
		PlantName:         "Fern",
		SuperRootUserName: "gardener",
		SuperRootPassword: "s3cret",
		AIProvider:        "local",
	}

	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.DB)
	assert.Equal(t, "Fern", a.Plants.Snapshot().PlantName)

	settings, err := a.Settings.GetSettings()
	require.NoError(t, err)
	assert.Equal(t, "local", settings.AIProvider)
}

func TestNewWithJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plant.json")
	cfg := config.AppConfig{StorageEngine: "json", DataFile: path, PlantName: "Basil"}

	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.DB)
	_, err = os.Stat(path)
	assert.NoError(t, err, "defaults should be persisted on first open")
}

func TestNewRejectsUnknownEngine(t *testing.T) {
	_, err := New(context.Background(), config.AppConfig{StorageEngine: "etcd"}, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrUnsupportedEngine))
}
