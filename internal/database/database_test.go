package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finance-dashboard/internal/config"
	"finance-dashboard/internal/models"
)

func TestInitAndMigrate_SQLite(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "nested", "remote.db")
	db, err := Init(config.RemoteConfig{Driver: "sqlite", DSN: dsn})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	for _, m := range []any{&models.User{}, &models.Session{}, &models.Profile{}, &models.Transaction{}, &models.Investment{}} {
		assert.True(t, db.Migrator().HasTable(m))
	}
}

func TestInit_UnknownDriver(t *testing.T) {
	_, err := Init(config.RemoteConfig{Driver: "oracle", DSN: "x"})
	assert.Error(t, err)
}
