package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAndMigrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "invoicer.db")

	database, err := Open(path, "s3cret&key")
	require.NoError(t, err)
	defer database.Close()

	require.NoError(t, database.RunMigrations())
	// second run is a no-op
	require.NoError(t, database.RunMigrations())

	v, err := database.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, len(migrations), v)

	_, err = database.Exec("INSERT INTO kv_store (key, value) VALUES (?, ?)", "k", "v")
	require.NoError(t, err)
}
