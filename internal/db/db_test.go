package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSetsPragmas(t *testing.T) {
	database, err := Open(filepath.Join(t.TempDir(), "pragmas.db"))
	require.NoError(t, err)
	defer database.Close()

	var mode string
	require.NoError(t, database.QueryRow(`PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(t, "wal", mode)

	var fk int
	require.NoError(t, database.QueryRow(`PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestOpenMemoryKeepsOneConnection(t *testing.T) {
	database, err := OpenContext(context.Background(), MemoryPath)
	require.NoError(t, err)
	defer database.Close()

	_, err = database.Exec(`CREATE TABLE t (v INTEGER)`)
	require.NoError(t, err)
	_, err = database.Exec(`INSERT INTO t (v) VALUES (1)`)
	require.NoError(t, err)

	var n int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM t`).Scan(&n))
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, database.Stats().MaxOpenConnections)
}
