package database

import (
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInMemory(t *testing.T) {
	db, err := New()
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, 1, db.Stats().MaxOpenConnections)
	assert.NoError(t, db.Ping())
}

func TestNewCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data", "predictions.db")

	db, err := New(WithDataSource(path))
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE t (id INTEGER)`)
	assert.NoError(t, err)
	assert.DirExists(t, filepath.Dir(path))
}

func TestNewValidation(t *testing.T) {
	_, err := New(WithDriver(""))
	assert.ErrorContains(t, err, "driver cannot be empty")

	_, err = New(WithDataSource(""))
	assert.ErrorContains(t, err, "data source cannot be empty")
}

func TestNewUnknownDriverGivesUp(t *testing.T) {
	_, err := New(WithDriver("nope"), WithRetry(2, time.Millisecond))
	assert.ErrorContains(t, err, "after 2 attempts")
}

func TestSqliteDir(t *testing.T) {
	tests := []struct {
		driver, dsn, want string
	}{
		{"sqlite3", ":memory:", ""},
		{"sqlite3", "file::memory:?cache=shared", ""},
		{"sqlite3", "predictions.db", ""},
		{"sqlite3", "./data/predictions.db", "data"},
		{"sqlite3", "file:/var/lib/survey/p.db?_journal=WAL", "/var/lib/survey"},
		{"postgres", "/tmp/x/y.db", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, sqliteDir(tt.driver, tt.dsn), tt.dsn)
	}
}
