// Package testdb opens a migrated in-memory SQLite database for tests.
package testdb

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	_ "github.com/shashiranjanraj/bazaar/database/migrations"
	"github.com/shashiranjanraj/bazaar/pkg/database"
	"github.com/shashiranjanraj/bazaar/pkg/migration"
)

// Open returns a fresh database with every migration applied. It is closed
// when the test ends.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	_, err = migration.New(db, io.Discard).Run()
	require.NoError(t, err)
	return db
}
