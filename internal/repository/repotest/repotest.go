// Package repotest opens a migrated in-memory database for tests.
package repotest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"salescrm/internal/database"
	"salescrm/internal/repository"
)

func New(t testing.TB) *repository.DB {
	t.Helper()
	gdb, err := database.ConnectMemory()
	require.NoError(t, err)
	require.NoError(t, database.Migrate(gdb, repository.Models()...))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return repository.NewDB(gdb)
}
