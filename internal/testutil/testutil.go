// Package testutil opens throwaway databases and metric registries for tests.
package testutil

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dmehra2102/prod-golang-projects/vitalapp/pkg/database"
	"github.com/dmehra2102/prod-golang-projects/vitalapp/pkg/metrics"
)

// inMemoryDSN enables foreign keys, which SQLite leaves off by default.
const inMemoryDSN = "file::memory:?_pragma=foreign_keys(1)"

// NewDB returns a migrated in-memory SQLite database. The pool is pinned to a
// single connection because each SQLite memory connection is its own database.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	return NewDBWithMetrics(t, nil)
}

func NewDBWithMetrics(t testing.TB, m *metrics.Collector) *gorm.DB {
	t.Helper()

	db, err := database.Open(sqlite.Open(inMemoryDSN), database.Options{
		Log:     zap.NewNop(),
		Metrics: m,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db, zap.NewNop()))
	return db
}

// NewMetrics returns a collector bound to a private registry.
func NewMetrics(t testing.TB) (*metrics.Collector, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return metrics.NewCollector("vitalapp-test", reg), reg
}
