package migration

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	auditdomain "github.com/railzwaylabs/billinghub/internal/audit/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestEmbeddedSchema(t *testing.T) {
	a, err := Embedded()
	require.NoError(t, err)
	assert.Equal(t, uint(2), a.Version)
	assert.Equal(t, "2", a.VersionString())
	assert.Len(t, a.Checksum, 64)

	b, err := Embedded()
	require.NoError(t, err)
	assert.Equal(t, a.Checksum, b.Checksum)
}

func TestEveryUpHasADown(t *testing.T) {
	entries, err := embeddedMigrations.ReadDir(migrationsDir)
	require.NoError(t, err)

	names := map[string]bool{}
	for _, e := range entries {
		names[e.Name()] = true
	}
	for name := range names {
		if strings.HasSuffix(name, ".up.sql") {
			assert.True(t, names[strings.TrimSuffix(name, ".up.sql")+".down.sql"], name)
		}
	}
}

func TestParseMigrationVersion(t *testing.T) {
	v, ok := parseMigrationVersion("000012_add_things.up.sql")
	assert.True(t, ok)
	assert.Equal(t, uint(12), v)

	for _, name := range []string{"abc_things.up.sql", "000000_zero.up.sql", "noseparator.up.sql"} {
		_, ok = parseMigrationVersion(name)
		assert.False(t, ok, name)
	}
}

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}

func TestRunAutoMigratesSQLite(t *testing.T) {
	conn := openSQLite(t)
	require.NoError(t, Run(conn))
	assert.True(t, conn.Migrator().HasTable(&auditdomain.AuditLog{}))
}

func TestActivateAndLoadState(t *testing.T) {
	conn := openSQLite(t)
	ctx := context.Background()
	require.NoError(t, conn.Exec(`CREATE TABLE system_bootstrap_state (
		id BOOLEAN PRIMARY KEY,
		status TEXT NOT NULL,
		schema_version TEXT NOT NULL,
		checksum TEXT,
		activated_at DATETIME,
		created_at DATETIME NOT NULL
	)`).Error)

	_, err := LoadState(ctx, conn)
	require.ErrorIs(t, err, ErrStateNotFound)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, activate(ctx, conn, Schema{Version: 1, Checksum: "aaa"}, now))
	require.NoError(t, activate(ctx, conn, Schema{Version: 2, Checksum: "bbb"}, now.Add(time.Hour)))

	state, err := LoadState(ctx, conn)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, state.Status)
	assert.Equal(t, "2", state.SchemaVersion)
	require.NotNil(t, state.Checksum)
	assert.Equal(t, "bbb", *state.Checksum)

	var rows int64
	require.NoError(t, conn.Model(&State{}).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}
