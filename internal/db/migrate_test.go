package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_SQLite(t *testing.T) {
	conn, err := New("sqlite3", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ctx := context.Background()
	version, err := Migrate(ctx, conn, "sqlite3")
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	var tables []string
	require.NoError(t, conn.SelectContext(ctx, &tables,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name IN ('users', 'posts', 'accounts', 'sessions') ORDER BY name`))
	assert.Equal(t, []string{"accounts", "posts", "sessions", "users"}, tables)

	// Running again is a no-op.
	again, err := Migrate(ctx, conn, "sqlite3")
	require.NoError(t, err)
	assert.Equal(t, version, again)
}

func TestMigrate_UnknownDriver(t *testing.T) {
	_, err := Migrate(context.Background(), nil, "mssql")
	assert.Error(t, err)
}
