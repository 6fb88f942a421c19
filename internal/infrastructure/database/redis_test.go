package database

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisClient_Ping(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()

	client := NewRedis(addr, "", 0)
	defer client.Close()
	require.NoError(t, client.Ping(context.Background()))

	mr.Close()
	err := client.Ping(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), addr)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open("oracle", "whatever", false)
	assert.ErrorContains(t, err, "unsupported sql driver")
}

func TestOpen_SQLiteMigrates(t *testing.T) {
	db, err := Open(DriverSQLite, ":memory:", false)
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	for _, table := range []string{"accounts", "listings", "bookings"} {
		assert.True(t, db.Migrator().HasTable(table), "table %s", table)
	}
}
