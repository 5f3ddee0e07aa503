package database

import (
	"testing"

	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDSN(t *testing.T) {
	dsn, err := normalizeDSN("root:secret@tcp(127.0.0.1:3306)/lumen?charset=utf8mb4")
	require.NoError(t, err)

	parsed, err := mysqldrv.ParseDSN(dsn)
	require.NoError(t, err)
	assert.True(t, parsed.ParseTime)
	assert.Equal(t, "UTC", parsed.Loc.String())
	assert.Equal(t, "lumen", parsed.DBName)
	assert.Equal(t, "127.0.0.1:3306", parsed.Addr)
}

func TestNormalizeDSNInvalid(t *testing.T) {
	_, err := normalizeDSN("not a dsn")
	assert.Error(t, err)
}
