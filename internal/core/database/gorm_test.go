package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNormalizeMySQLDSN(t *testing.T) {
	got := normalizeMySQLDSN("mysql://root:pw@127.0.0.1:3306/store_rating_db", "", "")
	assert.Equal(t, "root:pw@tcp(127.0.0.1:3306)/store_rating_db?charset=utf8mb4&parseTime=true", got)

	got = normalizeMySQLDSN("jdbc:mysql://root@db:3306/app?charset=latin1", "svc", "s3cret")
	assert.Equal(t, "svc:s3cret@tcp(db:3306)/app?charset=latin1&parseTime=true", got)

	raw := "root:pw@tcp(localhost:3306)/app?parseTime=true"
	assert.Equal(t, raw, normalizeMySQLDSN(raw, "x", "y"))
}

func TestMaskDSN(t *testing.T) {
	assert.Equal(t, "root:****@tcp(db:3306)/app", maskDSN("root:pw@tcp(db:3306)/app"))
	assert.Equal(t, "file::memory:", maskDSN("file::memory:"))
}

func TestNewGorm(t *testing.T) {
	_, err := NewGorm(Opts{Driver: "oracle"}, zap.NewNop())
	assert.ErrorIs(t, err, ErrUnsupportedDriver)

	db, err := NewGorm(Opts{Driver: "sqlite", DSN: "file::memory:", MaxOpenConns: 1, LogLevel: "silent"}, zap.NewNop())
	require.NoError(t, err)
	var one int
	require.NoError(t, db.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)
}
