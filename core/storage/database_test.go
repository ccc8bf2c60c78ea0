package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dvla-io/dvla/api"
	"github.com/dvla-io/dvla/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestHistory(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "dvla.db"))
	require.NoError(t, err)

	ts := time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, db.Store("WN67DSO", api.Record{"taxStatus": "Taxed", "motStatus": "Valid"}, ts))
	require.NoError(t, db.Store("WN67DSO", api.Record{"taxStatus": "Untaxed", "motStatus": "Valid"}, ts.Add(time.Hour)))
	require.NoError(t, db.Store("AB12CDE", api.Record{"taxStatus": "SORN"}, ts))

	// empty records are skipped
	require.NoError(t, db.Store("WN67DSO", nil, ts.Add(2*time.Hour)))

	res, err := db.History("WN67DSO", 0)
	require.NoError(t, err)
	require.Len(t, res, 2)

	assert.Equal(t, "Untaxed", res[0].TaxStatus)
	assert.Equal(t, "Taxed", res[1].TaxStatus)
	assert.Equal(t, "Valid", res[1].MotStatus)

	data, err := res[0].Data()
	require.NoError(t, err)
	assert.Equal(t, api.Record{"taxStatus": "Untaxed", "motStatus": "Valid"}, data)

	res, err = db.History("WN67DSO", 1)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "Untaxed", res[0].TaxStatus)
}

func TestGormLoggerMode(t *testing.T) {
	l := newGormLogger(util.NewLogger("test"))
	assert.Equal(t, logger.Warn, l.level)

	silent := l.LogMode(logger.Silent).(*gormLogger)
	assert.Equal(t, logger.Silent, silent.level)
	assert.Equal(t, logger.Warn, l.level, "log mode must not modify the shared logger")

	var called bool
	silent.Trace(context.Background(), time.Now(), func() (string, int64) {
		called = true
		return "", 0
	}, nil)
	assert.False(t, called)
}
