package server

import (
	"testing"
	"time"

	"github.com/dvla-io/dvla/api"
	"github.com/dvla-io/dvla/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfluxPoint(t *testing.T) {
	ts := time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)

	p := point(util.Param{Vehicle: "WN67DSO", Key: "taxDueIn", Val: 18}, ts)
	require.NotNil(t, p)

	assert.Equal(t, "taxDueIn", p.Name())
	require.Len(t, p.TagList(), 1)
	assert.Equal(t, "vehicle", p.TagList()[0].Key)
	assert.Equal(t, "WN67DSO", p.TagList()[0].Value)
	require.Len(t, p.FieldList(), 1)
	assert.Equal(t, int64(18), p.FieldList()[0].Value)
	assert.Equal(t, ts, p.Time())

	assert.NotNil(t, point(util.Param{Vehicle: "WN67DSO", Key: "taxStatus", Val: "Taxed"}, ts))

	// non-vehicle and structured values are skipped
	assert.Nil(t, point(util.Param{Key: "version", Val: "1"}, ts))
	assert.Nil(t, point(util.Param{Vehicle: "WN67DSO", Key: "attributes", Val: api.Record{}}, ts))
	assert.Nil(t, point(util.Param{Vehicle: "WN67DSO", Key: "updated", Val: ts}, ts))
}
