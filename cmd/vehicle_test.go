package cmd

import (
	"bytes"
	"testing"

	"github.com/dvla-io/dvla/api"
	"github.com/dvla-io/dvla/vehicle/dvla"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLookupConfigs(t *testing.T) {
	conf := defaultConfig()
	conf.APIKey = "secret"

	_, err := lookupConfigs(conf, nil)
	require.Error(t, err)

	ccs, err := lookupConfigs(conf, []string{"ab12 cde"})
	require.NoError(t, err)
	require.Len(t, ccs, 1)
	assert.Equal(t, "AB12CDE", ccs[0].Registration)
	assert.Equal(t, "secret", ccs[0].APIKey)
	assert.Equal(t, conf.Interval, ccs[0].Interval)
	assert.Empty(t, ccs[0].URL)

	conf.URL = dvla.UatApiURI
	ccs, err = lookupConfigs(conf, []string{"ab12 cde"})
	require.NoError(t, err)
	assert.Equal(t, dvla.UatApiURI, ccs[0].URL)
}

func TestDumpTable(t *testing.T) {
	var b bytes.Buffer
	dumpTable(&b, "AB12CDE", api.Record{
		"make":              "FORD",
		"yearOfManufacture": float64(2004),
	})

	out := b.String()
	assert.Contains(t, out, "AB12CDE")
	assert.Contains(t, out, "FORD")
	assert.Contains(t, out, "2004")
	assert.Contains(t, out, "unknown")
}

func TestDumpYAML(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, dumpYAML(&b, "AB12CDE", api.Record{"make": "FORD"}))

	var res map[string]map[string]string
	require.NoError(t, yaml.Unmarshal(b.Bytes(), &res))
	assert.Equal(t, "FORD", res["AB12CDE"]["make"])
}
