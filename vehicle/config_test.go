package vehicle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigs(t *testing.T) {
	res, err := NewConfigs([]map[string]interface{}{
		{"registration": "wn67 dso"},
		{"registration": "AB12CDE", "apikey": "other", "interval": "1h", "url": "http://localhost:8080"},
	}, Defaults{
		APIKey:   "secret",
		URL:      "https://uat.example.org",
		Interval: 10 * time.Minute,
	})
	require.NoError(t, err)
	require.Len(t, res, 2)

	assert.Equal(t, "WN67DSO", res[0].Registration)
	assert.Equal(t, "secret", res[0].APIKey)
	assert.Equal(t, 10*time.Minute, res[0].Interval)
	assert.Equal(t, "https://uat.example.org", res[0].URL)

	assert.Equal(t, "AB12CDE", res[1].Registration)
	assert.Equal(t, "other", res[1].APIKey)
	assert.Equal(t, time.Hour, res[1].Interval)
	assert.Equal(t, "http://localhost:8080", res[1].URL)

	assert.NotNil(t, NewFromConfig(res[0]))
}

func TestNewConfigsInvalid(t *testing.T) {
	for _, tc := range []struct {
		name  string
		other []map[string]interface{}
	}{
		{"duplicate", []map[string]interface{}{{"registration": "WN67DSO"}, {"registration": "wn67dso"}}},
		{"missing registration", []map[string]interface{}{{"apikey": "secret"}}},
		{"missing key", []map[string]interface{}{{"registration": "WN67DSO", "apikey": ""}}},
		{"unknown key", []map[string]interface{}{{"registration": "WN67DSO", "foo": "bar"}}},
	} {
		_, err := NewConfigs(tc.other, Defaults{})
		assert.Error(t, err, tc.name)
	}
}
