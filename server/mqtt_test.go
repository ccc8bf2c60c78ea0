package server

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/dvla-io/dvla/api"
	"github.com/dvla-io/dvla/core"
	"github.com/dvla-io/dvla/mock"
	"github.com/dvla-io/dvla/util"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type publisher struct {
	mu       sync.Mutex
	msgs     map[string]string
	listener map[string]func(string)
}

func newPublisher() *publisher {
	return &publisher{
		msgs:     make(map[string]string),
		listener: make(map[string]func(string)),
	}
}

func (p *publisher) Publish(topic string, retained bool, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs[topic] = payload.(string)
	return nil
}

func (p *publisher) Listen(topic string, callback func(string)) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listener[topic] = callback
	return nil
}

func (p *publisher) get(topic string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.msgs[topic]
	return s, ok
}

func testSite(t *testing.T, rec api.Record) *core.Site {
	ctrl := gomock.NewController(t)
	vehicle := mock.NewMockVehicle(ctrl)
	vehicle.EXPECT().Vehicle(gomock.Any(), "WN67DSO").Return(rec, nil).AnyTimes()

	c := core.NewCoordinator(util.NewLogger("test"), vehicle, "WN67DSO", time.Hour, time.Minute)
	return core.NewSite(c)
}

func TestMQTTDiscovery(t *testing.T) {
	site := testSite(t, api.Record{"make": "FORD", "taxStatus": "Taxed"})
	v := site.Vehicles()[0]

	pub := newPublisher()
	m := NewMQTT(pub, "dvla", "homeassistant")

	ch := make(chan util.Param)
	v.Prepare(ch)

	done := make(chan struct{})
	go func() {
		m.Run(site, ch)
		close(done)
	}()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	v.Run(ctx) // single refresh
	close(ch)
	<-done

	payload, ok := pub.get("homeassistant/sensor/dvla-wn67dso-taxstatus/config")
	require.True(t, ok)

	var d Discovery
	require.NoError(t, json.Unmarshal([]byte(payload), &d))

	assert.Equal(t, "Tax Status", d.Name)
	assert.Equal(t, "mdi:car", d.Icon)
	assert.Equal(t, "dvla/wn67dso/taxStatus", d.StateTopic)
	assert.Equal(t, "dvla/wn67dso/available", d.AvailabilityTopic)
	assert.Equal(t, "dvla/wn67dso/attributes", d.JSONAttributesTopic)
	assert.Equal(t, []string{"dvla_WN67DSO"}, d.Device.Identifiers)
	assert.Equal(t, "FORD", d.Device.Manufacturer, "discovery must be updated once manufacturer is known")

	state, _ := pub.get("dvla/wn67dso/taxStatus")
	assert.Equal(t, "Taxed", state)

	avail, _ := pub.get("dvla/wn67dso/available")
	assert.Equal(t, "true", avail)

	colour, _ := pub.get("dvla/wn67dso/colour")
	assert.Equal(t, core.Unknown, colour)

	attrs, _ := pub.get("dvla/wn67dso/attributes")
	assert.JSONEq(t, `{"make":"FORD","taxStatus":"Taxed"}`, attrs)

	assert.NotNil(t, pub.listener[HomeAssistantStatus])
}

func TestMQTTEncode(t *testing.T) {
	m := NewMQTT(newPublisher(), "dvla", "")

	ts := time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)

	for _, tc := range []struct {
		in  interface{}
		out string
	}{
		{"Taxed", "Taxed"},
		{true, "true"},
		{18, "18"},
		{1596.0, "1596"},
		{ts, "2025-11-01T12:00:00Z"},
		{time.Minute, "60"},
		{api.Record{"a": "b"}, `{"a":"b"}`},
	} {
		assert.Equal(t, tc.out, m.encode(tc.in))
	}
}
