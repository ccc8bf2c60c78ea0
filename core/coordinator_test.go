package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/dvla-io/dvla/api"
	"github.com/dvla-io/dvla/mock"
	"github.com/dvla-io/dvla/util"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRecord = api.Record{
	"registrationNumber": "WN67DSO",
	"taxStatus":          "Taxed",
	"make":               "FORD",
	"engineCapacity":     float64(1596),
	"markedForExport":    false,
}

func newTestCoordinator(t *testing.T, clck clock.Clock) (*Coordinator, *mock.MockVehicle) {
	ctrl := gomock.NewController(t)
	vehicle := mock.NewMockVehicle(ctrl)

	c := NewCoordinatorWithClock(util.NewLogger("test"), clck, vehicle, "WN67DSO", 10*time.Minute, time.Minute)
	return c, vehicle
}

func TestCoordinatorSensors(t *testing.T) {
	c, vehicle := newTestCoordinator(t, clock.NewMock())
	vehicle.EXPECT().Vehicle(gomock.Any(), "WN67DSO").Return(testRecord, nil)

	require.Len(t, c.Sensors(), 17)

	// unavailable before first refresh
	s, err := c.Sensor("taxStatus")
	require.NoError(t, err)
	assert.False(t, s.Available())
	assert.Equal(t, Unknown, s.NativeValue())
	assert.Equal(t, api.Record{}, s.ExtraStateAttributes())

	c.Refresh()

	assert.True(t, s.Available())
	assert.Equal(t, "Taxed", s.NativeValue())
	assert.Equal(t, "dvla-wn67dso-taxstatus", s.UniqueID())
	assert.Equal(t, testRecord, s.ExtraStateAttributes())

	cc, err := c.Sensor("engineCapacity")
	require.NoError(t, err)
	assert.Equal(t, "1596", cc.NativeValue())

	// missing key
	mot, err := c.Sensor("motExpiryDate")
	require.NoError(t, err)
	assert.True(t, mot.Available())
	assert.Equal(t, Unknown, mot.NativeValue())

	dev := s.DeviceInfo()
	assert.Equal(t, "FORD", dev.Manufacturer)
	assert.Equal(t, "WN67DSO", dev.Name)
	assert.Equal(t, [][2]string{{Domain, "WN67DSO"}}, dev.Identifiers)

	_, err = c.Sensor("foo")
	assert.Error(t, err)
}

func TestCoordinatorFailure(t *testing.T) {
	clck := clock.NewMock()
	c, vehicle := newTestCoordinator(t, clck)

	gomock.InOrder(
		vehicle.EXPECT().Vehicle(gomock.Any(), "WN67DSO").Return(testRecord, nil),
		vehicle.EXPECT().Vehicle(gomock.Any(), "WN67DSO").Return(nil, errors.New("connection refused")),
	)

	var notified []api.Record
	c.Subscribe(func(r api.Record) {
		notified = append(notified, r)
	})

	c.Refresh()
	require.False(t, c.Data().Empty())
	updated := c.Updated()

	clck.Add(10 * time.Minute)
	c.Refresh()

	// failed refresh empties the record and all sensors become unavailable
	assert.True(t, c.Data().Empty())
	for _, s := range c.Sensors() {
		assert.False(t, s.Available(), s.Key)
	}
	assert.Equal(t, updated, c.Updated())

	require.Len(t, notified, 2)
	assert.Equal(t, testRecord, notified[0])
	assert.True(t, notified[1].Empty())
}

func TestCoordinatorPublish(t *testing.T) {
	c, vehicle := newTestCoordinator(t, clock.NewMock())
	vehicle.EXPECT().Vehicle(gomock.Any(), "WN67DSO").Return(testRecord, nil)

	ch := make(chan util.Param, 100)
	c.Prepare(ch)
	c.Refresh()
	close(ch)

	res := make(map[string]interface{})
	for p := range ch {
		assert.Equal(t, "WN67DSO", p.Vehicle)
		res[p.Key] = p.Val
	}

	assert.Equal(t, true, res["available"])
	assert.Equal(t, "Taxed", res["taxStatus"])
	assert.Equal(t, Unknown, res["colour"])
	assert.Equal(t, testRecord, res["attributes"])
	assert.Len(t, res, len(SensorTypes)+3)
}

func TestCoordinatorPublishFailure(t *testing.T) {
	clck := clock.NewMock()
	c, vehicle := newTestCoordinator(t, clck)

	gomock.InOrder(
		vehicle.EXPECT().Vehicle(gomock.Any(), "WN67DSO").Return(testRecord, nil),
		vehicle.EXPECT().Vehicle(gomock.Any(), "WN67DSO").Return(nil, errors.New("connection refused")),
	)

	ch := make(chan util.Param, 100)
	c.Prepare(ch)

	c.Refresh()
	for len(ch) > 0 {
		<-ch
	}

	clck.Add(10 * time.Minute)
	c.Refresh()
	close(ch)

	var res []util.Param
	for p := range ch {
		res = append(res, p)
	}

	// only availability is sent, sensor values keep their last published state
	require.Len(t, res, 1)
	assert.Equal(t, util.Param{Vehicle: "WN67DSO", Key: "available", Val: false}, res[0])
}

func TestSensorState(t *testing.T) {
	c, vehicle := newTestCoordinator(t, clock.NewMock())
	vehicle.EXPECT().Vehicle(gomock.Any(), "WN67DSO").Return(testRecord, nil)

	s, err := c.Sensor("make")
	require.NoError(t, err)

	assert.Equal(t, State{
		UniqueID:   "dvla-wn67dso-make",
		Name:       "Make",
		Icon:       "mdi:car",
		State:      Unknown,
		Available:  false,
		Attributes: api.Record{},
	}, s.State())

	c.Refresh()

	assert.Equal(t, State{
		UniqueID:   "dvla-wn67dso-make",
		Name:       "Make",
		Icon:       "mdi:car",
		State:      "FORD",
		Available:  true,
		Attributes: testRecord,
	}, s.State())
}

func TestCoordinatorRun(t *testing.T) {
	clck := clock.NewMock()
	c, vehicle := newTestCoordinator(t, clck)

	calls := make(chan struct{}, 10)
	vehicle.EXPECT().Vehicle(gomock.Any(), "WN67DSO").DoAndReturn(func(context.Context, string) (api.Record, error) {
		calls <- struct{}{}
		return testRecord, nil
	}).Times(3)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		c.Run(ctx)
		close(done)
	}()

	// initial refresh
	<-calls

	// scheduled refresh
	clck.Add(10 * time.Minute)
	<-calls

	// cached record is bypassed on request
	c.RequestRefresh()
	<-calls

	cancel()
	<-done
}
