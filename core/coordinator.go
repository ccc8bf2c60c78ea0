package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/dvla-io/dvla/api"
	"github.com/dvla-io/dvla/provider"
	"github.com/dvla-io/dvla/util"
)

const (
	// DefaultInterval is the default polling interval
	DefaultInterval = 10 * time.Minute

	// DefaultCache is the minimum age of a record before a refresh reaches out to the api
	DefaultCache = time.Minute

	fetchTimeout = 30 * time.Second
)

// Listener is notified with a copy of the vehicle record after every refresh
type Listener func(api.Record)

// Coordinator polls the vehicle record on an interval and shares it with the vehicle's sensors
type Coordinator struct {
	mu        sync.RWMutex
	log       *util.Logger
	clock     clock.Clock
	api       api.Vehicle
	reg       string
	interval  time.Duration
	ctx       context.Context
	cached    *provider.Cached[api.Record]
	data      api.Record
	updated   time.Time
	sensors   []*Sensor
	listeners []Listener
	refreshC  chan struct{}
	uiChan    chan<- util.Param
}

// NewCoordinator creates a coordinator for the given registration number
func NewCoordinator(log *util.Logger, vehicle api.Vehicle, reg string, interval, cache time.Duration) *Coordinator {
	return NewCoordinatorWithClock(log, clock.New(), vehicle, reg, interval, cache)
}

// NewCoordinatorWithClock creates a coordinator using the given clock
func NewCoordinatorWithClock(log *util.Logger, clck clock.Clock, vehicle api.Vehicle, reg string, interval, cache time.Duration) *Coordinator {
	if interval <= 0 {
		interval = DefaultInterval
	}

	// a cache spanning the interval would swallow scheduled refreshes
	if cache <= 0 || cache >= interval {
		cache = interval / 2
		if cache > DefaultCache {
			cache = DefaultCache
		}
	}

	c := &Coordinator{
		log:      log,
		clock:    clck,
		api:      vehicle,
		reg:      reg,
		interval: interval,
		ctx:      context.Background(),
		refreshC: make(chan struct{}, 1),
	}

	c.cached = provider.NewCachedWithClock(clck, c.fetch, cache)

	for _, description := range SensorTypes {
		c.sensors = append(c.sensors, NewSensor(c, reg, description))
	}

	return c
}

func (c *Coordinator) fetch() (api.Record, error) {
	ctx, cancel := context.WithTimeout(c.ctx, fetchTimeout)
	defer cancel()

	return c.api.Vehicle(ctx, c.reg)
}

// Registration returns the coordinator's vehicle registration number
func (c *Coordinator) Registration() string {
	return c.reg
}

// Interval returns the polling interval
func (c *Coordinator) Interval() time.Duration {
	return c.interval
}

// Sensors returns the vehicle's sensor views
func (c *Coordinator) Sensors() []*Sensor {
	return c.sensors
}

// Sensor returns the sensor view for the given key
func (c *Coordinator) Sensor(key string) (*Sensor, error) {
	for _, s := range c.sensors {
		if s.Key == key {
			return s, nil
		}
	}
	return nil, fmt.Errorf("unknown sensor: %s", key)
}

// Data returns a copy of the current vehicle record. The record is empty if the last refresh failed.
func (c *Coordinator) Data() api.Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.Copy()
}

// Updated returns the time of the last successful refresh
func (c *Coordinator) Updated() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.updated
}

// Subscribe adds a listener that is called after every refresh
func (c *Coordinator) Subscribe(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// Prepare attaches the value channel
func (c *Coordinator) Prepare(uiChan chan<- util.Param) {
	c.uiChan = uiChan
}

// Publish sends a vehicle value to the value channel
func (c *Coordinator) Publish(key string, val interface{}) {
	if c.uiChan != nil {
		c.uiChan <- util.Param{
			Vehicle: c.reg,
			Key:     key,
			Val:     val,
		}
	}
}

// RequestRefresh invalidates the cached record and triggers a refresh of a running coordinator
func (c *Coordinator) RequestRefresh() {
	c.cached.Reset()

	select {
	case c.refreshC <- struct{}{}:
	default:
	}
}

// Refresh updates the vehicle record and notifies sensors and listeners
func (c *Coordinator) Refresh() {
	res, err := c.cached.Get()

	c.mu.Lock()
	if err != nil {
		c.log.ERROR.Printf("%s: %v", c.reg, err)
		fetchMetric.WithLabelValues(c.reg, "error").Inc()
		c.data = nil
	} else {
		c.log.DEBUG.Printf("%s: %d fields", c.reg, len(res))
		fetchMetric.WithLabelValues(c.reg, "success").Inc()
		successMetric.WithLabelValues(c.reg).Set(float64(c.clock.Now().Unix()))
		c.data = res
		c.updated = c.clock.Now()
	}

	data := c.data.Copy()
	updated := c.updated
	listeners := c.listeners
	c.mu.Unlock()

	available := !data.Empty()
	if available {
		availableMetric.WithLabelValues(c.reg).Set(1)
	} else {
		availableMetric.WithLabelValues(c.reg).Set(0)
	}

	c.publishSensors(data, updated)

	for _, l := range listeners {
		l(data)
	}
}

func (c *Coordinator) publishSensors(data api.Record, updated time.Time) {
	available := !data.Empty()
	c.Publish("available", available)

	if !available {
		return
	}

	c.Publish("updated", updated)

	for _, s := range c.sensors {
		c.Publish(s.Key, s.value(data))
	}

	c.Publish("attributes", data)
}

// Run refreshes the vehicle record on the coordinator's interval until the context is cancelled
func (c *Coordinator) Run(ctx context.Context) {
	c.ctx = ctx

	ticker := c.clock.Ticker(c.interval)
	defer ticker.Stop()

	c.Refresh()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Refresh()
		case <-c.refreshC:
			c.Refresh()
		}
	}
}
