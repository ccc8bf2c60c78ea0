package provider

import (
	"errors"
	"sync"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/benbjohnson/clock"
	"github.com/dvla-io/dvla/api"
)

var bus = EventBus.New()

const reset = "reset"

// ResetCached invalidates all cached values
func ResetCached() {
	bus.Publish(reset)
}

// Cached wraps a getter with a cache
type Cached[T any] struct {
	mux     sync.Mutex
	clock   clock.Clock
	updated time.Time
	cache   time.Duration
	getter  func() (T, error)
	val     T
	err     error
}

// NewCachedWithClock wraps a getter with a cache using the given clock
func NewCachedWithClock[T any](clock clock.Clock, g func() (T, error), cache time.Duration) *Cached[T] {
	c := &Cached[T]{
		clock:  clock,
		cache:  cache,
		getter: g,
	}

	_ = bus.Subscribe(reset, c.Reset)

	return c
}

// Get returns the cached value, updating it from the getter if expired
func (c *Cached[T]) Get() (T, error) {
	c.mux.Lock()
	defer c.mux.Unlock()

	if c.mustUpdate() {
		c.val, c.err = c.getter()
		c.updated = c.clock.Now()
	}

	return c.val, c.err
}

// Reset invalidates the cached value
func (c *Cached[T]) Reset() {
	c.mux.Lock()
	c.updated = time.Time{}
	c.mux.Unlock()
}

func (c *Cached[T]) mustUpdate() bool {
	return c.updated.IsZero() || c.clock.Since(c.updated) >= c.cache || errors.Is(c.err, api.ErrMustRetry)
}
