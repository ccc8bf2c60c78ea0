package util

import (
	"sort"
	"strings"
	"sync"
)

// Cache is a data store
type Cache struct {
	sync.Mutex
	val map[string]Param
}

// NewCache creates cache
func NewCache() *Cache {
	return &Cache{
		val: make(map[string]Param),
	}
}

// Run adds input channel's values to cache
func (c *Cache) Run(in <-chan Param) {
	log := NewLogger("cache")

	for p := range in {
		log.TRACE.Printf("%s: %v", p.UniqueID(), p.Val)
		c.Add(p.UniqueID(), p)
	}
}

// State provides a structured copy of the cached values, grouped by vehicle
func (c *Cache) State() map[string]interface{} {
	c.Lock()
	defer c.Unlock()

	res := make(map[string]interface{})
	for _, param := range c.val {
		if param.Vehicle == "" {
			res[param.Key] = param.Val
			continue
		}

		vehicle, ok := res[param.Vehicle].(map[string]interface{})
		if !ok {
			vehicle = make(map[string]interface{})
			res[param.Vehicle] = vehicle
		}
		vehicle[param.Key] = param.Val
	}

	return res
}

// All provides a copy of the cached values
func (c *Cache) All() []Param {
	c.Lock()
	defer c.Unlock()

	copy := make([]Param, 0, len(c.val))
	for _, val := range c.val {
		copy = append(copy, val)
	}

	sort.Slice(copy, func(i, j int) bool {
		return strings.Compare(copy[i].UniqueID(), copy[j].UniqueID()) < 0
	})

	return copy
}

// Vehicle returns the cached values of a single vehicle keyed by parameter name
func (c *Cache) Vehicle(vehicle string) map[string]interface{} {
	c.Lock()
	defer c.Unlock()

	res := make(map[string]interface{})
	for _, param := range c.val {
		if param.Vehicle == vehicle {
			res[param.Key] = param.Val
		}
	}

	return res
}

// Add entry to cache
func (c *Cache) Add(key string, param Param) {
	c.Lock()
	defer c.Unlock()

	c.val[key] = param
}

// Get entry from cache
func (c *Cache) Get(key string) Param {
	c.Lock()
	defer c.Unlock()

	if val, ok := c.val[key]; ok {
		return val
	}

	return Param{}
}
