package core

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dvla-io/dvla/util"
)

// SiteAPI is the external site API
type SiteAPI interface {
	Vehicles() []*Coordinator
	Vehicle(reg string) (*Coordinator, error)
}

// Site groups the coordinators of all configured vehicles
type Site struct {
	log      *util.Logger
	vehicles []*Coordinator
}

var _ SiteAPI = (*Site)(nil)

// NewSite creates a site from the given coordinators
func NewSite(vehicles ...*Coordinator) *Site {
	return &Site{
		log:      util.NewLogger("site"),
		vehicles: vehicles,
	}
}

// Vehicles returns all vehicle coordinators
func (site *Site) Vehicles() []*Coordinator {
	return site.vehicles
}

// Vehicle returns the coordinator for the given registration number
func (site *Site) Vehicle(reg string) (*Coordinator, error) {
	reg = strings.ToUpper(strings.ReplaceAll(reg, " ", ""))

	for _, v := range site.vehicles {
		if v.Registration() == reg {
			return v, nil
		}
	}

	return nil, fmt.Errorf("unknown vehicle: %s", reg)
}

// Prepare attaches the value channel to all coordinators
func (site *Site) Prepare(uiChan chan<- util.Param) {
	for _, v := range site.vehicles {
		v.Prepare(uiChan)
	}
}

// DumpConfig site configuration
func (site *Site) DumpConfig() {
	site.log.INFO.Printf("site config: %d vehicle(s)", len(site.vehicles))

	for _, v := range site.vehicles {
		site.log.INFO.Printf("  vehicle %s: interval %v, %d sensors", v.Registration(), v.Interval(), len(v.Sensors()))
	}
}

// Run starts all coordinators and blocks until the context is cancelled and all coordinators have stopped
func (site *Site) Run(ctx context.Context) {
	var wg sync.WaitGroup

	for _, v := range site.vehicles {
		wg.Add(1)
		go func(v *Coordinator) {
			defer wg.Done()
			v.Run(ctx)
		}(v)
	}

	wg.Wait()
}
