package vehicle

import (
	"errors"
	"fmt"
	"time"

	"github.com/dvla-io/dvla/api"
	"github.com/dvla-io/dvla/util"
	"github.com/dvla-io/dvla/vehicle/dvla"
	"github.com/imdario/mergo"
)

// Config is the configuration of a single vehicle
type Config struct {
	Registration string
	APIKey       string
	URL          string
	Retry        uint
	Interval     time.Duration
	Cache        time.Duration
	Lead         time.Duration
}

// Defaults are applied to vehicle configurations that don't set them
type Defaults struct {
	APIKey   string
	URL      string
	Retry    uint
	Interval time.Duration
	Cache    time.Duration
	Lead     time.Duration
}

// Validate checks the configuration for completeness
func (c Config) Validate() error {
	if c.Registration == "" {
		return errors.New("missing registration")
	}

	if c.APIKey == "" {
		return fmt.Errorf("%s: missing api key", c.Registration)
	}

	return nil
}

// NewConfigs decodes and validates vehicle configurations and applies defaults
func NewConfigs(other []map[string]interface{}, defaults Defaults) ([]Config, error) {
	res := make([]Config, 0, len(other))
	regs := make([]string, 0, len(other))

	for i, o := range other {
		var cc Config
		if err := util.DecodeOther(o, &cc); err != nil {
			return nil, fmt.Errorf("vehicle %d: %w", i+1, err)
		}

		if err := mergo.Merge(&cc, Config{
			APIKey:   defaults.APIKey,
			URL:      defaults.URL,
			Retry:    defaults.Retry,
			Interval: defaults.Interval,
			Cache:    defaults.Cache,
			Lead:     defaults.Lead,
		}); err != nil {
			return nil, err
		}

		res = append(res, cc)
		regs = append(regs, cc.Registration)
	}

	regs, err := ensureUnique(regs)
	if err != nil {
		return nil, err
	}

	for i := range res {
		res[i].Registration = regs[i]

		if err := res[i].Validate(); err != nil {
			return nil, err
		}
	}

	return res, nil
}

// NewFromConfig creates the vehicle api for the given configuration
func NewFromConfig(cc Config) api.Vehicle {
	log := util.NewLogger("dvla")
	return dvla.NewAPI(log, cc.URL, cc.APIKey, cc.Retry)
}
