package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/dvla-io/dvla/core"
	"github.com/dvla-io/dvla/core/reminder"
	"github.com/dvla-io/dvla/provider/mqtt"
	"github.com/dvla-io/dvla/push"
	"github.com/dvla-io/dvla/server"
	"github.com/dvla-io/dvla/vehicle"
	"github.com/spf13/viper"
)

type config struct {
	URI       string
	Log       string
	Levels    map[string]string
	Interval  time.Duration
	Cache     time.Duration
	APIKey    string
	URL       string
	Retry     uint
	Lead      time.Duration
	Database  string
	Metrics   bool
	Mqtt      mqtt.Config
	Influx    server.InfluxConfig
	Messaging messagingConfig
	Vehicles  []map[string]interface{}
}

type messagingConfig struct {
	Events   map[string]push.EventTemplateConfig
	Services []typedConfig
}

type typedConfig struct {
	Type  string                 `mapstructure:"type"`
	Other map[string]interface{} `mapstructure:",remain"`
}

func defaultConfig() config {
	return config{
		URI:      "0.0.0.0:7071",
		Interval: core.DefaultInterval,
		Cache:    core.DefaultCache,
		Retry:    1,
		Lead:     reminder.DefaultLead,
		Mqtt: mqtt.Config{
			Topic:     "dvla",
			Discovery: "homeassistant",
		},
	}
}

// loadConfig decodes the viper configuration into conf
func loadConfig(conf *config) error {
	if err := viper.UnmarshalExact(conf); err != nil {
		return fmt.Errorf("failed decoding config: %w", err)
	}

	if len(conf.Vehicles) == 0 {
		return errors.New("missing vehicles")
	}

	return nil
}

// vehicleConfigs decodes the vehicle list using the global settings as defaults
func vehicleConfigs(conf config) ([]vehicle.Config, error) {
	return vehicle.NewConfigs(conf.Vehicles, vehicle.Defaults{
		APIKey:   conf.APIKey,
		URL:      conf.URL,
		Retry:    conf.Retry,
		Interval: conf.Interval,
		Cache:    conf.Cache,
		Lead:     conf.Lead,
	})
}
