package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/dvla-io/dvla/core"
	"github.com/dvla-io/dvla/core/reminder"
	"github.com/dvla-io/dvla/core/storage"
	"github.com/dvla-io/dvla/provider/mqtt"
	"github.com/dvla-io/dvla/push"
	"github.com/dvla-io/dvla/server"
	"github.com/dvla-io/dvla/util"
	"github.com/dvla-io/dvla/vehicle"
)

// configureDatabase opens the history database if configured
func configureDatabase(file string) (*storage.DB, error) {
	if file == "" {
		return nil, nil
	}

	db, err := storage.New(file)
	if err != nil {
		return nil, fmt.Errorf("failed configuring database: %w", err)
	}

	return db, nil
}

// configureMessengers creates the push hub and returns its event channel
func configureMessengers(conf messagingConfig, cache *util.Cache) (chan push.Event, error) {
	messageChan := make(chan push.Event, 1)

	messageHub, err := push.NewHub(conf.Events, cache)
	if err != nil {
		return messageChan, fmt.Errorf("failed configuring push services: %w", err)
	}

	for _, service := range conf.Services {
		impl, err := push.NewMessengerFromConfig(service.Type, service.Other)
		if err != nil {
			return messageChan, fmt.Errorf("failed configuring push services: %w", err)
		}
		messageHub.Add(impl)
	}

	go messageHub.Run(messageChan)

	return messageChan, nil
}

// configureSite creates a coordinator per vehicle and attaches reminders and history
func configureSite(ccs []vehicle.Config, db *storage.DB, pushChan chan<- push.Event) *core.Site {
	coordinators := make([]*core.Coordinator, 0, len(ccs))

	for _, cc := range ccs {
		log := util.NewLogger("coordinator")
		c := core.NewCoordinator(log, vehicle.NewFromConfig(cc), cc.Registration, cc.Interval, cc.Cache)

		r := reminder.New(util.NewLogger("reminder"), clock.New(), cc.Registration, cc.Lead, c, pushChan)
		c.Subscribe(r.Update)

		if db != nil {
			c.Subscribe(db.Listener(cc.Registration))
		}

		coordinators = append(coordinators, c)
	}

	return core.NewSite(coordinators...)
}

// configureInflux starts the influx writer
func configureInflux(conf server.InfluxConfig, in <-chan util.Param) {
	influx := server.NewInfluxClient(
		conf.URL,
		conf.Token,
		conf.Org,
		conf.User,
		conf.Password,
		conf.Database,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := influx.Ping(ctx); err != nil {
		log.WARN.Printf("influx: %v", err)
	}

	go influx.Run(in)
}

// configureMQTT connects the broker and starts the Home Assistant publisher
func configureMQTT(conf mqtt.Config, site core.SiteAPI, in <-chan util.Param) (*mqtt.Client, error) {
	clientID := conf.ClientID
	if clientID == "" {
		clientID = mqtt.ClientID()
	}

	root := conf.RootTopic()

	client, err := mqtt.NewClient(util.NewLogger("mqtt"), conf.Broker, conf.User, conf.Password, clientID, 1, conf.Insecure, server.StatusTopic(root))
	if err != nil {
		return nil, fmt.Errorf("failed configuring mqtt: %w", err)
	}

	publisher := server.NewMQTT(client, root, conf.Discovery)
	go publisher.Run(site, in)

	return client, nil
}
