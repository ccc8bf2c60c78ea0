package server

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dvla-io/dvla/core"
	"github.com/dvla-io/dvla/provider/mqtt"
	"github.com/dvla-io/dvla/util"
)

// HomeAssistantStatus is the topic Home Assistant announces its birth message on
const HomeAssistantStatus = "homeassistant/status"

// Publisher is the mqtt publishing interface
type Publisher interface {
	Publish(topic string, retained bool, payload interface{}) error
	Listen(topic string, callback func(string)) error
}

// Discovery is the Home Assistant mqtt discovery sensor configuration
type Discovery struct {
	Name                string          `json:"name"`
	Icon                string          `json:"ic,omitempty"`
	UniqueID            string          `json:"uniq_id"`
	ObjectID            string          `json:"obj_id,omitempty"`
	StateTopic          string          `json:"stat_t"`
	JSONAttributesTopic string          `json:"json_attr_t,omitempty"`
	AvailabilityTopic   string          `json:"avty_t"`
	PayloadAvailable    string          `json:"pl_avail"`
	PayloadNotAvailable string          `json:"pl_not_avail"`
	Device              DiscoveryDevice `json:"dev"`
}

// DiscoveryDevice is the device block of a discovery message
type DiscoveryDevice struct {
	Identifiers      []string `json:"ids"`
	Name             string   `json:"name"`
	Manufacturer     string   `json:"mf,omitempty"`
	ConfigurationURL string   `json:"cu,omitempty"`
}

// MQTT is the MQTT server. It uses the MQTT client for publishing.
type MQTT struct {
	log       *util.Logger
	Handler   Publisher
	root      string
	discovery string
	site      core.SiteAPI
	announced map[string]string
}

// NewMQTT creates MQTT server
func NewMQTT(handler Publisher, root, discovery string) *MQTT {
	return &MQTT{
		log:       util.NewLogger("mqtt"),
		Handler:   handler,
		root:      root,
		discovery: strings.TrimRight(discovery, "/"),
		announced: make(map[string]string),
	}
}

func (m *MQTT) vehicleTopic(reg string) string {
	return fmt.Sprintf("%s/%s", m.root, strings.ToLower(reg))
}

// StatusTopic returns the bridge availability topic
func StatusTopic(root string) string {
	return root + "/status"
}

func (m *MQTT) encode(v interface{}) string {
	var s string
	switch val := v.(type) {
	case time.Time:
		s = val.Format(time.RFC3339)
	case time.Duration:
		// must be before stringer to convert to seconds instead of string
		s = fmt.Sprintf("%d", int64(val.Seconds()))
	case float64:
		s = fmt.Sprintf("%.5g", val)
	case fmt.Stringer:
		s = val.String()
	default:
		if b, err := json.Marshal(val); err == nil && (strings.HasPrefix(string(b), "{") || strings.HasPrefix(string(b), "[")) {
			s = string(b)
		} else {
			s = fmt.Sprintf("%v", val)
		}
	}
	return s
}

func (m *MQTT) publish(topic string, retained bool, payload interface{}) {
	if err := m.Handler.Publish(topic, retained, m.encode(payload)); err != nil {
		m.log.ERROR.Printf("publish %s: %v", topic, err)
	}
}

// DiscoveryConfig creates the discovery message of the given sensor
func (m *MQTT) DiscoveryConfig(s *core.Sensor, reg string) Discovery {
	topic := m.vehicleTopic(reg)
	dev := s.DeviceInfo()

	ids := make([]string, 0, len(dev.Identifiers))
	for _, id := range dev.Identifiers {
		ids = append(ids, strings.Join(id[:], "_"))
	}

	return Discovery{
		Name:                s.Name,
		Icon:                s.Icon,
		UniqueID:            s.UniqueID(),
		ObjectID:            s.UniqueID(),
		StateTopic:          fmt.Sprintf("%s/%s", topic, s.Key),
		JSONAttributesTopic: topic + "/attributes",
		AvailabilityTopic:   topic + "/available",
		PayloadAvailable:    "true",
		PayloadNotAvailable: "false",
		Device: DiscoveryDevice{
			Identifiers:      ids,
			Name:             dev.Name,
			Manufacturer:     dev.Manufacturer,
			ConfigurationURL: dev.ConfigurationURL,
		},
	}
}

func (m *MQTT) discoveryTopic(s *core.Sensor) string {
	return fmt.Sprintf("%s/sensor/%s/config", m.discovery, s.UniqueID())
}

// announce publishes discovery messages for the vehicle's sensors if not yet done for the current manufacturer
func (m *MQTT) announce(v *core.Coordinator, force bool) {
	if m.discovery == "" {
		return
	}

	reg := v.Registration()
	manufacturer, _ := v.Data().String("make")

	if last, ok := m.announced[reg]; ok && last == manufacturer && !force {
		return
	}
	m.announced[reg] = manufacturer

	for _, s := range v.Sensors() {
		b, err := json.Marshal(m.DiscoveryConfig(s, reg))
		if err != nil {
			m.log.ERROR.Printf("discovery %s: %v", s.UniqueID(), err)
			continue
		}

		m.publish(m.discoveryTopic(s), true, string(b))
	}
}

func (m *MQTT) announceAll(force bool) {
	for _, v := range m.site.Vehicles() {
		m.announce(v, force)
	}
}

// Run starts the MQTT publisher for the MQTT API
func (m *MQTT) Run(site core.SiteAPI, in <-chan util.Param) {
	m.site = site

	// re-announce discovery when home assistant restarts
	reannounce := make(chan struct{}, 1)
	if m.discovery != "" {
		if err := m.Handler.Listen(HomeAssistantStatus, func(payload string) {
			if payload == mqtt.AvailabilityOnline {
				select {
				case reannounce <- struct{}{}:
				default:
				}
			}
		}); err != nil {
			m.log.ERROR.Printf("subscribe %s: %v", HomeAssistantStatus, err)
		}
	}

	m.announceAll(true)

	for {
		select {
		case <-reannounce:
			m.log.DEBUG.Println("home assistant online, re-announcing sensors")
			m.announceAll(true)

		case p, ok := <-in:
			if !ok {
				return
			}
			m.handle(p)
		}
	}
}

func (m *MQTT) handle(p util.Param) {
	if p.Vehicle == "" {
		m.publish(fmt.Sprintf("%s/%s", m.root, p.Key), true, p.Val)
		return
	}

	// manufacturer is part of the device info
	if p.Key == "make" {
		if v, err := m.site.Vehicle(p.Vehicle); err == nil {
			m.announce(v, false)
		}
	}

	m.publish(fmt.Sprintf("%s/%s", m.vehicleTopic(p.Vehicle), p.Key), true, p.Val)
}
