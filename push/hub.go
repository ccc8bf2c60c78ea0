package push

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/dvla-io/dvla/util"
)

// Event is a notification event
type Event struct {
	Vehicle    string
	Event      string
	Attributes map[string]interface{}
}

// EventTemplateConfig is the push message configuration for an event
type EventTemplateConfig struct {
	Title, Msg string
}

// DefaultTemplates are used for events without explicit configuration
var DefaultTemplates = map[string]EventTemplateConfig{
	"taxDue": {
		Title: "Vehicle tax due",
		Msg:   "{{.vehicle}}: vehicle tax due {{.dueHuman}} ({{.due}})",
	},
	"motDue": {
		Title: "MOT due",
		Msg:   "{{.vehicle}}: MOT expires {{.dueHuman}} ({{.due}})",
	},
	"statusChange": {
		Title: "Vehicle status changed",
		Msg:   "{{.vehicle}}: {{.key}} changed from {{.old}} to {{.new}}",
	},
}

// Hub subscribes to event notifications and sends them to client devices
type Hub struct {
	log         *util.Logger
	definitions map[string]EventTemplateConfig
	sender      []Messenger
	cache       *util.Cache
}

// NewHub creates push hub with definitions and receiver
func NewHub(cc map[string]EventTemplateConfig, cache *util.Cache) (*Hub, error) {
	definitions := make(map[string]EventTemplateConfig, len(DefaultTemplates))
	for k, v := range DefaultTemplates {
		definitions[k] = v
	}
	for k, v := range cc {
		definitions[k] = v
	}

	// instantiate all event templates to catch errors early
	for k, v := range definitions {
		if _, err := template.New("out").Funcs(sprig.TxtFuncMap()).Parse(v.Title); err != nil {
			return nil, fmt.Errorf("invalid event title: %s (%w)", k, err)
		}
		if _, err := template.New("out").Funcs(sprig.TxtFuncMap()).Parse(v.Msg); err != nil {
			return nil, fmt.Errorf("invalid event message: %s (%w)", k, err)
		}
	}

	h := &Hub{
		log:         util.NewLogger("push"),
		definitions: definitions,
		cache:       cache,
	}

	return h, nil
}

// Add adds a sender to the list of senders
func (h *Hub) Add(sender Messenger) {
	h.sender = append(h.sender, sender)
}

// apply applies the event template to the cached vehicle values and event attributes
func (h *Hub) apply(ev Event, tmpl string) (string, error) {
	attr := make(map[string]interface{})

	if h.cache != nil && ev.Vehicle != "" {
		for k, v := range h.cache.Vehicle(ev.Vehicle) {
			attr[k] = v
		}
	}

	for k, v := range ev.Attributes {
		attr[k] = v
	}
	attr["vehicle"] = ev.Vehicle

	t, err := template.New("out").Funcs(sprig.TxtFuncMap()).Option("missingkey=zero").Parse(tmpl)
	if err != nil {
		return "", err
	}

	var b bytes.Buffer
	if err := t.Execute(&b, attr); err != nil {
		return "", err
	}

	return strings.TrimSpace(strings.ReplaceAll(b.String(), "<no value>", "")), nil
}

// Send renders the event and sends it to all senders
func (h *Hub) Send(ev Event) {
	definition, ok := h.definitions[ev.Event]
	if !ok {
		h.log.DEBUG.Printf("no template for event: %s", ev.Event)
		return
	}

	title, err := h.apply(ev, definition.Title)
	if err != nil {
		h.log.ERROR.Printf("invalid title template for %s: %v", ev.Event, err)
		return
	}

	msg, err := h.apply(ev, definition.Msg)
	if err != nil {
		h.log.ERROR.Printf("invalid message template for %s: %v", ev.Event, err)
		return
	}

	h.log.DEBUG.Printf("%s: %s", ev.Event, msg)

	for _, sender := range h.sender {
		go sender.Send(title, msg)
	}
}

// Run is the Hub's main publishing loop
func (h *Hub) Run(events <-chan Event) {
	for ev := range events {
		if len(h.sender) == 0 {
			continue
		}

		h.Send(ev)
	}
}
