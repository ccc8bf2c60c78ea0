package reminder

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/dustin/go-humanize"
	"github.com/dvla-io/dvla/api"
	"github.com/dvla-io/dvla/push"
	"github.com/dvla-io/dvla/util"
)

// DefaultLead is the default reminder window before a due date
const DefaultLead = 30 * 24 * time.Hour

// Publisher publishes derived vehicle values
type Publisher interface {
	Publish(key string, val interface{})
}

type schedule struct {
	timer *Timer
	event string
	param string
}

// Reminder derives due date reminders and status changes from vehicle records
type Reminder struct {
	log       *util.Logger
	clock     clock.Clock
	vehicle   string
	publisher Publisher
	pushChan  chan<- push.Event
	schedules []schedule
	status    map[string]string
}

// New creates a reminder for a single vehicle
func New(log *util.Logger, clck clock.Clock, vehicle string, lead time.Duration, publisher Publisher, pushChan chan<- push.Event) *Reminder {
	if lead <= 0 {
		lead = DefaultLead
	}

	return &Reminder{
		log:       log,
		clock:     clck,
		vehicle:   vehicle,
		publisher: publisher,
		pushChan:  pushChan,
		schedules: []schedule{
			{timer: NewTimer(log, clck, "taxDueDate", lead), event: "taxDue", param: "taxDueIn"},
			{timer: NewTimer(log, clck, "motExpiryDate", lead), event: "motDue", param: "motDueIn"},
		},
		status: make(map[string]string),
	}
}

// Update evaluates the record. Empty records are ignored.
func (r *Reminder) Update(rec api.Record) {
	if rec.Empty() {
		return
	}

	for _, s := range r.schedules {
		activated := s.timer.Update(rec)

		if due := s.timer.Due(); !due.IsZero() {
			r.publish(s.param, s.timer.DueIn())
		}

		if activated {
			due := s.timer.Due()
			r.push(s.event, map[string]interface{}{
				"key":      s.timer.Key(),
				"due":      due.Format(DateLayout),
				"dueHuman": humanize.RelTime(due, r.clock.Now(), "ago", "from now"),
				"dueIn":    s.timer.DueIn(),
			})
		}
	}

	for _, key := range []string{"taxStatus", "motStatus"} {
		val, ok := rec.String(key)
		if !ok {
			continue
		}

		if old, ok := r.status[key]; ok && old != val {
			r.log.INFO.Printf("%s: %s changed from %s to %s", r.vehicle, key, old, val)
			r.push("statusChange", map[string]interface{}{
				"key": key,
				"old": old,
				"new": val,
			})
		}

		r.status[key] = val
	}
}

func (r *Reminder) publish(key string, val interface{}) {
	if r.publisher != nil {
		r.publisher.Publish(key, val)
	}
}

func (r *Reminder) push(event string, attrs map[string]interface{}) {
	if r.pushChan != nil {
		r.pushChan <- push.Event{
			Vehicle:    r.vehicle,
			Event:      event,
			Attributes: attrs,
		}
	}
}
