package reminder

import (
	"math"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/dvla-io/dvla/api"
	"github.com/dvla-io/dvla/util"
)

// DateLayout is the date format of the vehicle record's due dates
const DateLayout = "2006-01-02"

// Timer tracks a due date of the vehicle record
type Timer struct {
	log    *util.Logger
	clock  clock.Clock
	key    string
	lead   time.Duration
	due    time.Time
	active bool
}

// NewTimer creates a timer for the due date stored under key
func NewTimer(log *util.Logger, clock clock.Clock, key string, lead time.Duration) *Timer {
	return &Timer{
		log:   log,
		clock: clock,
		key:   key,
		lead:  lead,
	}
}

// Key returns the record key of the tracked due date
func (t *Timer) Key() string {
	return t.key
}

// Due returns the due date or zero time if unknown
func (t *Timer) Due() time.Time {
	return t.due
}

// Update reads the due date from the record and returns true if the timer has been activated by this update
func (t *Timer) Update(r api.Record) bool {
	val, ok := r.String(t.key)
	if !ok {
		t.due = time.Time{}
		t.Stop()
		return false
	}

	due, err := time.ParseInLocation(DateLayout, val, time.Local)
	if err != nil {
		t.log.WARN.Printf("%s: invalid date: %s", t.key, val)
		t.due = time.Time{}
		t.Stop()
		return false
	}

	if !due.Equal(t.due) && !t.due.IsZero() {
		t.log.DEBUG.Printf("%s: due date changed from %s to %s", t.key, t.due.Format(DateLayout), val)
	}
	t.due = due

	return t.Active()
}

// RemainingDuration returns the duration until the due date
func (t *Timer) RemainingDuration() time.Duration {
	if t.due.IsZero() {
		return 0
	}
	return t.due.Sub(t.clock.Now())
}

// DueIn returns the number of calendar days until the due date, zero on the due date and negative if overdue
func (t *Timer) DueIn() int {
	if t.due.IsZero() {
		return 0
	}

	now := t.clock.Now().In(t.due.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	// rounding absorbs daylight saving transitions
	return int(math.Round(t.due.Sub(today).Hours() / 24))
}

// Stop deactivates the timer
func (t *Timer) Stop() {
	if t.active {
		t.active = false
		t.log.DEBUG.Printf("%s: reminder disabled", t.key)
	}
}

// Active evaluates the due date and returns true only when the timer changes from inactive to active
func (t *Timer) Active() bool {
	if t.due.IsZero() {
		return false
	}

	inWindow := t.RemainingDuration() <= t.lead

	// renewal moves the due date out of the reminder window
	if t.active {
		if !inWindow {
			t.Stop()
		}
		return false
	}

	if inWindow {
		t.active = true
		t.log.INFO.Printf("%s: due %s (%d days)", t.key, t.due.Format(DateLayout), t.DueIn())
		return true
	}

	return false
}
