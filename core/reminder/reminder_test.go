package reminder

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/dvla-io/dvla/api"
	"github.com/dvla-io/dvla/push"
	"github.com/dvla-io/dvla/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type publisher map[string]interface{}

func (p publisher) Publish(key string, val interface{}) {
	p[key] = val
}

func TestTimer(t *testing.T) {
	clck := clock.NewMock()
	clck.Set(time.Date(2025, 11, 1, 12, 0, 0, 0, time.Local))

	timer := NewTimer(util.NewLogger("test"), clck, "taxDueDate", 30*24*time.Hour)

	// outside window
	assert.False(t, timer.Update(api.Record{"taxDueDate": "2026-01-01"}))
	assert.Equal(t, 61, timer.DueIn())

	// entering window activates once
	clck.Add(40 * 24 * time.Hour)
	assert.True(t, timer.Update(api.Record{"taxDueDate": "2026-01-01"}))
	assert.False(t, timer.Update(api.Record{"taxDueDate": "2026-01-01"}))

	// renewal deactivates
	assert.False(t, timer.Update(api.Record{"taxDueDate": "2027-01-01"}))
	assert.False(t, timer.active)

	// overdue
	assert.True(t, timer.Update(api.Record{"taxDueDate": "2025-12-01"}))
	assert.Equal(t, -10, timer.DueIn())

	// missing or invalid dates reset the timer
	assert.False(t, timer.Update(api.Record{"taxDueDate": "SORN"}))
	assert.True(t, timer.Due().IsZero())
	assert.False(t, timer.Update(api.Record{}))
	assert.Equal(t, time.Duration(0), timer.RemainingDuration())
}

func TestTimerDueIn(t *testing.T) {
	clck := clock.NewMock()
	timer := NewTimer(util.NewLogger("test"), clck, "motExpiryDate", 30*24*time.Hour)
	timer.Update(api.Record{"motExpiryDate": "2025-12-01"})

	for _, tc := range []struct {
		now  time.Time
		days int
	}{
		{time.Date(2025, 11, 30, 0, 0, 0, 0, time.Local), 1},
		{time.Date(2025, 11, 30, 9, 0, 0, 0, time.Local), 1},
		{time.Date(2025, 11, 30, 23, 59, 0, 0, time.Local), 1},
		{time.Date(2025, 12, 1, 0, 0, 0, 0, time.Local), 0},
		{time.Date(2025, 12, 1, 9, 0, 0, 0, time.Local), 0},
		{time.Date(2025, 12, 1, 23, 59, 0, 0, time.Local), 0},
		{time.Date(2025, 12, 2, 9, 0, 0, 0, time.Local), -1},
		{time.Date(2025, 3, 1, 12, 0, 0, 0, time.Local), 275},
	} {
		clck.Set(tc.now)
		assert.Equal(t, tc.days, timer.DueIn(), tc.now.String())
	}
}

func TestReminder(t *testing.T) {
	clck := clock.NewMock()
	clck.Set(time.Date(2025, 11, 1, 12, 0, 0, 0, time.Local))

	pub := make(publisher)
	events := make(chan push.Event, 10)

	r := New(util.NewLogger("test"), clck, "WN67DSO", 0, pub, events)

	r.Update(api.Record{
		"taxStatus":     "Taxed",
		"taxDueDate":    "2025-11-20",
		"motStatus":     "Valid",
		"motExpiryDate": "2026-09-14",
	})

	assert.Equal(t, 19, pub["taxDueIn"])
	assert.Equal(t, 317, pub["motDueIn"])

	require.Len(t, events, 1)
	ev := <-events
	assert.Equal(t, "taxDue", ev.Event)
	assert.Equal(t, "WN67DSO", ev.Vehicle)
	assert.Equal(t, "2025-11-20", ev.Attributes["due"])
	assert.Equal(t, "2 weeks from now", ev.Attributes["dueHuman"])

	// empty records are ignored
	r.Update(nil)
	assert.Len(t, events, 0)

	r.Update(api.Record{
		"taxStatus":     "Untaxed",
		"taxDueDate":    "2025-11-20",
		"motStatus":     "Valid",
		"motExpiryDate": "2026-09-14",
	})

	require.Len(t, events, 1)
	ev = <-events
	assert.Equal(t, "statusChange", ev.Event)
	assert.Equal(t, map[string]interface{}{"key": "taxStatus", "old": "Taxed", "new": "Untaxed"}, ev.Attributes)
}
