package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gcal "google.golang.org/api/calendar/v3"
)

func testClient(t *testing.T) *Client {
	t.Helper()
	c, err := NewClientWithService(nil, "America/Los_Angeles")
	require.NoError(t, err)
	return c
}

func TestNewClientWithServiceRejectsBadTimezone(t *testing.T) {
	_, err := NewClientWithService(nil, "Not/AZone")
	assert.Error(t, err)
}

func TestToEventNormalizesTimezone(t *testing.T) {
	c := testClient(t)

	// 17:00 UTC is 10:00 in Los Angeles during DST.
	start := time.Date(2026, 9, 2, 17, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	event := c.toEvent(EventInput{
		Summary: "Design review",
		Start:   start,
		End:     end,
	})

	assert.Equal(t, "2026-09-02T10:00:00-07:00", event.Start.DateTime)
	assert.Equal(t, "2026-09-02T11:00:00-07:00", event.End.DateTime)
	assert.Equal(t, "America/Los_Angeles", event.Start.TimeZone)
	assert.Equal(t, "America/Los_Angeles", event.End.TimeZone)
}

func TestToEventSetsRecurrenceAndReminders(t *testing.T) {
	c := testClient(t)

	event := c.toEvent(EventInput{
		Summary: "Write report",
		Start:   time.Now(),
		End:     time.Now().Add(time.Hour),
	})

	assert.Equal(t, []string{"RRULE:FREQ=DAILY;COUNT=1"}, event.Recurrence)

	require.NotNil(t, event.Reminders)
	assert.False(t, event.Reminders.UseDefault)
	assert.Contains(t, event.Reminders.ForceSendFields, "UseDefault")
	require.Len(t, event.Reminders.Overrides, 2)
	assert.Equal(t, "email", event.Reminders.Overrides[0].Method)
	assert.Equal(t, int64(24*60), event.Reminders.Overrides[0].Minutes)
	assert.Equal(t, "popup", event.Reminders.Overrides[1].Method)
	assert.Equal(t, int64(10), event.Reminders.Overrides[1].Minutes)
}

func TestToEventAttendees(t *testing.T) {
	c := testClient(t)

	event := c.toEvent(EventInput{
		Summary:   "Sync",
		Start:     time.Now(),
		End:       time.Now().Add(time.Hour),
		Attendees: []string{"a@example.com", "b@example.com"},
	})

	require.Len(t, event.Attendees, 2)
	assert.Equal(t, "a@example.com", event.Attendees[0].Email)
	assert.Equal(t, "b@example.com", event.Attendees[1].Email)
}

func TestToEventSummary(t *testing.T) {
	tests := []struct {
		name  string
		event *gcal.Event
		want  EventSummary
	}{
		{
			name:  "nil event",
			event: nil,
			want:  EventSummary{},
		},
		{
			name: "timed event",
			event: &gcal.Event{
				Id:      "evt-1",
				Summary: "Standup",
				Start:   &gcal.EventDateTime{DateTime: "2026-09-02T09:00:00-07:00"},
				End:     &gcal.EventDateTime{DateTime: "2026-09-02T09:30:00-07:00"},
			},
			want: EventSummary{
				ID:      "evt-1",
				Summary: "Standup",
				Start:   "2026-09-02T09:00:00-07:00",
				End:     "2026-09-02T09:30:00-07:00",
			},
		},
		{
			name: "all-day event falls back to date",
			event: &gcal.Event{
				Id:      "evt-2",
				Summary: "Company holiday",
				Start:   &gcal.EventDateTime{Date: "2026-09-07"},
				End:     &gcal.EventDateTime{Date: "2026-09-08"},
			},
			want: EventSummary{
				ID:      "evt-2",
				Summary: "Company holiday",
				Start:   "2026-09-07",
				End:     "2026-09-08",
			},
		},
		{
			name: "missing start and end",
			event: &gcal.Event{
				Id:      "evt-3",
				Summary: "Odd event",
			},
			want: EventSummary{ID: "evt-3", Summary: "Odd event"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, toEventSummary(tt.event))
		})
	}
}
