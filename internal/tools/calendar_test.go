package tools

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/planwise-ai/calendar-assistant/internal/calendar"
)

// fakeCalendar records calls and returns canned results.
type fakeCalendar struct {
	events  []calendar.EventSummary
	listErr error

	created   []calendar.EventInput
	createErr error

	updatedID string
	updateErr error

	deletedID string
	deleteErr error
}

func (f *fakeCalendar) ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]calendar.EventSummary, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.events, nil
}

func (f *fakeCalendar) CreateEvent(ctx context.Context, input calendar.EventInput) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created = append(f.created, input)
	return "https://calendar.google.com/event?eid=abc", nil
}

func (f *fakeCalendar) UpdateEvent(ctx context.Context, eventID string, input calendar.EventInput) (string, error) {
	if f.updateErr != nil {
		return "", f.updateErr
	}
	f.updatedID = eventID
	return "https://calendar.google.com/event?eid=abc", nil
}

func (f *fakeCalendar) DeleteEvent(ctx context.Context, eventID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedID = eventID
	return nil
}

func callTool(t *testing.T, set Toolset, name, args string) (string, error) {
	t.Helper()
	tool, err := set.Lookup(name)
	require.NoError(t, err)
	return tool.Call(context.Background(), json.RawMessage(args))
}

func TestToolsetContainsAllCalendarTools(t *testing.T) {
	set := NewCalendarToolset(&fakeCalendar{})

	defs := set.Definitions()
	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.Name
	}
	assert.ElementsMatch(t, []string{ToolCreateEvent, ToolGetEvents, ToolUpdateEvent, ToolDeleteEvent}, names)
	assert.False(t, set.Empty())
}

func TestToolsetLookupUnknown(t *testing.T) {
	set := NewCalendarToolset(&fakeCalendar{})

	_, err := set.Lookup("send_email")
	assert.Error(t, err)
}

func TestCreateEvent(t *testing.T) {
	fake := &fakeCalendar{}
	set := NewCalendarToolset(fake)

	result, err := callTool(t, set, ToolCreateEvent, `{
		"summary": "Team standup",
		"location": "",
		"description": "Scheduled from to-do list",
		"start_time": "2026-09-02T09:00:00-07:00",
		"end_time": "2026-09-02T09:30:00-07:00",
		"attendees": []
	}`)

	require.NoError(t, err)
	require.Len(t, fake.created, 1)
	assert.Equal(t, "Team standup", fake.created[0].Summary)
	assert.True(t, fake.created[0].End.After(fake.created[0].Start))

	var decoded map[string]string
	require.NoError(t, json.Unmarshal([]byte(result), &decoded))
	assert.Contains(t, decoded["link"], "calendar.google.com")
}

func TestCreateEventInvalidArgs(t *testing.T) {
	tests := []struct {
		name string
		args string
	}{
		{"missing summary", `{"start_time":"2026-09-02T09:00:00-07:00","end_time":"2026-09-02T10:00:00-07:00"}`},
		{"non-RFC3339 start", `{"summary":"x","start_time":"tomorrow 9am","end_time":"2026-09-02T10:00:00-07:00"}`},
		{"end before start", `{"summary":"x","start_time":"2026-09-02T10:00:00-07:00","end_time":"2026-09-02T09:00:00-07:00"}`},
		{"end equals start", `{"summary":"x","start_time":"2026-09-02T09:00:00-07:00","end_time":"2026-09-02T09:00:00-07:00"}`},
		{"not JSON", `not json`},
	}

	fake := &fakeCalendar{}
	set := NewCalendarToolset(fake)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := callTool(t, set, ToolCreateEvent, tt.args)
			var toolErr *ToolError
			require.ErrorAs(t, err, &toolErr)
			assert.Equal(t, ErrorKindInvalidArgs, toolErr.Kind)
			assert.Empty(t, fake.created, "invalid arguments must not reach the calendar")
		})
	}
}

func TestGetEvents(t *testing.T) {
	fake := &fakeCalendar{events: []calendar.EventSummary{
		{ID: "evt-1", Summary: "Standup", Start: "2026-09-02T09:00:00-07:00", End: "2026-09-02T09:30:00-07:00"},
	}}
	set := NewCalendarToolset(fake)

	result, err := callTool(t, set, ToolGetEvents,
		`{"start_range":"2026-09-02T00:00:00-07:00","end_range":"2026-09-02T23:59:00-07:00"}`)

	require.NoError(t, err)
	var decoded []calendar.EventSummary
	require.NoError(t, json.Unmarshal([]byte(result), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "evt-1", decoded[0].ID)
}

func TestGetEventsEmptyDay(t *testing.T) {
	set := NewCalendarToolset(&fakeCalendar{})

	result, err := callTool(t, set, ToolGetEvents,
		`{"start_range":"2026-09-02T00:00:00-07:00","end_range":"2026-09-02T23:59:00-07:00"}`)

	require.NoError(t, err)
	assert.JSONEq(t, `[]`, result)
}

func TestUpdateEventRequiresID(t *testing.T) {
	fake := &fakeCalendar{}
	set := NewCalendarToolset(fake)

	_, err := callTool(t, set, ToolUpdateEvent,
		`{"summary":"x","start_time":"2026-09-02T09:00:00-07:00","end_time":"2026-09-02T10:00:00-07:00"}`)

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, ErrorKindInvalidArgs, toolErr.Kind)
	assert.Empty(t, fake.updatedID)
}

func TestUpdateEvent(t *testing.T) {
	fake := &fakeCalendar{}
	set := NewCalendarToolset(fake)

	_, err := callTool(t, set, ToolUpdateEvent,
		`{"event_id":"evt-1","summary":"Standup (moved)","start_time":"2026-09-02T10:00:00-07:00","end_time":"2026-09-02T10:30:00-07:00"}`)

	require.NoError(t, err)
	assert.Equal(t, "evt-1", fake.updatedID)
}

func TestDeleteEvent(t *testing.T) {
	fake := &fakeCalendar{}
	set := NewCalendarToolset(fake)

	result, err := callTool(t, set, ToolDeleteEvent, `{"event_id":"evt-1"}`)

	require.NoError(t, err)
	assert.Equal(t, "evt-1", fake.deletedID)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal([]byte(result), &decoded))
	assert.Equal(t, "deleted", decoded["status"])
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"unauthorized", &googleapi.Error{Code: http.StatusUnauthorized}, ErrorKindAuth},
		{"forbidden", &googleapi.Error{Code: http.StatusForbidden}, ErrorKindAuth},
		{"not found", &googleapi.Error{Code: http.StatusNotFound}, ErrorKindNotFound},
		{"gone", &googleapi.Error{Code: http.StatusGone}, ErrorKindNotFound},
		{"server error", &googleapi.Error{Code: http.StatusInternalServerError}, ErrorKindNetwork},
		{"timeout", context.DeadlineExceeded, ErrorKindNetwork},
		{"plain error", errors.New("connection refused"), ErrorKindNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeCalendar{listErr: tt.err}
			set := NewCalendarToolset(fake)

			_, err := callTool(t, set, ToolGetEvents,
				`{"start_range":"2026-09-02T00:00:00-07:00","end_range":"2026-09-02T23:59:00-07:00"}`)

			var toolErr *ToolError
			require.ErrorAs(t, err, &toolErr)
			assert.Equal(t, tt.want, toolErr.Kind)
			assert.Equal(t, ToolGetEvents, toolErr.Tool)
			assert.ErrorIs(t, toolErr, tt.err)
		})
	}
}
