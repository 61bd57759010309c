package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/planwise-ai/calendar-assistant/internal/calendar"
	"github.com/planwise-ai/calendar-assistant/internal/llm"
)

// Tool wire names.
const (
	ToolCreateEvent = "create_event"
	ToolGetEvents   = "get_events"
	ToolUpdateEvent = "update_event"
	ToolDeleteEvent = "delete_event"
)

// CalendarService is the calendar-side contract the tools call into.
// Implemented by *calendar.Client; faked in tests.
type CalendarService interface {
	ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]calendar.EventSummary, error)
	CreateEvent(ctx context.Context, input calendar.EventInput) (string, error)
	UpdateEvent(ctx context.Context, eventID string, input calendar.EventInput) (string, error)
	DeleteEvent(ctx context.Context, eventID string) error
}

// NewCalendarToolset builds the full toolset over one authorized calendar.
func NewCalendarToolset(svc CalendarService) Toolset {
	return NewToolset(
		&createEventTool{svc: svc},
		&getEventsTool{svc: svc},
		&updateEventTool{svc: svc},
		&deleteEventTool{svc: svc},
	)
}

type eventArgs struct {
	Summary     string   `json:"summary"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
	StartTime   string   `json:"start_time"`
	EndTime     string   `json:"end_time"`
	Attendees   []string `json:"attendees"`
}

func (a *eventArgs) toInput() (calendar.EventInput, error) {
	if a.Summary == "" {
		return calendar.EventInput{}, errors.New("summary is required")
	}
	start, err := time.Parse(time.RFC3339, a.StartTime)
	if err != nil {
		return calendar.EventInput{}, fmt.Errorf("start_time must be RFC3339: %w", err)
	}
	end, err := time.Parse(time.RFC3339, a.EndTime)
	if err != nil {
		return calendar.EventInput{}, fmt.Errorf("end_time must be RFC3339: %w", err)
	}
	if !end.After(start) {
		return calendar.EventInput{}, errors.New("end_time must be after start_time")
	}
	return calendar.EventInput{
		Summary:     a.Summary,
		Location:    a.Location,
		Description: a.Description,
		Start:       start,
		End:         end,
		Attendees:   a.Attendees,
	}, nil
}

const eventArgsSchema = `{
	"type": "object",
	"properties": {
		"summary": {"type": "string", "description": "Event title"},
		"location": {"type": "string", "description": "Event location, empty string if not provided"},
		"description": {"type": "string", "description": "Event description"},
		"start_time": {"type": "string", "description": "Start time in RFC3339 format including time zone"},
		"end_time": {"type": "string", "description": "End time in RFC3339 format including time zone"},
		"attendees": {"type": "array", "items": {"type": "string"}, "description": "Attendee email addresses"}
	},
	"required": ["summary", "start_time", "end_time"]
}`

type createEventTool struct {
	svc CalendarService
}

func (t *createEventTool) Name() string { return ToolCreateEvent }

func (t *createEventTool) Definition() llm.ToolDefinition {
	return llm.ToolDefinition{
		Name:        ToolCreateEvent,
		Description: "Create one Google Calendar event. Creates a duplicate if called again with the same arguments.",
		Parameters:  json.RawMessage(eventArgsSchema),
	}
}

func (t *createEventTool) Call(ctx context.Context, args json.RawMessage) (string, error) {
	var a eventArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return "", invalidArgs(ToolCreateEvent, err)
	}
	input, err := a.toInput()
	if err != nil {
		return "", invalidArgs(ToolCreateEvent, err)
	}

	link, err := t.svc.CreateEvent(ctx, input)
	if err != nil {
		return "", classifyError(ToolCreateEvent, err)
	}
	return encodeResult(map[string]string{"link": link})
}

type getEventsArgs struct {
	StartRange string `json:"start_range"`
	EndRange   string `json:"end_range"`
}

type getEventsTool struct {
	svc CalendarService
}

func (t *getEventsTool) Name() string { return ToolGetEvents }

func (t *getEventsTool) Definition() llm.ToolDefinition {
	return llm.ToolDefinition{
		Name:        ToolGetEvents,
		Description: "List calendar events within a time range. Read-only and safe to call repeatedly. Use it to find event ids before updating or deleting.",
		Parameters: json.RawMessage(`{
	"type": "object",
	"properties": {
		"start_range": {"type": "string", "description": "Start of the range in RFC3339 format"},
		"end_range": {"type": "string", "description": "End of the range in RFC3339 format"}
	},
	"required": ["start_range", "end_range"]
}`),
	}
}

func (t *getEventsTool) Call(ctx context.Context, args json.RawMessage) (string, error) {
	var a getEventsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return "", invalidArgs(ToolGetEvents, err)
	}
	start, err := time.Parse(time.RFC3339, a.StartRange)
	if err != nil {
		return "", invalidArgs(ToolGetEvents, fmt.Errorf("start_range must be RFC3339: %w", err))
	}
	end, err := time.Parse(time.RFC3339, a.EndRange)
	if err != nil {
		return "", invalidArgs(ToolGetEvents, fmt.Errorf("end_range must be RFC3339: %w", err))
	}

	events, err := t.svc.ListEvents(ctx, start, end)
	if err != nil {
		return "", classifyError(ToolGetEvents, err)
	}
	if events == nil {
		events = []calendar.EventSummary{}
	}
	return encodeResult(events)
}

type updateEventArgs struct {
	EventID string `json:"event_id"`
	eventArgs
}

type updateEventTool struct {
	svc CalendarService
}

func (t *updateEventTool) Name() string { return ToolUpdateEvent }

func (t *updateEventTool) Definition() llm.ToolDefinition {
	return llm.ToolDefinition{
		Name:        ToolUpdateEvent,
		Description: "Update an existing calendar event. The event_id must come from a prior get_events call, never guessed.",
		Parameters: json.RawMessage(`{
	"type": "object",
	"properties": {
		"event_id": {"type": "string", "description": "Id of the event, obtained from get_events"},
		"summary": {"type": "string", "description": "Event title"},
		"location": {"type": "string", "description": "Event location"},
		"description": {"type": "string", "description": "Event description"},
		"start_time": {"type": "string", "description": "Start time in RFC3339 format including time zone"},
		"end_time": {"type": "string", "description": "End time in RFC3339 format including time zone"},
		"attendees": {"type": "array", "items": {"type": "string"}, "description": "Attendee email addresses"}
	},
	"required": ["event_id", "summary", "start_time", "end_time"]
}`),
	}
}

func (t *updateEventTool) Call(ctx context.Context, args json.RawMessage) (string, error) {
	var a updateEventArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return "", invalidArgs(ToolUpdateEvent, err)
	}
	if a.EventID == "" {
		return "", invalidArgs(ToolUpdateEvent, errors.New("event_id is required"))
	}
	input, err := a.toInput()
	if err != nil {
		return "", invalidArgs(ToolUpdateEvent, err)
	}

	link, err := t.svc.UpdateEvent(ctx, a.EventID, input)
	if err != nil {
		return "", classifyError(ToolUpdateEvent, err)
	}
	return encodeResult(map[string]string{"link": link})
}

type deleteEventArgs struct {
	EventID string `json:"event_id"`
}

type deleteEventTool struct {
	svc CalendarService
}

func (t *deleteEventTool) Name() string { return ToolDeleteEvent }

func (t *deleteEventTool) Definition() llm.ToolDefinition {
	return llm.ToolDefinition{
		Name:        ToolDeleteEvent,
		Description: "Delete a calendar event. The event_id must come from a prior get_events call, never guessed.",
		Parameters: json.RawMessage(`{
	"type": "object",
	"properties": {
		"event_id": {"type": "string", "description": "Id of the event, obtained from get_events"}
	},
	"required": ["event_id"]
}`),
	}
}

func (t *deleteEventTool) Call(ctx context.Context, args json.RawMessage) (string, error) {
	var a deleteEventArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return "", invalidArgs(ToolDeleteEvent, err)
	}
	if a.EventID == "" {
		return "", invalidArgs(ToolDeleteEvent, errors.New("event_id is required"))
	}

	if err := t.svc.DeleteEvent(ctx, a.EventID); err != nil {
		return "", classifyError(ToolDeleteEvent, err)
	}
	return encodeResult(map[string]string{"status": "deleted", "event_id": a.EventID})
}

func encodeResult(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode tool result: %w", err)
	}
	return string(data), nil
}
