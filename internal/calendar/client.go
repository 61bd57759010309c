// Package calendar wraps the Google Calendar API for the tool adapter layer.
package calendar

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const primaryCalendarID = "primary"

// Client wraps the Google Calendar service for a single authorized user.
type Client struct {
	svc *gcal.Service
	loc *time.Location
}

// NewClient creates a calendar client from an OAuth2 token source. All
// event times are normalized to the given zone before submission.
func NewClient(ctx context.Context, ts oauth2.TokenSource, timezone string) (*Client, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid calendar timezone %q: %w", timezone, err)
	}

	svc, err := gcal.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	return &Client{svc: svc, loc: loc}, nil
}

// NewClientWithService creates a client over an existing calendar service.
// Used by tests against a stub HTTP backend.
func NewClientWithService(svc *gcal.Service, timezone string) (*Client, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid calendar timezone %q: %w", timezone, err)
	}
	return &Client{svc: svc, loc: loc}, nil
}

// Location returns the fixed zone events are normalized to.
func (c *Client) Location() *time.Location {
	return c.loc
}

// ListEvents lists events on the primary calendar within [timeMin, timeMax).
// Read-only and safe to call repeatedly.
func (c *Client) ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]EventSummary, error) {
	events, err := c.svc.Events.List(primaryCalendarID).
		TimeMin(timeMin.In(c.loc).Format(time.RFC3339)).
		TimeMax(timeMax.In(c.loc).Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	summaries := make([]EventSummary, 0, len(events.Items))
	for _, event := range events.Items {
		summaries = append(summaries, toEventSummary(event))
	}
	return summaries, nil
}

// CreateEvent creates one event and returns its HTML link. Not idempotent:
// identical inputs create duplicate events.
func (c *Client) CreateEvent(ctx context.Context, input EventInput) (string, error) {
	created, err := c.svc.Events.Insert(primaryCalendarID, c.toEvent(input)).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create event: %w", err)
	}
	return created.HtmlLink, nil
}

// UpdateEvent replaces an existing event's fields and returns its HTML link.
func (c *Client) UpdateEvent(ctx context.Context, eventID string, input EventInput) (string, error) {
	updated, err := c.svc.Events.Update(primaryCalendarID, eventID, c.toEvent(input)).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to update event %s: %w", eventID, err)
	}
	return updated.HtmlLink, nil
}

// DeleteEvent removes an event by ID.
func (c *Client) DeleteEvent(ctx context.Context, eventID string) error {
	if err := c.svc.Events.Delete(primaryCalendarID, eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete event %s: %w", eventID, err)
	}
	return nil
}

func (c *Client) toEvent(input EventInput) *gcal.Event {
	event := &gcal.Event{
		Summary:     input.Summary,
		Location:    input.Location,
		Description: input.Description,
		Start: &gcal.EventDateTime{
			DateTime: input.Start.In(c.loc).Format(time.RFC3339),
			TimeZone: c.loc.String(),
		},
		End: &gcal.EventDateTime{
			DateTime: input.End.In(c.loc).Format(time.RFC3339),
			TimeZone: c.loc.String(),
		},
		Recurrence: []string{"RRULE:FREQ=DAILY;COUNT=1"},
		Reminders: &gcal.EventReminders{
			UseDefault:      false,
			ForceSendFields: []string{"UseDefault"},
			Overrides: []*gcal.EventReminder{
				{Method: "email", Minutes: 24 * 60},
				{Method: "popup", Minutes: 10},
			},
		},
	}
	for _, email := range input.Attendees {
		event.Attendees = append(event.Attendees, &gcal.EventAttendee{Email: email})
	}
	return event
}

func toEventSummary(event *gcal.Event) EventSummary {
	if event == nil {
		return EventSummary{}
	}
	summary := EventSummary{
		ID:      event.Id,
		Summary: event.Summary,
	}
	if event.Start != nil {
		summary.Start = event.Start.DateTime
		if summary.Start == "" {
			summary.Start = event.Start.Date
		}
	}
	if event.End != nil {
		summary.End = event.End.DateTime
		if summary.End == "" {
			summary.End = event.End.Date
		}
	}
	return summary
}
