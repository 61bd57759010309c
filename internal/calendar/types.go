package calendar

import "time"

// EventSummary is the condensed view of a calendar event returned to agents.
type EventSummary struct {
	ID      string `json:"id"`
	Summary string `json:"summary"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

// EventInput holds the fields for creating or updating an event.
type EventInput struct {
	Summary     string
	Location    string
	Description string
	Start       time.Time
	End         time.Time
	Attendees   []string
}
