package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/planwise-ai/calendar-assistant/internal/llm"
	"github.com/planwise-ai/calendar-assistant/internal/model"
	"github.com/planwise-ai/calendar-assistant/internal/tools"
	"github.com/planwise-ai/calendar-assistant/pkg/logger"
)

// Agent node names, also used as the Name on messages they produce.
const (
	NameCalendar  = "calendar"
	NameScheduler = "scheduler"
)

const calendarPromptFmt = `You are an intelligent assistant that manages a Google Calendar using the tools you are provided.
Today's date is %s and the calendar time zone is %s.
You can call only one tool at a time; once you create one event you have to call again to create another event.
While updating or deleting events, first get all the events for the mentioned date from 12am to 11:59pm with get_events, then use the id of that particular event. Never guess an event id.
Output all date/time values in RFC3339 format including the time zone.
If the user has provided a to-do list or asks to schedule tasks:
 1. Parse the input and extract each task.
 2. Fetch the events of the mentioned day with get_events from 12am to 11:59pm.
 3. If you do not have start and end times for each task, set needs_deep_analysis to true and stop. A scheduling specialist will supply times for each task; you can create events only after that.
 4. If you do have times, set needs_deep_analysis to false and create the events, one create_event call per task, in task order.
 5. For each scheduled task call create_event with: summary = the task description, location = empty string unless provided, description = "Scheduled from to-do list", start_time and end_time as scheduled, attendees = empty list.
Your final answer must be only a valid JSON object with no extra characters, in this exact shape:
 - message: message for the next agent.
 - needs_deep_analysis: boolean, true only when scheduling help is needed.
 - scheduling_context: object with the task and schedule information gathered so far.
 - response_for_user: the answer for the user, formatted in a friendly way, when needs_deep_analysis is false; otherwise an empty string.`

// CalendarAgent parses calendar requests, fetches the day's events, and
// issues event mutations once concrete times are known.
type CalendarAgent struct {
	runner *Runner
	loc    *time.Location
}

// NewCalendarAgent builds the calendar agent over the full calendar toolset.
func NewCalendarAgent(client llm.Client, toolset tools.Toolset, loc *time.Location, cfg Config, log *logger.Logger) *CalendarAgent {
	a := &CalendarAgent{loc: loc}
	a.runner = NewRunner(client, NameCalendar, toolset, a.systemPrompt, cfg, log)
	return a
}

func (a *CalendarAgent) systemPrompt() string {
	today := time.Now().In(a.loc).Format("2006-01-02")
	return fmt.Sprintf(calendarPromptFmt, today, a.loc.String())
}

// Run executes one calendar-agent turn.
func (a *CalendarAgent) Run(ctx context.Context, threadID string, log model.MessageLog) (model.MessageLog, TurnState, error) {
	return a.runner.Run(ctx, threadID, log)
}
