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

const schedulerPromptFmt = `You are an intelligent task scheduler that assigns reasonable times to a user's tasks by analysing the user's schedule for the day. Think about how much time each task will take and in what order to schedule them.
The current date and time is %s. Schedule tasks only after the current time, with no overlap between tasks and no overlap with the existing events in the conversation.
Output all date/time values in RFC3339 format including the time zone.
Output every task with its scheduled start time and end time plus all other information you received. Respond only with valid JSON.`

// SchedulingAgent assigns non-overlapping time slots to tasks. It carries
// no tools: it reasons over context already fetched by the calendar agent,
// and all side effects are delegated back to that agent.
type SchedulingAgent struct {
	runner *Runner
	loc    *time.Location
}

// NewSchedulingAgent builds the scheduling agent with an empty toolset.
func NewSchedulingAgent(client llm.Client, loc *time.Location, cfg Config, log *logger.Logger) *SchedulingAgent {
	a := &SchedulingAgent{loc: loc}
	a.runner = NewRunner(client, NameScheduler, tools.NewToolset(), a.systemPrompt, cfg, log)
	return a
}

func (a *SchedulingAgent) systemPrompt() string {
	now := time.Now().In(a.loc).Format("02/01/2006, 15:04:05 MST")
	return fmt.Sprintf(schedulerPromptFmt, now)
}

// Run executes one scheduling turn, appending the revised plan to the log.
func (a *SchedulingAgent) Run(ctx context.Context, threadID string, log model.MessageLog) (model.MessageLog, TurnState, error) {
	return a.runner.Run(ctx, threadID, log)
}
