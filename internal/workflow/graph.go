// Package workflow wires the calendar and scheduling agents into an
// explicit state machine with a bounded cycle count.
package workflow

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/planwise-ai/calendar-assistant/internal/agent"
	"github.com/planwise-ai/calendar-assistant/internal/model"
	"github.com/planwise-ai/calendar-assistant/pkg/logger"
	"github.com/planwise-ai/calendar-assistant/pkg/metrics"
)

// Node is a state in the orchestration graph.
type Node string

const (
	NodeStart     Node = "start"
	NodeCalendar  Node = "calendar"
	NodeScheduler Node = "scheduler"
	NodeEnd       Node = "end"
	NodeFailed    Node = "failed"
)

// DefaultMaxCycles bounds calendar->scheduler->calendar round trips.
const DefaultMaxCycles = 4

// WorkflowStalledError reports a graph whose decision flag never settled.
type WorkflowStalledError struct {
	Cycles int
}

func (e *WorkflowStalledError) Error() string {
	return fmt.Sprintf("workflow stalled after %d scheduler cycles", e.Cycles)
}

// AgentNode is one agent step in the graph. Both agents satisfy it.
type AgentNode interface {
	Run(ctx context.Context, threadID string, log model.MessageLog) (model.MessageLog, agent.TurnState, error)
}

// Workflow executes START -> CALENDAR -> {SCHEDULER -> CALENDAR}* -> END.
type Workflow struct {
	calendar  AgentNode
	scheduler AgentNode
	maxCycles int
	logger    *logger.Logger
}

// New builds a workflow over the two agents.
func New(calendar, scheduler AgentNode, maxCycles int, log *logger.Logger) *Workflow {
	if maxCycles <= 0 {
		maxCycles = DefaultMaxCycles
	}
	return &Workflow{
		calendar:  calendar,
		scheduler: scheduler,
		maxCycles: maxCycles,
		logger:    log,
	}
}

// Result is the outcome of one graph invocation.
type Result struct {
	Log     model.MessageLog
	Node    Node
	Verdict *model.AgentVerdict
}

// Run executes the graph over the given log until END or a failure. The
// returned log always reflects progress up to the point of failure.
func (w *Workflow) Run(ctx context.Context, threadID string, log model.MessageLog) (*Result, error) {
	node := NodeCalendar
	cycles := 0

	for {
		if err := ctx.Err(); err != nil {
			return &Result{Log: log, Node: NodeFailed}, err
		}

		switch node {
		case NodeCalendar:
			next, state, err := w.calendar.Run(ctx, threadID, log)
			log = next
			if err != nil {
				w.logger.Error("calendar agent turn failed",
					zap.String("thread_id", threadID),
					zap.String("state", string(state)),
					zap.Error(err),
				)
				return &Result{Log: log, Node: NodeFailed}, err
			}

			verdict, target, err := Decide(log)
			if err != nil {
				return &Result{Log: log, Node: NodeFailed}, err
			}
			if target == NodeEnd {
				return &Result{Log: log, Node: NodeEnd, Verdict: verdict}, nil
			}

			cycles++
			metrics.WorkflowCyclesTotal.Inc()
			if cycles > w.maxCycles {
				err := &WorkflowStalledError{Cycles: cycles - 1}
				return &Result{Log: log, Node: NodeFailed}, err
			}
			node = NodeScheduler

		case NodeScheduler:
			next, state, err := w.scheduler.Run(ctx, threadID, log)
			log = next
			if err != nil {
				w.logger.Error("scheduling agent turn failed",
					zap.String("thread_id", threadID),
					zap.String("state", string(state)),
					zap.Error(err),
				)
				return &Result{Log: log, Node: NodeFailed}, err
			}
			// Control returns to the calendar agent unconditionally: the
			// scheduler only produces timing information, never effects.
			node = NodeCalendar
		}
	}
}

// Decide is the pure routing function over the last message. A verdict
// that cannot be decoded is a fatal routing error; there is no safe
// default route.
func Decide(log model.MessageLog) (*model.AgentVerdict, Node, error) {
	last, err := log.Last()
	if err != nil {
		return nil, NodeFailed, err
	}

	verdict, err := model.DecodeVerdict(last.Content)
	if err != nil {
		return nil, NodeFailed, err
	}

	if verdict.NeedsDeepAnalysis {
		return verdict, NodeScheduler, nil
	}
	return verdict, NodeEnd, nil
}
