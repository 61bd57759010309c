// Package agent drives LLM-backed agents over the tool adapter layer.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/planwise-ai/calendar-assistant/internal/llm"
	"github.com/planwise-ai/calendar-assistant/internal/model"
	"github.com/planwise-ai/calendar-assistant/internal/tools"
	"github.com/planwise-ai/calendar-assistant/pkg/logger"
	"github.com/planwise-ai/calendar-assistant/pkg/metrics"
)

// TurnState is the state of one agent turn.
type TurnState string

const (
	StateAwaitingModel TurnState = "awaiting_model"
	StateToolPending   TurnState = "tool_pending"
	StateDone          TurnState = "done"
	StateFailed        TurnState = "failed"
)

// RunawayLoopError reports an agent turn that exceeded its tool-call bound.
type RunawayLoopError struct {
	Agent string
	Turns int
}

func (e *RunawayLoopError) Error() string {
	return fmt.Sprintf("agent %s exceeded %d model turns without a terminal answer", e.Agent, e.Turns)
}

// Config bounds a runner's loop and its calls.
type Config struct {
	Model        string
	Temperature  float64
	MaxTurns     int
	ModelTimeout time.Duration
	ToolTimeout  time.Duration
}

// DefaultMaxTurns guards against a model that never stops requesting tools.
const DefaultMaxTurns = 10

// Runner drives one LLM in a bounded loop, honoring at most one tool
// invocation per model turn, until the model emits a non-tool answer.
type Runner struct {
	client   llm.Client
	name     string
	toolset  tools.Toolset
	systemFn systemPromptFn
	cfg      Config
	logger   *logger.Logger
}

// NewRunner creates a runner for a named agent over the given toolset.
func NewRunner(client llm.Client, name string, toolset tools.Toolset, systemFn systemPromptFn, cfg Config, log *logger.Logger) *Runner {
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = DefaultMaxTurns
	}
	return &Runner{
		client:   client,
		name:     name,
		toolset:  toolset,
		systemFn: systemFn,
		cfg:      cfg,
		logger:   log,
	}
}

// Run executes one agent turn against the log and returns the extended log
// and the terminal state. On failure the returned log carries a failure
// notice but never a tool-call message without its matching result.
func (r *Runner) Run(ctx context.Context, threadID string, log model.MessageLog) (model.MessageLog, TurnState, error) {
	for turn := 0; turn < r.cfg.MaxTurns; turn++ {
		resp, err := r.complete(ctx, log)
		if err != nil {
			metrics.AgentTurnsTotal.WithLabelValues(r.name, string(StateFailed)).Inc()
			return log.Append(failureNotice(threadID, r.name, err)), StateFailed, err
		}

		if len(resp.ToolCalls) == 0 {
			metrics.AgentTurnsTotal.WithLabelValues(r.name, string(StateDone)).Inc()
			final := model.NewAssistantMessage(threadID, r.name, resp.Content, nil)
			return log.Append(final), StateDone, nil
		}

		// One tool call per model turn. Extra requests are dropped and
		// implicitly deferred: the model must ask again next turn, which
		// keeps calendar mutations strictly sequential.
		call := resp.ToolCalls[0]
		if len(resp.ToolCalls) > 1 {
			r.logger.Warn("multiple tool calls requested, honoring first only",
				zap.String("agent", r.name),
				zap.String("honored", call.Name),
				zap.Int("dropped", len(resp.ToolCalls)-1),
			)
		}

		result, err := r.invoke(ctx, call)
		if err != nil {
			metrics.ToolCallsTotal.WithLabelValues(call.Name, "error").Inc()
			metrics.AgentTurnsTotal.WithLabelValues(r.name, string(StateFailed)).Inc()
			return log.Append(failureNotice(threadID, r.name, err)), StateFailed, err
		}
		metrics.ToolCallsTotal.WithLabelValues(call.Name, "ok").Inc()

		// Commit the call and its result as one pair so cancellation can
		// never leave a half-appended exchange.
		request := model.NewAssistantMessage(threadID, r.name, resp.Content, []model.ToolCall{
			{ID: call.ID, Name: call.Name, Arguments: call.Arguments},
		})
		log = log.Append(request, model.NewToolMessage(threadID, call.Name, call.ID, result))
	}

	err := &RunawayLoopError{Agent: r.name, Turns: r.cfg.MaxTurns}
	metrics.AgentTurnsTotal.WithLabelValues(r.name, string(StateFailed)).Inc()
	return log.Append(failureNotice(threadID, r.name, err)), StateFailed, err
}

func (r *Runner) complete(ctx context.Context, log model.MessageLog) (*llm.CompletionResponse, error) {
	if r.cfg.ModelTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.ModelTimeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := r.client.Complete(ctx, &llm.CompletionRequest{
		Model:       r.cfg.Model,
		System:      r.system(),
		Messages:    toChatMessages(log),
		Tools:       r.toolset.Definitions(),
		Temperature: r.cfg.Temperature,
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordLLMRequest(resp.Model, time.Since(start).Seconds(), resp.TokensIn, resp.TokensOut)
	return resp, nil
}

func (r *Runner) invoke(ctx context.Context, call llm.ToolCall) (string, error) {
	tool, err := r.toolset.Lookup(call.Name)
	if err != nil {
		return "", err
	}

	if r.cfg.ToolTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.ToolTimeout)
		defer cancel()
	}

	return tool.Call(ctx, call.Arguments)
}

// systemPromptFn supplies the agent's system prompt at run time, so the
// prompt can carry the current date.
type systemPromptFn func() string

func (r *Runner) system() string {
	if r.systemFn == nil {
		return ""
	}
	return r.systemFn()
}

func toChatMessages(log model.MessageLog) []llm.ChatMessage {
	messages := log.Messages()
	chat := make([]llm.ChatMessage, len(messages))
	for i, msg := range messages {
		converted := llm.ChatMessage{
			Role:       string(msg.Role),
			Content:    msg.Content,
			Name:       msg.Name,
			ToolCallID: msg.ToolCallID,
		}
		for _, call := range msg.ToolCalls {
			converted.ToolCalls = append(converted.ToolCalls, llm.ToolCall{
				ID:        call.ID,
				Name:      call.Name,
				Arguments: call.Arguments,
			})
		}
		chat[i] = converted
	}
	return chat
}

func failureNotice(threadID, agentName string, err error) model.Message {
	notice, _ := json.Marshal(map[string]string{"error": err.Error()})
	return model.NewAssistantMessage(threadID, agentName, string(notice), nil)
}
