// Package service provides business logic for the calendar assistant.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/planwise-ai/calendar-assistant/internal/agent"
	"github.com/planwise-ai/calendar-assistant/internal/checkpoint"
	"github.com/planwise-ai/calendar-assistant/internal/llm"
	"github.com/planwise-ai/calendar-assistant/internal/model"
	"github.com/planwise-ai/calendar-assistant/internal/tools"
	"github.com/planwise-ai/calendar-assistant/internal/workflow"
	"github.com/planwise-ai/calendar-assistant/pkg/logger"
	"github.com/planwise-ai/calendar-assistant/pkg/metrics"
)

// ChatService accepts user messages and runs the two-agent workflow over
// the thread's checkpointed conversation state.
type ChatService struct {
	llmClient llm.Client
	store     checkpoint.Store
	agentCfg  agent.Config
	maxCycles int
	loc       *time.Location
	logger    *logger.Logger

	// locks serializes invocations per thread id; different threads run
	// concurrently and share nothing but the checkpoint store.
	locks sync.Map // threadID -> *sync.Mutex
}

// NewChatService creates a chat service.
func NewChatService(
	llmClient llm.Client,
	store checkpoint.Store,
	agentCfg agent.Config,
	maxCycles int,
	loc *time.Location,
	log *logger.Logger,
) *ChatService {
	return &ChatService{
		llmClient: llmClient,
		store:     store,
		agentCfg:  agentCfg,
		maxCycles: maxCycles,
		loc:       loc,
		logger:    log,
	}
}

// SubmitResult is the outcome of one submitted message.
type SubmitResult struct {
	ResponseForUser string                  `json:"response_for_user"`
	Failed          bool                    `json:"failed"`
	State           model.ConversationState `json:"state"`
}

// SubmitMessage appends the user's text to the thread, runs the workflow
// with tools bound to the caller's calendar, and checkpoints the result.
// On failure the returned result still carries the state up to the point
// of failure, alongside the error.
func (s *ChatService) SubmitMessage(ctx context.Context, threadID, userText string, cal tools.CalendarService) (*SubmitResult, error) {
	if userText == "" {
		return nil, fmt.Errorf("message text is empty")
	}

	lock := s.threadLock(threadID)
	lock.Lock()
	defer lock.Unlock()

	metrics.ThreadsActive.Inc()
	defer metrics.ThreadsActive.Dec()

	state, ok, err := s.store.Load(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("failed to load thread %s: %w", threadID, err)
	}
	if !ok {
		state = model.ConversationState{ThreadID: threadID}
	}

	state.Log = state.Log.Append(model.NewUserMessage(threadID, userText))

	// Tools are bound to the caller's credential for this request only,
	// so agents are rebuilt per invocation.
	calAgent := agent.NewCalendarAgent(s.llmClient, tools.NewCalendarToolset(cal), s.loc, s.agentCfg, s.logger)
	schedAgent := agent.NewSchedulingAgent(s.llmClient, s.loc, s.agentCfg, s.logger)
	wf := workflow.New(calAgent, schedAgent, s.maxCycles, s.logger)

	result, runErr := wf.Run(ctx, threadID, state.Log)
	state.Log = result.Log

	if saveErr := s.store.Save(ctx, state); saveErr != nil {
		s.logger.Error("failed to checkpoint thread",
			zap.String("thread_id", threadID),
			zap.Error(saveErr),
		)
		if runErr == nil {
			runErr = saveErr
		}
	}

	if runErr != nil {
		return &SubmitResult{
			ResponseForUser: fmt.Sprintf("Something went wrong while handling your request: %v", runErr),
			Failed:          true,
			State:           state,
		}, runErr
	}

	return &SubmitResult{
		ResponseForUser: result.Verdict.ResponseForUser,
		State:           state,
	}, nil
}

func (s *ChatService) threadLock(threadID string) *sync.Mutex {
	v, _ := s.locks.LoadOrStore(threadID, &sync.Mutex{})
	return v.(*sync.Mutex)
}
