package checkpoint

import (
	"context"
	"fmt"
	"sync"

	"github.com/planwise-ai/calendar-assistant/internal/model"
)

// MemoryStore is an in-process checkpoint store. Used for tests and
// single-process deployments.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
}

type memoryEntry struct {
	mu    sync.Mutex
	state model.ConversationState
	set   bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*memoryEntry)}
}

func (s *MemoryStore) entry(threadID string) *memoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[threadID]
	if !ok {
		e = &memoryEntry{}
		s.entries[threadID] = e
	}
	return e
}

// Load returns a copy of the thread's state.
func (s *MemoryStore) Load(ctx context.Context, threadID string) (model.ConversationState, bool, error) {
	e := s.entry(threadID)
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.set {
		return model.ConversationState{}, false, nil
	}
	return e.state, true, nil
}

// Save stores the state under its thread key. Writes for the same key are
// serialized by a per-entry lock; different keys do not contend.
func (s *MemoryStore) Save(ctx context.Context, state model.ConversationState) error {
	if state.ThreadID == "" {
		return fmt.Errorf("checkpoint state has no thread id")
	}
	e := s.entry(state.ThreadID)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.set && state.Log.Len() < e.state.Log.Len() {
		return fmt.Errorf("checkpoint for thread %s would shorten an append-only log", state.ThreadID)
	}
	e.state = state
	e.set = true
	return nil
}
