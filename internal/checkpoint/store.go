// Package checkpoint persists conversation state per thread, enabling
// resumption across process restarts.
package checkpoint

import (
	"context"

	"github.com/planwise-ai/calendar-assistant/internal/model"
)

// Store persists conversation state keyed by thread id. Implementations
// must serialize writes per key while letting different keys proceed
// independently; the store is the single writer of record for a thread.
type Store interface {
	// Load returns the state for a thread. ok is false when the thread
	// has no checkpoint yet.
	Load(ctx context.Context, threadID string) (state model.ConversationState, ok bool, err error)

	// Save reconciles the state back under its thread key. The log is
	// append-only: a save never shortens a previously saved log.
	Save(ctx context.Context, state model.ConversationState) error
}
