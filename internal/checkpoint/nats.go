package checkpoint

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/planwise-ai/calendar-assistant/internal/model"
	natsclient "github.com/planwise-ai/calendar-assistant/internal/nats"
)

const (
	// StreamName is the name of the thread checkpoint stream.
	StreamName = "THREADS"

	// SubjectPrefix is the prefix for all thread subjects.
	SubjectPrefix = "thread"
)

// NATSStore is a durable checkpoint store on JetStream. Each thread maps
// to one subject and each message to one JetStream entry, so the log is
// append-only on the wire as well: a save only publishes the tail beyond
// what was already persisted.
type NATSStore struct {
	client *natsclient.Client

	// threads holds per-thread persistence cursors; writes for one thread
	// are serialized without blocking other threads.
	threads sync.Map // threadID -> *threadCursor
}

type threadCursor struct {
	mu        sync.Mutex
	persisted int
}

// NewNATSStore creates a JetStream-backed store.
func NewNATSStore(client *natsclient.Client) *NATSStore {
	return &NATSStore{client: client}
}

func (s *NATSStore) cursor(threadID string) *threadCursor {
	v, _ := s.threads.LoadOrStore(threadID, &threadCursor{})
	return v.(*threadCursor)
}

// EnsureStream ensures the thread stream exists with proper configuration.
func (s *NATSStore) EnsureStream(ctx context.Context) error {
	js := s.client.JetStream()

	_, err := js.Stream(ctx, StreamName)
	if err == nil {
		return nil // Stream already exists
	}

	_, err = js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{fmt.Sprintf("%s.>", SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      365 * 24 * time.Hour,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Compression: jetstream.S2Compression,
		DenyDelete:  true,
		DenyPurge:   true,
		Description: "Conversation thread checkpoints",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}

	return nil
}

// ThreadSubject returns the subject carrying a thread's messages.
func ThreadSubject(threadID string) string {
	return fmt.Sprintf("%s.%s.msg", SubjectPrefix, threadID)
}

// Load rebuilds a thread's state by replaying its subject.
func (s *NATSStore) Load(ctx context.Context, threadID string) (model.ConversationState, bool, error) {
	js := s.client.JetStream()

	consumer, err := js.CreateConsumer(ctx, StreamName, jetstream.ConsumerConfig{
		FilterSubject: ThreadSubject(threadID),
		AckPolicy:     jetstream.AckNonePolicy,
		DeliverPolicy: jetstream.DeliverAllPolicy,
	})
	if err != nil {
		return model.ConversationState{}, false, fmt.Errorf("failed to create consumer: %w", err)
	}

	var messages []model.Message
	for {
		batch, err := consumer.Fetch(100, jetstream.FetchMaxWait(2*time.Second))
		if err != nil {
			return model.ConversationState{}, false, fmt.Errorf("failed to fetch checkpoint: %w", err)
		}

		count := 0
		for msg := range batch.Messages() {
			var message model.Message
			if err := json.Unmarshal(msg.Data(), &message); err != nil {
				continue
			}
			messages = append(messages, message)
			count++
		}
		if batch.Error() != nil && batch.Error() != context.DeadlineExceeded {
			return model.ConversationState{}, false, fmt.Errorf("batch error: %w", batch.Error())
		}
		if count < 100 {
			break
		}
	}

	if len(messages) == 0 {
		return model.ConversationState{}, false, nil
	}

	cur := s.cursor(threadID)
	cur.mu.Lock()
	if len(messages) > cur.persisted {
		cur.persisted = len(messages)
	}
	cur.mu.Unlock()

	return model.ConversationState{
		ThreadID: threadID,
		Log:      model.NewMessageLog(messages...),
	}, true, nil
}

// Save publishes the messages appended since the last persisted point.
// Saves for the same thread are serialized.
func (s *NATSStore) Save(ctx context.Context, state model.ConversationState) error {
	if state.ThreadID == "" {
		return fmt.Errorf("checkpoint state has no thread id")
	}

	cur := s.cursor(state.ThreadID)
	cur.mu.Lock()
	defer cur.mu.Unlock()

	messages := state.Log.Messages()
	if len(messages) < cur.persisted {
		return fmt.Errorf("checkpoint for thread %s would shorten an append-only log", state.ThreadID)
	}

	subject := ThreadSubject(state.ThreadID)
	for _, msg := range messages[cur.persisted:] {
		data, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("failed to marshal message: %w", err)
		}
		if _, err := s.client.JetStream().Publish(ctx, subject, data); err != nil {
			return fmt.Errorf("failed to publish message: %w", err)
		}
		cur.persisted++
	}

	return nil
}
