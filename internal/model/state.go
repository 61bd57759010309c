package model

import "encoding/json"

// ConversationState is the unit of checkpointing: one thread's message log.
// The checkpoint store owns the state of record; the workflow receives a
// copy per invocation and the store reconciles the result back under the
// thread key.
type ConversationState struct {
	ThreadID string     `json:"thread_id"`
	Log      MessageLog `json:"messages"`
}

func marshalMessages(messages []Message) ([]byte, error) {
	if messages == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(messages)
}

func unmarshalMessages(data []byte) ([]Message, error) {
	var ms []Message
	if err := json.Unmarshal(data, &ms); err != nil {
		return nil, err
	}
	return ms, nil
}
