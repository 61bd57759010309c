// Package model defines data structures for the calendar assistant.
package model

import "errors"

// ErrEmptyLog is returned when the last message of an empty log is requested.
var ErrEmptyLog = errors.New("message log is empty")

// MessageLog is an append-only ordered record of a conversation. Append
// returns a new log that owns a fresh tail, so a log value handed to a
// caller is never mutated underneath it.
type MessageLog struct {
	messages []Message
}

// NewMessageLog creates a log from an initial sequence of messages.
func NewMessageLog(messages ...Message) MessageLog {
	ms := make([]Message, len(messages))
	copy(ms, messages)
	return MessageLog{messages: ms}
}

// Append returns a new log with the given messages added at the end.
// The receiver is left unchanged.
func (l MessageLog) Append(messages ...Message) MessageLog {
	ms := make([]Message, 0, len(l.messages)+len(messages))
	ms = append(ms, l.messages...)
	ms = append(ms, messages...)
	return MessageLog{messages: ms}
}

// Last returns the most recent message, or ErrEmptyLog.
func (l MessageLog) Last() (Message, error) {
	if len(l.messages) == 0 {
		return Message{}, ErrEmptyLog
	}
	return l.messages[len(l.messages)-1], nil
}

// Len returns the number of messages in the log.
func (l MessageLog) Len() int {
	return len(l.messages)
}

// Messages returns a copy of the ordered message sequence.
func (l MessageLog) Messages() []Message {
	ms := make([]Message, len(l.messages))
	copy(ms, l.messages)
	return ms
}

// MarshalJSON encodes the log as the plain message sequence.
func (l MessageLog) MarshalJSON() ([]byte, error) {
	return marshalMessages(l.messages)
}

// UnmarshalJSON decodes the log from a plain message sequence.
func (l *MessageLog) UnmarshalJSON(data []byte) error {
	ms, err := unmarshalMessages(data)
	if err != nil {
		return err
	}
	l.messages = ms
	return nil
}
