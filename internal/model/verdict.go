package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// AgentVerdict is the terminal JSON the calendar agent emits for a turn.
type AgentVerdict struct {
	Message           string          `json:"message"`
	NeedsDeepAnalysis bool            `json:"needs_deep_analysis"`
	SchedulingContext json.RawMessage `json:"scheduling_context,omitempty"`
	ResponseForUser   string          `json:"response_for_user"`
}

// DecodeError reports a verdict that could not be parsed as the required
// JSON schema. There is no safe default route on a malformed verdict.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("verdict decode failed: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// DecodeVerdict parses message content as an agent verdict. The
// needs_deep_analysis flag must be a plain JSON boolean; string or
// otherwise malformed flags are rejected rather than guessed at.
func DecodeVerdict(content string) (*AgentVerdict, error) {
	var v AgentVerdict
	dec := json.NewDecoder(bytes.NewReader([]byte(content)))
	if err := dec.Decode(&v); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if !v.NeedsDeepAnalysis && v.ResponseForUser == "" {
		return nil, &DecodeError{Err: errors.New("response_for_user is empty on a terminal verdict")}
	}
	if v.NeedsDeepAnalysis && v.ResponseForUser != "" {
		return nil, &DecodeError{Err: errors.New("response_for_user must be empty on a scheduling handoff")}
	}
	return &v, nil
}
