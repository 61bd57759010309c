package tools

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

// ErrorKind classifies an adapter failure for the calling agent turn.
type ErrorKind string

const (
	ErrorKindAuth        ErrorKind = "auth"
	ErrorKindNotFound    ErrorKind = "not_found"
	ErrorKindNetwork     ErrorKind = "network"
	ErrorKindInvalidArgs ErrorKind = "invalid_args"
)

// ToolError is a typed adapter failure. It is surfaced to the agent turn
// rather than raised silently; the agent decides how to report it.
type ToolError struct {
	Tool string
	Kind ErrorKind
	Err  error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %s failed (%s): %v", e.Tool, e.Kind, e.Err)
}

func (e *ToolError) Unwrap() error { return e.Err }

// classifyError maps a calendar-service error onto the adapter taxonomy.
// Timeouts count as network failures, recoverable by a later turn.
func classifyError(tool string, err error) *ToolError {
	kind := ErrorKindNetwork

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			kind = ErrorKindAuth
		case http.StatusNotFound, http.StatusGone:
			kind = ErrorKindNotFound
		}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		kind = ErrorKindNetwork
	}

	return &ToolError{Tool: tool, Kind: kind, Err: err}
}

// invalidArgs builds a ToolError for arguments that failed schema validation.
func invalidArgs(tool string, err error) *ToolError {
	return &ToolError{Tool: tool, Kind: ErrorKindInvalidArgs, Err: err}
}
