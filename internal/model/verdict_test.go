package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeVerdict(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
		check   func(*testing.T, *AgentVerdict)
	}{
		{
			name:    "terminal verdict",
			content: `{"message":"done","needs_deep_analysis":false,"response_for_user":"Your calendar is clear tomorrow."}`,
			check: func(t *testing.T, v *AgentVerdict) {
				assert.False(t, v.NeedsDeepAnalysis)
				assert.Equal(t, "Your calendar is clear tomorrow.", v.ResponseForUser)
			},
		},
		{
			name:    "handoff verdict with scheduling context",
			content: `{"message":"needs planning","needs_deep_analysis":true,"scheduling_context":{"tasks":["write report"]},"response_for_user":""}`,
			check: func(t *testing.T, v *AgentVerdict) {
				assert.True(t, v.NeedsDeepAnalysis)
				assert.NotEmpty(t, v.SchedulingContext)
			},
		},
		{
			name:    "not JSON",
			content: "Sure, I can help with that!",
			wantErr: true,
		},
		{
			name:    "flag is a string not a boolean",
			content: `{"message":"m","needs_deep_analysis":"true","response_for_user":"r"}`,
			wantErr: true,
		},
		{
			name:    "terminal verdict with empty user response",
			content: `{"message":"m","needs_deep_analysis":false,"response_for_user":""}`,
			wantErr: true,
		},
		{
			name:    "handoff verdict with non-empty user response",
			content: `{"message":"m","needs_deep_analysis":true,"response_for_user":"premature answer"}`,
			wantErr: true,
		},
		{
			name:    "empty content",
			content: "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := DecodeVerdict(tt.content)
			if tt.wantErr {
				require.Error(t, err)
				var decodeErr *DecodeError
				assert.ErrorAs(t, err, &decodeErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, v)
		})
	}
}
