package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Role represents the role of a message sender.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a structured request from the model to invoke one tool.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// Message represents one turn in a conversation. Messages are immutable
// once appended to a log.
type Message struct {
	ID       string `json:"id"`
	ThreadID string `json:"thread_id"`

	Role    Role   `json:"role"`
	Content string `json:"content"`

	// Name identifies which agent or tool produced the message.
	Name string `json:"name,omitempty"`

	// ToolCalls holds tool invocations requested by an assistant message.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// ToolCallID links a tool-result message to the call that produced it.
	ToolCallID string `json:"tool_call_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// NewUserMessage creates a user message for a thread.
func NewUserMessage(threadID, content string) Message {
	return Message{
		ID:        uuid.Must(uuid.NewV7()).String(),
		ThreadID:  threadID,
		Role:      RoleUser,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// NewAssistantMessage creates an assistant message attributed to an agent.
func NewAssistantMessage(threadID, agentName, content string, toolCalls []ToolCall) Message {
	return Message{
		ID:        uuid.Must(uuid.NewV7()).String(),
		ThreadID:  threadID,
		Role:      RoleAssistant,
		Content:   content,
		Name:      agentName,
		ToolCalls: toolCalls,
		CreatedAt: time.Now(),
	}
}

// NewToolMessage creates a tool-result message for a previously requested call.
func NewToolMessage(threadID, toolName, toolCallID, content string) Message {
	return Message{
		ID:         uuid.Must(uuid.NewV7()).String(),
		ThreadID:   threadID,
		Role:       RoleTool,
		Content:    content,
		Name:       toolName,
		ToolCallID: toolCallID,
		CreatedAt:  time.Now(),
	}
}
