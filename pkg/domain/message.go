package domain

import "time"

// Role classifies who produced a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is a single conversation entry. Messages are immutable once
// appended; the transcript only grows.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Node      NodeID    `json:"node"`
	Timestamp time.Time `json:"timestamp"`
}
