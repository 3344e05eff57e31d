package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionContext identifies the browser session a request belongs to. It is
// created once per request by middleware and passed explicitly to anything
// that records events.
type SessionContext struct {
	SessionID string `json:"session_id"`
	RequestID string `json:"request_id"`
	UserID    string `json:"user_id,omitempty"`
	ClientIP  string `json:"client_ip"`
	UserAgent string `json:"user_agent"`
}

// PipelineEvent is published once per gift engine dispatch.
type PipelineEvent struct {
	ID        uuid.UUID      `json:"id"`
	Type      string         `json:"type"`
	Session   SessionContext `json:"session"`
	Mode      Mode           `json:"mode"`
	Outcome   string         `json:"outcome"`
	ItemCount int            `json:"item_count"`
	LatencyMs int64          `json:"latency_ms"`
	Error     string         `json:"error,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}
