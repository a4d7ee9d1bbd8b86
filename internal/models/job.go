package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Log job types, one Redis queue each.
const (
	JobTypeAuditLog = "audit-log"
	JobTypeVisitLog = "visit-log"
	JobTypeLead     = "lead"
)

// LogJob is the envelope pushed onto the Redis log queues.
type LogJob struct {
	ID         uuid.UUID       `json:"id"`
	Type       string          `json:"type"` // "audit-log" | "visit-log" | "lead"
	Payload    json.RawMessage `json:"payload"`
	RetryCount int             `json:"retry_count"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
