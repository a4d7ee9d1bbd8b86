package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditRecord is one relayed exchange, kept for the operator.
type AuditRecord struct {
	ID         uuid.UUID `json:"id"`
	UserInput  string    `json:"user_input"`
	AIResponse string    `json:"ai_response"`
	Model      string    `json:"model"`
	CreatedAt  time.Time `json:"created_at"`
}

type VisitRecord struct {
	ID        uuid.UUID `json:"id"`
	IPHash    string    `json:"ip_hash"`
	Type      string    `json:"type"` // "site_entry"
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}

// Lead is a contact-form submission.
type Lead struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Company   *string   `json:"company,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
	Message string `json:"message"`
}

// ActivityStats counts stored records over a time window.
type ActivityStats struct {
	Audits int       `json:"audits"`
	Visits int       `json:"visits"`
	Leads  int       `json:"leads"`
	Since  time.Time `json:"since"`
	Until  time.Time `json:"until"`
}
