package services

import (
	"context"

	"sideio-backend/internal/models"
)

// AuditSink appends relayed exchanges to an operator log. Callers treat it
// as fire-and-forget.
type AuditSink interface {
	Append(ctx context.Context, rec models.AuditRecord) error
}

type VisitSink interface {
	RecordVisit(ctx context.Context, v models.VisitRecord) error
}

type LeadSink interface {
	SaveLead(ctx context.Context, l models.Lead) error
}

// NopSink discards everything. Used when no store is configured.
type NopSink struct{}

func (NopSink) Append(context.Context, models.AuditRecord) error      { return nil }
func (NopSink) RecordVisit(context.Context, models.VisitRecord) error { return nil }
func (NopSink) SaveLead(context.Context, models.Lead) error           { return nil }
