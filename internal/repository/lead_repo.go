package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"sideio-backend/internal/models"
)

type LeadRepo struct {
	pool *pgxpool.Pool
}

func NewLeadRepo(pool *pgxpool.Pool) *LeadRepo {
	return &LeadRepo{pool: pool}
}

func (r *LeadRepo) SaveLead(ctx context.Context, l models.Lead) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO leads (id, name, email, company, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`, l.ID, l.Name, l.Email, l.Company, l.Message, l.CreatedAt)
	return err
}

