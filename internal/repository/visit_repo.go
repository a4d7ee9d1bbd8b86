package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"sideio-backend/internal/models"
)

type VisitRepo struct {
	pool *pgxpool.Pool
}

func NewVisitRepo(pool *pgxpool.Pool) *VisitRepo {
	return &VisitRepo{pool: pool}
}

func (r *VisitRepo) RecordVisit(ctx context.Context, v models.VisitRecord) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO visitors (id, ip_hash, type, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`, v.ID, v.IPHash, v.Type, v.UserAgent, v.CreatedAt)
	return err
}
