package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"sideio-backend/internal/models"
)

type StatsRepo struct {
	pool *pgxpool.Pool
}

func NewStatsRepo(pool *pgxpool.Pool) *StatsRepo {
	return &StatsRepo{pool: pool}
}

func (r *StatsRepo) CountSince(ctx context.Context, since time.Time) (models.ActivityStats, error) {
	var stats models.ActivityStats
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM audit_logs WHERE created_at >= $1),
			(SELECT COUNT(*) FROM visitors WHERE created_at >= $1),
			(SELECT COUNT(*) FROM leads WHERE created_at >= $1)
	`, since).Scan(&stats.Audits, &stats.Visits, &stats.Leads)
	return stats, err
}
