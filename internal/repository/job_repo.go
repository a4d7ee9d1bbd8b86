package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"sideio-backend/internal/models"
)

// JobRepo keeps log jobs that ran out of retries so nothing is lost
// silently.
type JobRepo struct {
	pool *pgxpool.Pool
}

func NewJobRepo(pool *pgxpool.Pool) *JobRepo {
	return &JobRepo{pool: pool}
}

func (r *JobRepo) SaveFailed(ctx context.Context, j *models.LogJob, errMsg string) error {
	payload := []byte(j.Payload)
	if len(payload) == 0 {
		payload = []byte("{}")
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO failed_jobs (id, type, payload, retry_count, error_message, enqueued_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET retry_count = EXCLUDED.retry_count, error_message = EXCLUDED.error_message, failed_at = NOW()
	`, j.ID, j.Type, payload, j.RetryCount, errMsg, j.EnqueuedAt)
	return err
}
