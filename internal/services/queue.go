package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"sideio-backend/internal/models"
)

const visitCounterTTL = 90 * 24 * time.Hour

func QueueName(jobType string) string {
	return "queue:" + jobType
}

// QueueSink pushes log records onto Redis lists. worker.Pool drains them
// into Postgres.
type QueueSink struct {
	redis *redis.Client
}

func NewQueueSink(redisClient *redis.Client) *QueueSink {
	return &QueueSink{redis: redisClient}
}

func (q *QueueSink) Append(ctx context.Context, rec models.AuditRecord) error {
	return q.enqueue(ctx, models.JobTypeAuditLog, rec)
}

func (q *QueueSink) RecordVisit(ctx context.Context, v models.VisitRecord) error {
	return q.enqueue(ctx, models.JobTypeVisitLog, v)
}

func (q *QueueSink) SaveLead(ctx context.Context, l models.Lead) error {
	return q.enqueue(ctx, models.JobTypeLead, l)
}

func (q *QueueSink) enqueue(ctx context.Context, jobType string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", jobType, err)
	}

	job := models.LogJob{
		ID:         uuid.New(),
		Type:       jobType,
		Payload:    body,
		EnqueuedAt: time.Now().UTC(),
	}
	jobBytes, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode %s job: %w", jobType, err)
	}

	if err := q.redis.RPush(ctx, QueueName(jobType), jobBytes).Err(); err != nil {
		return fmt.Errorf("failed to enqueue %s job: %w", jobType, err)
	}
	return nil
}

// RedisVisitCounter keeps one counter per UTC day.
type RedisVisitCounter struct {
	redis *redis.Client
}

func NewRedisVisitCounter(redisClient *redis.Client) *RedisVisitCounter {
	return &RedisVisitCounter{redis: redisClient}
}

func VisitCounterKey(day time.Time) string {
	return "visits:" + day.UTC().Format("2006-01-02")
}

func (c *RedisVisitCounter) Incr(ctx context.Context, day time.Time) error {
	key := VisitCounterKey(day)
	pipe := c.redis.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, visitCounterTTL)
	_, err := pipe.Exec(ctx)
	return err
}
