package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"sideio-backend/internal/models"
	"sideio-backend/internal/services"
)

const (
	maxJobAttempts = 3
	popTimeout     = 5 * time.Second
	lockTTL        = 2 * time.Minute
	storeTimeout   = 10 * time.Second
)

// FailedJobStore keeps jobs that exhausted their retries.
type FailedJobStore interface {
	SaveFailed(ctx context.Context, job *models.LogJob, errMsg string) error
}

// Pool drains the Redis log queues into the configured stores.
type Pool struct {
	redis       *redis.Client
	audits      services.AuditSink
	visits      services.VisitSink
	leads       services.LeadSink
	failed      FailedJobStore
	workerCount int

	// push re-queues a job body; it is RPUSH on the pool's client.
	push func(ctx context.Context, queue string, body []byte) error

	retryMu sync.Mutex
	retries map[*time.Timer]*models.LogJob
	retryWG sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewPool(
	redisClient *redis.Client,
	audits services.AuditSink,
	visits services.VisitSink,
	leads services.LeadSink,
	failed FailedJobStore,
	workerCount int,
) *Pool {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		redis:       redisClient,
		audits:      audits,
		visits:      visits,
		leads:       leads,
		failed:      failed,
		workerCount: workerCount,
		retries:     make(map[*time.Timer]*models.LogJob),
		ctx:         ctx,
		cancel:      cancel,
	}
	p.push = func(ctx context.Context, queue string, body []byte) error {
		return p.redis.RPush(ctx, queue, body).Err()
	}
	return p
}

func Queues() []string {
	return []string{
		services.QueueName(models.JobTypeAuditLog),
		services.QueueName(models.JobTypeVisitLog),
		services.QueueName(models.JobTypeLead),
	}
}

func (p *Pool) Start() {
	queues := Queues()
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i, queues)
	}

	log.Printf("Started %d log worker goroutines", p.workerCount)
}

// Stop cancels the pop loops, waits for in-flight jobs and re-queues
// pending retries immediately so they survive the shutdown.
func (p *Pool) Stop() {
	p.cancel()
	p.wg.Wait()

	p.retryMu.Lock()
	var flush []*models.LogJob
	for timer, job := range p.retries {
		if timer.Stop() {
			flush = append(flush, job)
			delete(p.retries, timer)
		}
	}
	p.retryMu.Unlock()

	for _, job := range flush {
		p.requeue(job)
		p.retryWG.Done()
	}
	p.retryWG.Wait()
}

func (p *Pool) worker(id int, queues []string) {
	defer p.wg.Done()

	for {
		if p.ctx.Err() != nil {
			log.Printf("Log worker %d shutting down", id)
			return
		}

		result, err := p.redis.BLPop(p.ctx, popTimeout, queues...).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && p.ctx.Err() == nil {
				log.Printf("Log worker %d: BLPOP failed: %v", id, err)
				time.Sleep(time.Second)
			}
			continue
		}

		if len(result) < 2 {
			continue
		}

		var job models.LogJob
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			log.Printf("Log worker %d: failed to parse job: %v", id, err)
			continue
		}

		// Jobs run on a detached context so Stop does not abort a write
		// that was already popped.
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)

		lockKey := fmt.Sprintf("job_lock:%s", job.ID.String())
		locked, err := p.redis.SetNX(ctx, lockKey, "1", lockTTL).Result()
		if err != nil || !locked {
			cancel()
			continue
		}

		if err := p.process(ctx, &job); err != nil {
			p.handleFailure(&job, err)
		}

		p.redis.Del(ctx, lockKey)
		cancel()
	}
}

func (p *Pool) process(ctx context.Context, job *models.LogJob) error {
	switch job.Type {
	case models.JobTypeAuditLog:
		var rec models.AuditRecord
		if err := json.Unmarshal(job.Payload, &rec); err != nil {
			return fmt.Errorf("invalid audit payload: %w", err)
		}
		return p.audits.Append(ctx, rec)
	case models.JobTypeVisitLog:
		var v models.VisitRecord
		if err := json.Unmarshal(job.Payload, &v); err != nil {
			return fmt.Errorf("invalid visit payload: %w", err)
		}
		return p.visits.RecordVisit(ctx, v)
	case models.JobTypeLead:
		var l models.Lead
		if err := json.Unmarshal(job.Payload, &l); err != nil {
			return fmt.Errorf("invalid lead payload: %w", err)
		}
		return p.leads.SaveLead(ctx, l)
	default:
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

func (p *Pool) handleFailure(job *models.LogJob, err error) {
	job.RetryCount++

	if job.RetryCount >= maxJobAttempts {
		log.Printf("Log job %s (%s) failed after %d attempts: %v", job.ID, job.Type, job.RetryCount, err)
		if p.failed != nil {
			ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
			defer cancel()
			if saveErr := p.failed.SaveFailed(ctx, job, err.Error()); saveErr != nil {
				log.Printf("Log job %s dropped, dead-letter write failed: %v", job.ID, saveErr)
			}
		}
		return
	}

	log.Printf("Log job %s (%s) failed (attempt %d): %v, retrying", job.ID, job.Type, job.RetryCount, err)

	p.retryMu.Lock()
	defer p.retryMu.Unlock()

	p.retryWG.Add(1)
	var timer *time.Timer
	timer = time.AfterFunc(retryBackoff(job.RetryCount), func() {
		defer p.retryWG.Done()

		p.retryMu.Lock()
		delete(p.retries, timer)
		p.retryMu.Unlock()

		p.requeue(job)
	})
	p.retries[timer] = job
}

func (p *Pool) requeue(job *models.LogJob) {
	jobBytes, err := json.Marshal(job)
	if err != nil {
		log.Printf("Log job %s could not be encoded for retry: %v", job.ID, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := p.push(ctx, services.QueueName(job.Type), jobBytes); err != nil {
		log.Printf("Log job %s could not be re-queued: %v", job.ID, err)
	}
}

func retryBackoff(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt)) * time.Second
}
