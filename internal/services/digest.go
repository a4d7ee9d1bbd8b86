package services

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"sideio-backend/internal/models"
)

const (
	digestLastSentKey  = "digest:last_sent_at"
	digestInterval     = 24 * time.Hour
	digestPollInterval = 1 * time.Hour
)

type ActivityCounter interface {
	CountSince(ctx context.Context, since time.Time) (models.ActivityStats, error)
}

type DigestSender interface {
	SendDailyDigest(to string, stats models.ActivityStats) error
}

// DigestScheduler emails the operator a daily count of audits, visits and
// leads. The last-sent time lives in Redis when available so restarts do
// not resend.
type DigestScheduler struct {
	stats    ActivityCounter
	sender   DigestSender
	to       string
	redis    *redis.Client
	lastSent string
	stopChan chan struct{}
}

// NewDigestScheduler accepts a nil redisClient; the last-sent time is then
// kept in memory.
func NewDigestScheduler(stats ActivityCounter, sender DigestSender, to string, redisClient *redis.Client) *DigestScheduler {
	return &DigestScheduler{
		stats:    stats,
		sender:   sender,
		to:       to,
		redis:    redisClient,
		stopChan: make(chan struct{}),
	}
}

func (s *DigestScheduler) Start() {
	if s.stats == nil || s.sender == nil || s.to == "" {
		return
	}

	go s.loop()
	log.Printf("Digest scheduler started")
}

func (s *DigestScheduler) Stop() {
	select {
	case <-s.stopChan:
		return
	default:
		close(s.stopChan)
	}
}

func (s *DigestScheduler) loop() {
	// Run on startup as well as by interval.
	s.runOnce(context.Background(), time.Now().UTC())

	ticker := time.NewTicker(digestPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.runOnce(context.Background(), time.Now().UTC())
		}
	}
}

func (s *DigestScheduler) runOnce(ctx context.Context, now time.Time) {
	if !shouldSendByLastSent(s.loadLastSent(ctx), digestInterval, now) {
		return
	}

	stats, err := s.stats.CountSince(ctx, now.Add(-digestInterval))
	if err != nil {
		log.Printf("daily digest: failed to load stats: %v", err)
		return
	}
	stats.Since = now.Add(-digestInterval)
	stats.Until = now

	if err := s.sender.SendDailyDigest(s.to, stats); err != nil {
		log.Printf("daily digest: failed to send to %s: %v", s.to, err)
		return
	}

	s.storeLastSent(ctx, now)
}

func (s *DigestScheduler) loadLastSent(ctx context.Context) string {
	if s.redis == nil {
		return s.lastSent
	}
	val, err := s.redis.Get(ctx, digestLastSentKey).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("daily digest: failed to read last sent at: %v", err)
		}
		return s.lastSent
	}
	return val
}

func (s *DigestScheduler) storeLastSent(ctx context.Context, now time.Time) {
	s.lastSent = now.Format(time.RFC3339)
	if s.redis == nil {
		return
	}
	if err := s.redis.Set(ctx, digestLastSentKey, s.lastSent, 0).Err(); err != nil {
		log.Printf("daily digest: failed to persist last sent at: %v", err)
	}
}

func shouldSendByLastSent(lastSentRaw string, minInterval time.Duration, now time.Time) bool {
	if lastSentRaw == "" {
		return true
	}

	lastSentAt, err := time.Parse(time.RFC3339, lastSentRaw)
	if err != nil {
		return true
	}

	return now.Sub(lastSentAt) >= minInterval
}
