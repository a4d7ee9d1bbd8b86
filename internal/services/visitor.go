package services

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"sideio-backend/internal/models"
)

const VisitTypeSiteEntry = "site_entry"

// VisitorHasher turns client IPs into keyed BLAKE2b digests so raw
// addresses never reach storage.
type VisitorHasher struct {
	key []byte
}

func NewVisitorHasher(key string) (*VisitorHasher, error) {
	if len(key) > blake2b.Size {
		return nil, fmt.Errorf("visitor hash key must be at most %d bytes, got %d", blake2b.Size, len(key))
	}
	return &VisitorHasher{key: []byte(key)}, nil
}

// NewVisitorHasherOrUnkeyed never fails: an unusable key yields an unkeyed
// hasher together with the error for the startup log.
func NewVisitorHasherOrUnkeyed(key string) (*VisitorHasher, error) {
	h, err := NewVisitorHasher(key)
	if err != nil {
		return &VisitorHasher{}, err
	}
	return h, nil
}

func (h *VisitorHasher) Hash(ip string) string {
	mac, err := blake2b.New256(h.key)
	if err != nil {
		// key length is checked in NewVisitorHasher
		sum := blake2b.Sum256([]byte(ip))
		return hex.EncodeToString(sum[:])
	}
	mac.Write([]byte(ip))
	return hex.EncodeToString(mac.Sum(nil))
}

type VisitCounter interface {
	Incr(ctx context.Context, day time.Time) error
}

// VisitService records site entries for the silent tracking beacon.
type VisitService struct {
	sink    VisitSink
	counter VisitCounter
	hasher  *VisitorHasher
	now     func() time.Time
}

// NewVisitService accepts a nil counter when Redis is not configured.
func NewVisitService(sink VisitSink, counter VisitCounter, hasher *VisitorHasher) *VisitService {
	if sink == nil {
		sink = NopSink{}
	}
	return &VisitService{
		sink:    sink,
		counter: counter,
		hasher:  hasher,
		now:     time.Now,
	}
}

// Record stores one visit. Both the record and the counter are attempted;
// the joined error is for the operator log only.
func (s *VisitService) Record(ctx context.Context, ip, userAgent string) error {
	now := s.now().UTC()

	visit := models.VisitRecord{
		ID:        uuid.New(),
		IPHash:    s.hasher.Hash(ip),
		Type:      VisitTypeSiteEntry,
		UserAgent: userAgent,
		CreatedAt: now,
	}

	var errs []error
	if err := s.sink.RecordVisit(ctx, visit); err != nil {
		errs = append(errs, fmt.Errorf("record visit: %w", err))
	}
	if s.counter != nil {
		if err := s.counter.Incr(ctx, now); err != nil {
			errs = append(errs, fmt.Errorf("count visit: %w", err))
		}
	}
	return errors.Join(errs...)
}
