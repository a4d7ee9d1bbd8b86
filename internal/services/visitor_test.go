package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"sideio-backend/internal/models"
)

func TestVisitorHasher(t *testing.T) {
	h1, err := NewVisitorHasher("key-one")
	if err != nil {
		t.Fatal(err)
	}
	h2, err := NewVisitorHasher("key-two")
	if err != nil {
		t.Fatal(err)
	}

	a := h1.Hash("203.0.113.7")
	if a != h1.Hash("203.0.113.7") {
		t.Error("expected hashing to be deterministic")
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}
	if strings.Contains(a, "203.0.113.7") {
		t.Error("hash must not contain the raw IP")
	}
	if a == h2.Hash("203.0.113.7") {
		t.Error("expected different keys to give different hashes")
	}
	if a == h1.Hash("203.0.113.8") {
		t.Error("expected different IPs to give different hashes")
	}
}

func TestNewVisitorHasher_KeyTooLong(t *testing.T) {
	if _, err := NewVisitorHasher(strings.Repeat("k", 65)); err == nil {
		t.Error("expected error for key longer than 64 bytes")
	}
}

func TestNewVisitorHasherOrUnkeyed(t *testing.T) {
	h, err := NewVisitorHasherOrUnkeyed(strings.Repeat("k", 65))
	if err == nil {
		t.Error("expected the key error to be reported")
	}
	if h == nil {
		t.Fatal("expected a usable hasher")
	}

	unkeyed, _ := NewVisitorHasher("")
	if h.Hash("203.0.113.7") != unkeyed.Hash("203.0.113.7") {
		t.Error("expected fallback to match the unkeyed hash")
	}

	keyed, err := NewVisitorHasherOrUnkeyed("valid-key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if keyed.Hash("203.0.113.7") == unkeyed.Hash("203.0.113.7") {
		t.Error("expected a valid key to be used")
	}
}

type memoryVisitSink struct {
	visits []models.VisitRecord
	err    error
}

func (s *memoryVisitSink) RecordVisit(ctx context.Context, v models.VisitRecord) error {
	s.visits = append(s.visits, v)
	return s.err
}

type memoryCounter struct {
	days []time.Time
	err  error
}

func (c *memoryCounter) Incr(ctx context.Context, day time.Time) error {
	c.days = append(c.days, day)
	return c.err
}

func TestVisitService_Record(t *testing.T) {
	hasher, _ := NewVisitorHasher("k")
	sink := &memoryVisitSink{}
	counter := &memoryCounter{}
	svc := NewVisitService(sink, counter, hasher)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	if err := svc.Record(context.Background(), "198.51.100.1", "Mozilla/5.0"); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}

	if len(sink.visits) != 1 {
		t.Fatalf("expected one visit, got %d", len(sink.visits))
	}
	v := sink.visits[0]
	if v.IPHash != hasher.Hash("198.51.100.1") || v.Type != VisitTypeSiteEntry || v.UserAgent != "Mozilla/5.0" {
		t.Errorf("unexpected visit record: %+v", v)
	}
	if len(counter.days) != 1 || VisitCounterKey(counter.days[0]) != "visits:2026-03-01" {
		t.Errorf("unexpected counter calls: %v", counter.days)
	}
}

func TestVisitService_Record_ReportsBothFailures(t *testing.T) {
	hasher, _ := NewVisitorHasher("")
	sink := &memoryVisitSink{err: errors.New("db down")}
	counter := &memoryCounter{err: errors.New("redis down")}
	svc := NewVisitService(sink, counter, hasher)

	err := svc.Record(context.Background(), "198.51.100.1", "")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "db down") || !strings.Contains(err.Error(), "redis down") {
		t.Errorf("expected both failures in %q", err.Error())
	}
	if len(counter.days) != 1 {
		t.Error("counter must still be attempted when the sink fails")
	}
}

func TestVisitService_NilCounter(t *testing.T) {
	hasher, _ := NewVisitorHasher("")
	svc := NewVisitService(nil, nil, hasher)

	if err := svc.Record(context.Background(), "198.51.100.1", ""); err != nil {
		t.Errorf("expected nil error with no sink or counter, got %v", err)
	}
}
