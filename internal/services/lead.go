package services

import (
	"context"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"sideio-backend/internal/models"
)

const (
	maxLeadNameLen    = 200
	maxLeadMessageLen = 5000
)

type LeadNotifier interface {
	SendLeadNotification(to string, lead models.Lead) error
}

// LeadService accepts contact-form submissions.
type LeadService struct {
	sink     LeadSink
	notifier LeadNotifier
	notifyTo string
	now      func() time.Time
	wg       sync.WaitGroup
}

// NewLeadService takes a nil notifier or empty notifyTo to skip the
// operator email.
func NewLeadService(sink LeadSink, notifier LeadNotifier, notifyTo string) *LeadService {
	if sink == nil {
		sink = NopSink{}
	}
	return &LeadService{
		sink:     sink,
		notifier: notifier,
		notifyTo: notifyTo,
		now:      time.Now,
	}
}

func (s *LeadService) Submit(ctx context.Context, req models.ContactRequest) (*models.Lead, error) {
	if err := validateContact(req); err != nil {
		return nil, err
	}

	lead := models.Lead{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.TrimSpace(req.Email),
		Message:   strings.TrimSpace(req.Message),
		CreatedAt: s.now().UTC(),
	}
	if company := strings.TrimSpace(req.Company); company != "" {
		lead.Company = &company
	}

	if err := s.sink.SaveLead(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to save lead: %w", err)
	}

	if s.notifier != nil && s.notifyTo != "" {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := s.notifier.SendLeadNotification(s.notifyTo, lead); err != nil {
				log.Printf("lead notification failed for %s: %v", lead.ID, err)
			}
		}()
	}

	return &lead, nil
}

// Wait blocks until pending notification emails are sent.
func (s *LeadService) Wait() {
	s.wg.Wait()
}

func validateContact(req models.ContactRequest) error {
	fields := map[string]string{}

	name := strings.TrimSpace(req.Name)
	switch {
	case name == "":
		fields["name"] = "Name is required"
	case strings.ContainsAny(name, "\r\n"):
		fields["name"] = "Name must be a single line"
	case utf8.RuneCountInString(name) > maxLeadNameLen:
		fields["name"] = fmt.Sprintf("Name must be at most %d characters", maxLeadNameLen)
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		fields["email"] = "Email is required"
	} else if _, err := mail.ParseAddress(email); err != nil {
		fields["email"] = "Email is invalid"
	}

	// The message box on the site is optional.
	if utf8.RuneCountInString(strings.TrimSpace(req.Message)) > maxLeadMessageLen {
		fields["message"] = fmt.Sprintf("Message must be at most %d characters", maxLeadMessageLen)
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
