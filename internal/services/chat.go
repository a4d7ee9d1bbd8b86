package services

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"sideio-backend/internal/models"
)

const auditWriteTimeout = 10 * time.Second

// ChatService relays one widget message to the provider. It keeps no
// conversation state: every call rebuilds the session from the history the
// browser resends.
type ChatService struct {
	provider ChatProvider
	audit    AuditSink
	model    string
	timeout  time.Duration
	now      func() time.Time
	wg       sync.WaitGroup
}

func NewChatService(provider ChatProvider, audit AuditSink, model string, timeout time.Duration) *ChatService {
	if audit == nil {
		audit = NopSink{}
	}
	return &ChatService{
		provider: provider,
		audit:    audit,
		model:    model,
		timeout:  timeout,
		now:      time.Now,
	}
}

// Reply validates req, forwards it and returns the provider text. Provider
// failures come back as *ProviderError, a blank message as *ValidationError.
func (s *ChatService) Reply(ctx context.Context, req models.ChatRequest) (string, error) {
	if strings.TrimSpace(req.Message) == "" {
		return "", &ValidationError{Fields: map[string]string{"message": "Message is required"}}
	}

	history := SanitizeHistory(ToProviderTurns(req.History))

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	reply, err := s.provider.Chat(ctx, history, req.Message)
	if err != nil {
		return "", &ProviderError{Kind: ClassifyFailure(err), Err: err}
	}

	s.appendAudit(ctx, models.AuditRecord{
		ID:         uuid.New(),
		UserInput:  req.Message,
		AIResponse: reply,
		Model:      s.model,
		CreatedAt:  s.now().UTC(),
	})

	return reply, nil
}

// appendAudit writes rec in the background. Errors and panics stay in the
// operator log.
func (s *ChatService) appendAudit(ctx context.Context, rec models.AuditRecord) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("audit sink panic for record %s: %v", rec.ID, r)
			}
		}()

		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditWriteTimeout)
		defer cancel()

		if err := s.audit.Append(writeCtx, rec); err != nil {
			log.Printf("audit log write failed for record %s: %v", rec.ID, err)
		}
	}()
}

// Wait blocks until pending audit writes have finished.
func (s *ChatService) Wait() {
	s.wg.Wait()
}
