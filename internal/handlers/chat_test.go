package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"sideio-backend/internal/models"
	"sideio-backend/internal/services"
)

type stubProvider struct {
	reply   string
	err     error
	history []models.ProviderTurn
	message string
}

func (p *stubProvider) Chat(ctx context.Context, history []models.ProviderTurn, message string) (string, error) {
	p.history = history
	p.message = message
	return p.reply, p.err
}

type stubAuditSink struct {
	mu   sync.Mutex
	recs []models.AuditRecord
	err  error
}

func (s *stubAuditSink) Append(ctx context.Context, rec models.AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, rec)
	return s.err
}

func postChat(t *testing.T, h *ChatHandler, body string) (int, models.ChatResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	h.Chat(rr, req)

	var resp models.ChatResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("response is not a {reply} object: %v", err)
	}
	return rr.Code, resp
}

func TestChatHandler_SeededGreetingIsDropped(t *testing.T) {
	provider := &stubProvider{reply: "Structural Drift detected. Core Problem: a missing moat.\n\n- **Risk**: none"}
	audit := &stubAuditSink{}
	svc := services.NewChatService(provider, audit, "gemini-1.5-flash", 0)
	h := NewChatHandler(svc)

	code, resp := postChat(t, h, `{"message":"We are pivoting to AI","history":[{"role":"ai","text":"Welcome"}]}`)
	svc.Wait()

	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if resp.Reply != provider.reply {
		t.Errorf("expected reply returned unmodified, got %q", resp.Reply)
	}
	if len(provider.history) != 0 {
		t.Errorf("expected empty provider history, got %+v", provider.history)
	}
	if provider.message != "We are pivoting to AI" {
		t.Errorf("unexpected message forwarded: %q", provider.message)
	}
	if len(audit.recs) != 1 || audit.recs[0].AIResponse != provider.reply {
		t.Errorf("expected one audit record, got %+v", audit.recs)
	}
}

func TestChatHandler_HistoryForwarded(t *testing.T) {
	provider := &stubProvider{reply: "Ambiguity detected."}
	svc := services.NewChatService(provider, nil, "gemini-1.5-flash", 0)
	h := NewChatHandler(svc)

	code, _ := postChat(t, h, `{"message":"And the pricing?","history":[{"role":"user","text":"Our plan"},{"role":"ai","text":"Clarify scope."}]}`)
	svc.Wait()

	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	want := []models.ProviderTurn{
		{Speaker: models.ProviderRoleUser, Content: "Our plan"},
		{Speaker: models.ProviderRoleModel, Content: "Clarify scope."},
	}
	if diff := cmp.Diff(want, provider.history); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}
}

func TestChatHandler_FailureReplies(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"quota", errors.New("googleapi: Error 429: Resource has been exhausted"), services.MessageQuota},
		{"content rejected", errors.New("blocked: candidate: FinishReasonSafety"), services.MessageContentRejected},
		{"credential", errors.New("googleapi: Error 400: API key not valid"), services.MessageConfiguration},
		{"unknown", errors.New("connection reset by peer"), services.MessageUnknown},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			audit := &stubAuditSink{}
			svc := services.NewChatService(&stubProvider{err: tc.err}, audit, "gemini-1.5-flash", 0)
			h := NewChatHandler(svc)

			code, resp := postChat(t, h, `{"message":"Audit my secret plan","history":[]}`)
			svc.Wait()

			if code != http.StatusInternalServerError {
				t.Errorf("expected 500, got %d", code)
			}
			if resp.Reply != tc.want {
				t.Errorf("expected %q, got %q", tc.want, resp.Reply)
			}
			if strings.Contains(resp.Reply, tc.err.Error()) || strings.Contains(resp.Reply, "secret plan") {
				t.Errorf("reply leaks provider detail or user input: %q", resp.Reply)
			}
			if len(audit.recs) != 0 {
				t.Error("failed exchanges must not be audited")
			}
		})
	}
}

func TestChatHandler_MissingKey(t *testing.T) {
	gemini, err := services.NewGeminiService(context.Background(), "", services.GeminiOptions{Model: "gemini-1.5-flash"})
	if err != nil {
		t.Fatalf("missing key must not fail construction: %v", err)
	}
	svc := services.NewChatService(gemini, nil, gemini.ModelName(), 0)
	h := NewChatHandler(svc)

	code, resp := postChat(t, h, `{"message":"Hello","history":[]}`)

	if code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", code)
	}
	if resp.Reply != services.MessageConfiguration {
		t.Errorf("expected configuration reply, got %q", resp.Reply)
	}
}

func TestChatHandler_AuditFailureIsInvisible(t *testing.T) {
	provider := &stubProvider{reply: "Institutional Clarity achieved."}
	svc := services.NewChatService(provider, &stubAuditSink{err: errors.New("db down")}, "gemini-1.5-flash", 0)
	h := NewChatHandler(svc)

	code, resp := postChat(t, h, `{"message":"Final plan","history":[]}`)
	svc.Wait()

	if code != http.StatusOK || resp.Reply != provider.reply {
		t.Errorf("expected 200 with reply, got %d %q", code, resp.Reply)
	}
}

func TestChatHandler_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"message":`},
		{"blank message", `{"message":"   ","history":[]}`},
		{"missing message", `{"history":[]}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			provider := &stubProvider{reply: "unused"}
			h := NewChatHandler(services.NewChatService(provider, nil, "m", 0))

			code, resp := postChat(t, h, tc.body)

			if code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", code)
			}
			if resp.Reply != services.MessageInvalidRequest {
				t.Errorf("unexpected reply %q", resp.Reply)
			}
			if provider.message != "" {
				t.Error("provider must not be called for a bad request")
			}
		})
	}
}

func TestPreview(t *testing.T) {
	if got := preview("short", 50); got != "short" {
		t.Errorf("preview(short) = %q", got)
	}
	if got := preview(strings.Repeat("ж", 60), 50); got != strings.Repeat("ж", 50)+"..." {
		t.Errorf("expected rune-safe truncation, got %q", got)
	}
}
