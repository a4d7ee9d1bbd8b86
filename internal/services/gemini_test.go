package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"

	"sideio-backend/internal/models"
)

func TestGeminiService_MissingKey(t *testing.T) {
	svc, err := NewGeminiService(context.Background(), "", GeminiOptions{Model: "gemini-1.5-flash"})
	if err != nil {
		t.Fatalf("expected no error without API key, got %v", err)
	}
	defer svc.Close()

	if svc.Configured() {
		t.Error("expected service to be unconfigured")
	}

	_, err = svc.Chat(context.Background(), nil, "hello")
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
	if ClassifyFailure(err) != FailureConfiguration {
		t.Errorf("expected configuration failure")
	}
}

func TestToGeminiHistory(t *testing.T) {
	turns := []models.ProviderTurn{
		{Speaker: "user", Content: "hi"},
		{Speaker: "model", Content: "hello"},
	}

	history := toGeminiHistory(turns)
	if len(history) != 2 {
		t.Fatalf("expected 2 contents, got %d", len(history))
	}
	for i, c := range history {
		if c.Role != turns[i].Speaker {
			t.Errorf("content %d role = %q, want %q", i, c.Role, turns[i].Speaker)
		}
		if len(c.Parts) != 1 || c.Parts[0] != genai.Text(turns[i].Content) {
			t.Errorf("content %d parts = %v", i, c.Parts)
		}
	}
}

func TestExtractText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("Institutional "), genai.Text("Clarity")}}},
		},
	}
	if got := extractText(resp); got != "Institutional Clarity" {
		t.Errorf("extractText = %q", got)
	}

	if got := extractText(&genai.GenerateContentResponse{}); got != "" {
		t.Errorf("expected empty text, got %q", got)
	}
	if got := extractText(nil); got != "" {
		t.Errorf("expected empty text for nil response, got %q", got)
	}
}
