package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"sideio-backend/internal/models"
)

// ChatProvider is a text-generation backend able to continue a
// conversation seeded with prior turns.
type ChatProvider interface {
	Chat(ctx context.Context, history []models.ProviderTurn, message string) (string, error)
}

type GeminiOptions struct {
	Model             string
	SystemInstruction string
	MaxOutputTokens   int
	Temperature       float64
}

type GeminiService struct {
	client *genai.Client
	opts   GeminiOptions
}

// NewGeminiService creates the Gemini client. An empty apiKey is not an
// error: the service is returned unconfigured and every Chat call fails
// with ErrMissingAPIKey.
func NewGeminiService(ctx context.Context, apiKey string, opts GeminiOptions) (*GeminiService, error) {
	if apiKey == "" {
		return &GeminiService{opts: opts}, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiService{
		client: client,
		opts:   opts,
	}, nil
}

func (s *GeminiService) Configured() bool {
	return s.client != nil
}

func (s *GeminiService) ModelName() string {
	return s.opts.Model
}

func (s *GeminiService) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

// newModel builds a fresh model handle per request. GenerativeModel carries
// mutable settings, so it is never shared between requests.
func (s *GeminiService) newModel() *genai.GenerativeModel {
	model := s.client.GenerativeModel(s.opts.Model)
	model.SetTemperature(float32(s.opts.Temperature))
	if s.opts.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(int32(s.opts.MaxOutputTokens))
	}
	if s.opts.SystemInstruction != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(s.opts.SystemInstruction)},
		}
	}
	return model
}

// Chat starts a new chat session seeded with history, sends message and
// returns the generated text as-is.
func (s *GeminiService) Chat(ctx context.Context, history []models.ProviderTurn, message string) (string, error) {
	if s.client == nil {
		return "", ErrMissingAPIKey
	}

	cs := s.newModel().StartChat()
	cs.History = toGeminiHistory(history)

	resp, err := cs.SendMessage(ctx, genai.Text(message))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	for i, cand := range resp.Candidates {
		if cand.FinishReason != genai.FinishReasonStop {
			log.Printf("WARNING: Gemini candidate %d stopped due to %s", i, cand.FinishReason)
		}
	}

	text := extractText(resp)
	if strings.TrimSpace(text) == "" {
		return "", errors.New("Gemini returned empty text")
	}

	return text, nil
}

func toGeminiHistory(turns []models.ProviderTurn) []*genai.Content {
	history := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		history = append(history, &genai.Content{
			Role:  t.Speaker,
			Parts: []genai.Part{genai.Text(t.Content)},
		})
	}
	return history
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	if resp == nil {
		return ""
	}
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
