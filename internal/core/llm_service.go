package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"github.com/qrmlabs/chatbot-api/internal/store"
)

// Completer is the language-model dependency of the chat orchestrator.
type Completer interface {
	Complete(ctx context.Context, system string, history []store.ConversationMessage, userPrompt string) (string, error)
}

// LLMService talks to the Gemini completion API.
type LLMService struct {
	client      *genai.Client
	model       string
	temperature float32
	maxTokens   int32
	log         zerolog.Logger
}

func NewLLMService(ctx context.Context, apiKey, model string, temperature float64, maxTokens int, log zerolog.Logger) (*LLMService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &LLMService{
		client:      client,
		model:       model,
		temperature: float32(temperature),
		maxTokens:   int32(maxTokens),
		log:         log,
	}, nil
}

func (s *LLMService) Close() {
	if s.client != nil {
		if err := s.client.Close(); err != nil {
			s.log.Warn().Err(err).Msg("error closing GenAI client")
		}
	}
}

// Complete sends the prompt with the trailing conversation history and
// returns the model's text reply.
func (s *LLMService) Complete(ctx context.Context, system string, history []store.ConversationMessage, userPrompt string) (string, error) {
	model := s.client.GenerativeModel(s.model)

	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(system)},
	}

	temp := s.temperature
	maxTokens := s.maxTokens
	model.GenerationConfig = genai.GenerationConfig{
		Temperature:     &temp,
		MaxOutputTokens: &maxTokens,
	}

	session := model.StartChat()
	for _, msg := range history {
		session.History = append(session.History, &genai.Content{
			Role:  genaiRole(msg.Role),
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}

	resp, err := session.SendMessage(ctx, genai.Text(userPrompt))
	if err != nil {
		return "", fmt.Errorf("gemini SendMessage failed: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyCompletion
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		} else {
			s.log.Debug().Msgf("gemini response part was not text: %T", part)
		}
	}

	if text.Len() == 0 {
		return "", ErrEmptyCompletion
	}
	return text.String(), nil
}

func genaiRole(role string) string {
	if role == "assistant" {
		return "model"
	}
	return "user"
}
