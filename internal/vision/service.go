// Package vision recognizes wine label images through the OpenAI vision API.
package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/cellarline/cellarline-backend/pkg/config"
	apperrors "github.com/cellarline/cellarline-backend/pkg/errors"
	"github.com/cellarline/cellarline-backend/pkg/logger"
)

const recognitionPrompt = `You are a sommelier assistant. Look at the wine label photo and return a JSON object with these fields:
name (string), category (string, e.g. "red wine", "white wine", "champagne", "whiskey"), brand (string or null), vintage (integer year or null), region (string or null), country (string or null), abv (number or null).
Return only the JSON object.`

// RecognitionDTO is the structured result extracted from a label photo.
type RecognitionDTO struct {
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Brand    *string  `json:"brand,omitempty"`
	Vintage  *int     `json:"vintage,omitempty"`
	Region   *string  `json:"region,omitempty"`
	Country  *string  `json:"country,omitempty"`
	ABV      *float64 `json:"abv,omitempty"`
}

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ServiceParams configure the vision service.
type ServiceParams struct {
	Logger *logger.Logger
	Client chatCompleter
	Model  string
}

// Service calls the vision model and parses its answer.
type Service struct {
	logg   *logger.Logger
	client chatCompleter
	model  string
}

// NewService builds a vision service from config.
func NewService(logg *logger.Logger, cfg config.OpenAIConfig) (*Service, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	return NewServiceWithClient(ServiceParams{
		Logger: logg,
		Client: openai.NewClient(cfg.APIKey),
		Model:  cfg.Model,
	})
}

// NewServiceWithClient builds a vision service around an existing client.
func NewServiceWithClient(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Client == nil {
		return nil, fmt.Errorf("openai client required")
	}
	if params.Model == "" {
		return nil, fmt.Errorf("vision model required")
	}
	return &Service{logg: params.Logger, client: params.Client, model: params.Model}, nil
}

// Recognize extracts bottle attributes from a label photo URL.
func (s *Service) Recognize(ctx context.Context, imageURL string) (*RecognitionDTO, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: recognitionPrompt},
					{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: imageURL}},
				},
			},
		},
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "vision recognition failed")
	}
	if len(resp.Choices) == 0 {
		return nil, apperrors.New(apperrors.CodeDependency, "vision model returned no choices")
	}

	result, err := parseRecognition(resp.Choices[0].Message.Content)
	if err != nil {
		s.logg.Error(ctx, "unparseable vision response", err)
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "vision response was not valid JSON")
	}
	return result, nil
}

// parseRecognition tolerates models that wrap the JSON in a code fence.
func parseRecognition(content string) (*RecognitionDTO, error) {
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
		trimmed = strings.TrimSpace(trimmed)
	}

	var out RecognitionDTO
	if err := json.Unmarshal([]byte(trimmed), &out); err != nil {
		return nil, fmt.Errorf("decode recognition payload: %w", err)
	}
	if out.Name == "" && out.Category == "" {
		return nil, fmt.Errorf("recognition payload missing name and category")
	}
	return &out, nil
}
