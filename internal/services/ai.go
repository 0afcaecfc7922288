package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/yukikurage/team-todo-api/internal/constants"
)

var (
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTodosSuggested     = errors.New("AI did not suggest any todos")
	ErrSuggestTextRequired    = errors.New("text is required")
)

type AIService struct {
	client *openai.Client
	model  string
}

// SuggestedTodo is an unsaved todo proposed by the model.
type SuggestedTodo struct {
	Content  string `json:"content"`
	Priority int    `json:"priority"`
}

func NewAIService(apiKey string) *AIService {
	return NewAIServiceWithConfig(openai.DefaultConfig(apiKey))
}

func NewAIServiceWithConfig(cfg openai.ClientConfig) *AIService {
	return &AIService{
		client: openai.NewClientWithConfig(cfg),
		model:  openai.GPT4o,
	}
}

// SuggestTodos extracts todos from free text using OpenAI chat completion.
func (s *AIService) SuggestTodos(ctx context.Context, text string) ([]SuggestedTodo, error) {
	if s == nil || s.client == nil {
		return nil, ErrAIServiceNotConfigured
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrSuggestTextRequired
	}

	prompt := fmt.Sprintf(`You turn notes into a team todo list.

Notes:
%s

Reply with a JSON array only, no prose:
[
  {"content": "short actionable todo", "priority": 3}
]

Rules:
- priority is an integer from 1 (low) to 5 (urgent)
- return [] when the notes contain nothing actionable`, text)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.3,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var raw []SuggestedTodo
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	suggestions := make([]SuggestedTodo, 0, len(raw))
	for _, t := range raw {
		t.Content = strings.TrimSpace(t.Content)
		if t.Content == "" {
			continue
		}
		t.Priority = clampPriority(t.Priority)
		suggestions = append(suggestions, t)
		if len(suggestions) == constants.MaxAIGeneratedTodos {
			break
		}
	}
	if len(suggestions) == 0 {
		return nil, ErrAINoTodosSuggested
	}

	return suggestions, nil
}

func clampPriority(p int) int {
	switch {
	case p == 0:
		return constants.DefaultPriority
	case p < constants.MinPriority:
		return constants.MinPriority
	case p > constants.MaxPriority:
		return constants.MaxPriority
	}
	return p
}
