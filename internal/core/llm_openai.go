package core

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"hanpick.kr/shopping-proxy/internal/config"
	"hanpick.kr/shopping-proxy/internal/store"
)

// OpenAIService is the alternative chat provider. It has no web grounding,
// so replies carry no sources.
type OpenAIService struct {
	client *openai.Client
	model  string
}

func NewOpenAIService() (*OpenAIService, error) {
	if config.AppConfig.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	model := config.AppConfig.ChatModel
	if model == "" {
		model = openai.GPT4o
	}

	return &OpenAIService{
		client: openai.NewClient(config.AppConfig.OpenAIAPIKey),
		model:  model,
	}, nil
}

func (s *OpenAIService) Reply(ctx context.Context, history []store.Message) (*ModelReply, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: shoppingSystemInstruction,
	})

	for _, msg := range history {
		if msg.Content == "" {
			continue
		}
		role := openai.ChatMessageRoleUser
		if msg.Role == store.RoleAI {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Content,
		})
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    s.model,
		Messages: messages,
	})
	if err != nil {
		return nil, fmt.Errorf("openai chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("openai response was empty")
	}

	return &ModelReply{Content: resp.Choices[0].Message.Content}, nil
}
