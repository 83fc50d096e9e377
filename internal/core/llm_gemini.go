package core

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"hanpick.kr/shopping-proxy/internal/config"
	"hanpick.kr/shopping-proxy/internal/store"
)

const defaultGeminiChatModel = "gemini-2.5-flash"

// GeminiService talks to the Gemini API for chat replies and product image
// generation. It implements both ModelAdapter and ImageGenerator.
type GeminiService struct {
	client    *genai.Client
	chatModel string
}

func NewGeminiService() (*GeminiService, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(config.AppConfig.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	chatModel := config.AppConfig.ChatModel
	if chatModel == "" {
		chatModel = defaultGeminiChatModel
	}

	return &GeminiService{
		client:    client,
		chatModel: chatModel,
	}, nil
}

func (s *GeminiService) Close() {
	if s.client != nil {
		if err := s.client.Close(); err != nil {
			log.Printf("Error closing GenAI client: %v", err)
		}
	}
}

func (s *GeminiService) Reply(ctx context.Context, history []store.Message) (*ModelReply, error) {
	model := s.client.GenerativeModel(s.chatModel)

	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(shoppingSystemInstruction)},
	}
	// The system instruction expects the model to ground its pick in web
	// search results.
	model.Tools = []*genai.Tool{
		{GoogleSearchRetrieval: &genai.GoogleSearchRetrieval{}},
	}

	contents := toGeminiContents(history)
	if len(contents) == 0 {
		return nil, fmt.Errorf("history is empty for chat completion")
	}

	last := contents[len(contents)-1]
	if last.Role != "user" {
		return nil, fmt.Errorf("last message in history is not from 'user', cannot proceed with chat completion")
	}

	chatSession := model.StartChat()
	chatSession.History = contents[:len(contents)-1]

	resp, err := chatSession.SendMessage(ctx, last.Parts...)
	if err != nil {
		return nil, fmt.Errorf("gemini chat SendMessage failed: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini response was empty or had no valid candidates")
	}

	candidate := resp.Candidates[0]

	var responseText strings.Builder
	for _, part := range candidate.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			responseText.WriteString(string(txt))
		} else {
			log.Printf("Gemini response part was not text: %T", part)
		}
	}
	if responseText.Len() == 0 {
		return nil, fmt.Errorf("gemini response contained no text parts")
	}

	return &ModelReply{
		Content: responseText.String(),
		Sources: citationSources(candidate),
	}, nil
}

// toGeminiContents maps conversation messages onto Gemini roles. AI messages
// become "model"; everything else, including system notices, is sent as
// "user" since Gemini only accepts those two roles in history.
func toGeminiContents(history []store.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		if msg.Content == "" {
			continue
		}
		role := "user"
		if msg.Role == store.RoleAI {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}
	return contents
}

func citationSources(candidate *genai.Candidate) []store.Source {
	if candidate.CitationMetadata == nil {
		return nil
	}
	var sources []store.Source
	for _, cs := range candidate.CitationMetadata.CitationSources {
		if cs == nil || cs.URI == nil || *cs.URI == "" {
			continue
		}
		sources = append(sources, store.Source{
			URI:   *cs.URI,
			Title: sourceTitle(*cs.URI),
		})
	}
	return sources
}

func sourceTitle(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}

// GenerateImage asks the image model for a product photograph and returns it
// as a base64 data URL.
func (s *GeminiService) GenerateImage(ctx context.Context, productName string) (string, error) {
	prompt := fmt.Sprintf("A professional, photorealistic e-commerce product photograph of the following item: '%s'. "+
		"The item should be centered and displayed clearly on a clean, solid white background. "+
		"No text, logos, or other objects should be in the image.", productName)

	model := s.client.GenerativeModel(config.AppConfig.ImageModel)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini image generation failed: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("image generation returned no candidates")
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if blob, ok := part.(genai.Blob); ok && len(blob.Data) > 0 {
			mimeType := blob.MIMEType
			if mimeType == "" {
				mimeType = "image/jpeg"
			}
			return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(blob.Data)), nil
		}
	}
	return "", fmt.Errorf("image generation succeeded but no image bytes were returned")
}
