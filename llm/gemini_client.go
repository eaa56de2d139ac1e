package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is not set")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

func (c *GeminiClient) GetModel() string {
	return c.model
}

func (c *GeminiClient) Close() error {
	return c.client.Close()
}

func (c *GeminiClient) GenerateInference(ctx context.Context, messages []Message, callback func(chunk string) error, opts ...LLMOption) error {
	if len(messages) == 0 {
		return errors.New("no messages to send")
	}
	settings := applyOptions(c.model, opts)

	model := c.client.GenerativeModel(settings.model)
	model.SetTemperature(float32(settings.temperature))
	model.SetMaxOutputTokens(int32(settings.maxTokens))
	if settings.system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(settings.system)}}
	}
	if settings.jsonOutput {
		model.ResponseMIMEType = "application/json"
	}

	history, last := toGeminiHistory(messages)
	chat := model.StartChat()
	chat.History = history

	if !settings.stream {
		resp, err := chat.SendMessage(ctx, genai.Text(last))
		if err != nil {
			return fmt.Errorf("gemini request failed: %w", err)
		}
		return callback(geminiText(resp))
	}

	iter := chat.SendMessageStream(ctx, genai.Text(last))
	for {
		resp, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("gemini stream failed: %w", err)
		}
		if text := geminiText(resp); text != "" {
			if err := callback(text); err != nil {
				return err
			}
		}
	}
}

// toGeminiHistory splits messages into chat history and the final user text.
// Gemini names the assistant role "model".
func toGeminiHistory(messages []Message) ([]*genai.Content, string) {
	last := messages[len(messages)-1].Content
	history := make([]*genai.Content, 0, len(messages)-1)
	for _, m := range messages[:len(messages)-1] {
		role := "user"
		if m.Role == "assistant" {
			role = "model"
		}
		history = append(history, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(m.Content)}})
	}
	return history, last
}

func geminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		var sb strings.Builder
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
		return sb.String()
	}
	return ""
}
