package llm

import (
	"context"
	"encoding/json"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/ollama/ollama/api"
	"go.uber.org/zap"
)

type ollamaChatter interface {
	Chat(ctx context.Context, req *api.ChatRequest, fn api.ChatResponseFunc) error
}

// OllamaClient talks to a local or remote Ollama server. OLLAMA_HOST picks
// the server.
type OllamaClient struct {
	client ollamaChatter
	model  string
}

func NewOllamaClient(model string) LLMClient {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		logger.Fatal("Failed to create ollama client", zap.Error(err))
		return nil
	}
	return &OllamaClient{client: client, model: model}
}

func (c *OllamaClient) GetModel() string {
	return c.model
}

func (c *OllamaClient) GenerateInference(ctx context.Context, messages []Message, callback func(chunk string) error, opts ...LLMOption) error {
	settings := applyOptions(c.model, opts)

	msgs := make([]api.Message, 0, len(messages)+1)
	if settings.system != "" {
		msgs = append(msgs, api.Message{Role: "system", Content: settings.system})
	}
	for _, m := range messages {
		msgs = append(msgs, api.Message{Role: m.Role, Content: m.Content})
	}

	stream := settings.stream
	req := &api.ChatRequest{
		Model:    settings.model,
		Messages: msgs,
		Stream:   &stream,
		Options: map[string]any{
			"temperature": settings.temperature,
			"num_predict": settings.maxTokens,
		},
	}
	if settings.jsonOutput {
		req.Format = json.RawMessage(`"json"`)
	}

	return c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		if resp.Message.Content == "" {
			return nil
		}
		return callback(resp.Message.Content)
	})
}
