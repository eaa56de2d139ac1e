package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/SaiNageswarS/go-api-boot/logger"
)

type GroqClient struct {
	apiKey     string
	httpClient *http.Client
	url        string
	model      string
}

func NewGroqClient(model string) LLMClient {
	apiKey := os.Getenv("GROQ_API_KEY")
	if apiKey == "" {
		logger.Fatal("GROQ_API_KEY environment variable is not set")
		return nil
	}

	return newGroqClient(apiKey, model)
}

func newGroqClient(apiKey, model string) *GroqClient {
	return &GroqClient{
		apiKey:     apiKey,
		httpClient: &http.Client{},
		url:        "https://api.groq.com/openai/v1/chat/completions",
		model:      model,
	}
}

func (c *GroqClient) GetModel() string {
	return c.model
}

func (c *GroqClient) GenerateInference(ctx context.Context, messages []Message, callback func(chunk string) error, opts ...LLMOption) error {
	settings := applyOptions(c.model, opts)

	request := groqRequest{
		Model:       settings.model,
		Messages:    messages,
		Temperature: settings.temperature,
		MaxTokens:   settings.maxTokens,
		Stream:      settings.stream,
	}
	if settings.jsonOutput {
		request.ResponseFormat = &groqResponseFormat{Type: "json_object"}
	}

	// Groq takes the system prompt as the first message.
	if settings.system != "" {
		systemMsg := Message{
			Role:    "system",
			Content: settings.system,
		}
		request.Messages = append([]Message{systemMsg}, request.Messages...)
	}

	return c.makeRequest(ctx, request, callback)
}

func (c *GroqClient) makeRequest(ctx context.Context, request groqRequest, callback func(chunk string) error) error {
	jsonData, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	if request.Stream {
		return readSSE(resp.Body, func(data string) (bool, error) {
			if data == "[DONE]" {
				return true, nil
			}
			var chunk groqStreamChunk
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				return false, fmt.Errorf("error unmarshaling stream chunk: %w", err)
			}
			if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
				return false, nil
			}
			return false, callback(chunk.Choices[0].Delta.Content)
		})
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response: %w", err)
	}

	var response groqResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return fmt.Errorf("error unmarshaling response: %w", err)
	}

	if len(response.Choices) == 0 {
		return fmt.Errorf("no choices in response")
	}

	if content := response.Choices[0].Message.Content; content != "" && callback != nil {
		return callback(content)
	}

	return nil
}

// Groq API types
type groqRequest struct {
	Model          string              `json:"model"`
	Messages       []Message           `json:"messages"`
	Temperature    float64             `json:"temperature,omitempty"`
	MaxTokens      int                 `json:"max_completion_tokens,omitempty"`
	Stream         bool                `json:"stream,omitempty"`
	ResponseFormat *groqResponseFormat `json:"response_format,omitempty"`
}

type groqResponseFormat struct {
	Type string `json:"type"`
}

type groqResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []groqChoice `json:"choices"`
	Usage   groqUsage    `json:"usage"`
}

type groqChoice struct {
	Index        int         `json:"index"`
	Message      groqMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type groqStreamChunk struct {
	Choices []struct {
		Delta groqMessage `json:"delta"`
	} `json:"choices"`
}

type groqUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
