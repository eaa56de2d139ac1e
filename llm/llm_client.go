package llm

import (
	"context"
)

type LLMClient interface {
	// GenerateInference calls callback with the generated text, once per
	// chunk when streaming and once in total otherwise.
	GenerateInference(
		ctx context.Context,
		messages []Message,
		callback func(chunk string) error,
		opts ...LLMOption,
	) error

	GetModel() string
}

type LLMSettings struct {
	model       string  // model name
	temperature float64 // randomness (0.0 to 1.0)
	maxTokens   int     // maximum tokens to generate
	system      string  // system prompt
	stream      bool    // whether to stream response
	jsonOutput  bool    // ask the provider for a JSON object
}

type LLMOption func(*LLMSettings)

func defaultSettings(model string) LLMSettings {
	return LLMSettings{
		model:       model,
		temperature: 0.7,
		maxTokens:   4096,
	}
}

func applyOptions(model string, opts []LLMOption) LLMSettings {
	settings := defaultSettings(model)
	for _, opt := range opts {
		opt(&settings)
	}
	return settings
}

// Common options for all LLM providers
func WithTemperature(temp float64) LLMOption {
	return func(s *LLMSettings) { s.temperature = temp }
}

func WithMaxTokens(tokens int) LLMOption {
	return func(s *LLMSettings) { s.maxTokens = tokens }
}

func WithSystemPrompt(prompt string) LLMOption {
	return func(s *LLMSettings) { s.system = prompt }
}

func WithStreaming(stream bool) LLMOption {
	return func(s *LLMSettings) { s.stream = stream }
}

// WithJSONOutput asks the model to answer with a single JSON object.
func WithJSONOutput() LLMOption {
	return func(s *LLMSettings) { s.jsonOutput = true }
}

func WithModel(model string) LLMOption {
	return func(s *LLMSettings) {
		if model != "" {
			s.model = model
		}
	}
}

type Message struct {
	Role    string `json:"role"`    // "user", "assistant", "system"
	Content string `json:"content"` // the message content
}
