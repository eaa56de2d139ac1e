package nlu

import (
	"context"
	"errors"

	"github.com/SaiNageswarS/booking-agent/llm"
)

var errModelDown = errors.New("model down")

type scriptedLLM struct {
	answer   string
	err      error
	system   string
	messages []llm.Message
}

func (s *scriptedLLM) GenerateInference(_ context.Context, messages []llm.Message, callback func(string) error, opts ...llm.LLMOption) error {
	s.messages = messages
	if s.err != nil {
		return s.err
	}
	return callback(s.answer)
}

func (s *scriptedLLM) GetModel() string { return "scripted" }
