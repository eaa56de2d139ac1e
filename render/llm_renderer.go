package render

import (
	"context"
	"strings"

	"github.com/SaiNageswarS/booking-agent/booking"
	"github.com/SaiNageswarS/booking-agent/catalog"
	"github.com/SaiNageswarS/booking-agent/llm"
	"github.com/SaiNageswarS/booking-agent/memory"
	"github.com/SaiNageswarS/booking-agent/prompts"
	"github.com/SaiNageswarS/go-api-boot/logger"
	"go.uber.org/zap"
)

// LLMRenderer answers free-form questions with a model and falls back to
// Templates for everything else and on any failure.
type LLMRenderer struct {
	client    llm.LLMClient
	templates *Templates
	window    *memory.Window
	reword    bool
}

type LLMRendererOption func(*LLMRenderer)

// WithRewording lets the model reword booking replies. A rewording that drops
// any booking fact is discarded in favour of the template text.
func WithRewording() LLMRendererOption {
	return func(r *LLMRenderer) { r.reword = true }
}

func NewLLMRenderer(client llm.LLMClient, cat *catalog.Catalog, window *memory.Window, opts ...LLMRendererOption) *LLMRenderer {
	r := &LLMRenderer{
		client:    client,
		templates: NewTemplates(cat),
		window:    window,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *LLMRenderer) Render(ctx context.Context, req Request, emit func(chunk string) error) (string, error) {
	switch req.Reply.Intent {
	case booking.IntentModeAnswer, booking.IntentSideAnswer:
		return r.answer(ctx, req, emit)
	case booking.IntentAskField, booking.IntentConfirmSummary, booking.IntentBookingConfirmed, booking.IntentReaskYesNo:
		if r.reword {
			return r.rewordReply(ctx, req, emit)
		}
	}
	return r.templates.Render(ctx, req, emit)
}

// answer streams a model answer to a non-booking question.
func (r *LLMRenderer) answer(ctx context.Context, req Request, emit func(chunk string) error) (string, error) {
	system, err := prompts.RenderModeAnswerPrompt(string(req.Reply.Mode))
	if err != nil {
		logger.Error("Failed to render answer prompt", zap.Error(err))
		return r.templates.Render(ctx, req, emit)
	}

	var sb strings.Builder
	var emitErr error
	messages := r.window.Messages(req.SessionID, req.History, req.Reply.Utterance)
	err = r.client.GenerateInference(ctx, messages, func(chunk string) error {
		sb.WriteString(chunk)
		if emit != nil {
			emitErr = emit(chunk)
		}
		return emitErr
	}, llm.WithSystemPrompt(system), llm.WithStreaming(true), llm.WithMaxTokens(512))

	if emitErr != nil {
		return "", emitErr
	}
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		logger.Error("Answer generation failed",
			zap.String("session", req.SessionID), zap.String("model", r.client.GetModel()), zap.Error(err))
		if sb.Len() > 0 {
			return sb.String(), nil
		}
		return r.templates.Render(ctx, req, emit)
	}
	if sb.Len() == 0 {
		return r.templates.Render(ctx, req, emit)
	}
	return sb.String(), nil
}

func (r *LLMRenderer) rewordReply(ctx context.Context, req Request, emit func(chunk string) error) (string, error) {
	draft := r.templates.Text(req.Reply)
	system, err := prompts.RenderReplyPrompt(draft)
	if err != nil {
		logger.Error("Failed to render reply prompt", zap.Error(err))
		return r.templates.Render(ctx, req, emit)
	}

	var sb strings.Builder
	messages := r.window.Messages(req.SessionID, req.History, "Write the message.")
	err = r.client.GenerateInference(ctx, messages, func(chunk string) error {
		sb.WriteString(chunk)
		return nil
	}, llm.WithSystemPrompt(system), llm.WithTemperature(0.3), llm.WithMaxTokens(256))
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	text := strings.TrimSpace(sb.String())
	if err != nil || !KeepsFacts(text, req.Reply) {
		if err != nil {
			logger.Error("Reply rewording failed", zap.String("session", req.SessionID), zap.Error(err))
		}
		return r.templates.Render(ctx, req, emit)
	}

	if emit != nil {
		if err := emit(text); err != nil {
			return "", err
		}
	}
	return text, nil
}

// KeepsFacts reports whether text still carries the booking reference and,
// for summaries and confirmations, every record value of reply.
func KeepsFacts(text string, reply booking.Reply) bool {
	if text == "" {
		return false
	}
	lower := strings.ToLower(text)
	if reply.BookingID != "" && !strings.Contains(text, reply.BookingID) {
		return false
	}
	if reply.Intent != booking.IntentConfirmSummary && reply.Intent != booking.IntentBookingConfirmed {
		return true
	}
	for _, v := range reply.Record {
		if v = strings.TrimSpace(v); v != "" && !strings.Contains(lower, strings.ToLower(v)) {
			return false
		}
	}
	return true
}
