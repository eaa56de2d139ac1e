package agentboot

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/SaiNageswarS/booking-agent/booking"
	"github.com/SaiNageswarS/booking-agent/catalog"
	"github.com/SaiNageswarS/booking-agent/nlu"
	"github.com/SaiNageswarS/booking-agent/render"
	"github.com/SaiNageswarS/booking-agent/session"
	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/go-collection-boot/linq"
	"go.uber.org/zap"
)

var ErrEmptyInput = errors.New("session id and text are required")

// AgentConfig holds configuration for the agent
type AgentConfig struct {
	Machine    *booking.Machine
	Renderer   render.Renderer
	Controller *session.Controller
	Safety     nlu.SafetyChecker
	Clock      func() time.Time
}

// Agent runs customer turns against the booking flow.
type Agent struct {
	config AgentConfig
}

// TurnResult is what the customer gets back for one committed turn.
type TurnResult struct {
	SessionID      string            `json:"session_id"`
	FlowState      booking.FlowState `json:"flow_state"`
	Text           string            `json:"text"`
	Intents        []booking.Intent  `json:"intents"`
	BookingID      string            `json:"booking_id,omitempty"`
	Turn           int               `json:"turn"`
	ProcessingTime int64             `json:"processing_time_ms"`
}

// Fields is the structpb friendly form of the result.
func (r *TurnResult) Fields() map[string]any {
	intents := make([]any, 0, len(r.Intents))
	for _, i := range r.Intents {
		intents = append(intents, string(i))
	}
	out := map[string]any{
		"session_id":         r.SessionID,
		"flow_state":         string(r.FlowState),
		"text":               r.Text,
		"intents":            intents,
		"turn":               float64(r.Turn),
		"processing_time_ms": float64(r.ProcessingTime),
	}
	if r.BookingID != "" {
		out["booking_id"] = r.BookingID
	}
	return out
}

// Turn processes one utterance. Reply text is streamed to reporter while it
// is produced; the session is saved only when the whole turn succeeded.
func (a *Agent) Turn(ctx context.Context, reporter ProgressReporter, sessionID, text string) (*TurnResult, error) {
	sessionID, text = strings.TrimSpace(sessionID), strings.TrimSpace(text)
	if sessionID == "" || text == "" {
		return nil, ErrEmptyInput
	}
	if reporter == nil {
		reporter = &NoOpProgressReporter{}
	}

	start := a.config.Clock()
	result := &TurnResult{SessionID: sessionID}
	var outcome booking.Outcome

	committed, err := a.config.Controller.Do(ctx, sessionID, func(ctx context.Context, sess booking.Session) (booking.Session, error) {
		var err error
		outcome, err = a.step(ctx, sess, text)
		if err != nil {
			return booking.Session{}, err
		}

		texts := make([]string, 0, len(outcome.Replies))
		for _, reply := range outcome.Replies {
			req := render.Request{SessionID: sessionID, Reply: reply, History: sess.Turns}
			out, err := a.config.Renderer.Render(ctx, req, func(chunk string) error {
				return reporter.Send(NewAnswerChunk(reply.Intent, chunk))
			})
			if err != nil {
				return booking.Session{}, err
			}
			texts = append(texts, out)
			result.Intents = append(result.Intents, reply.Intent)
			if reply.BookingID != "" {
				result.BookingID = reply.BookingID
			}
		}
		result.Text = strings.Join(texts, "\n\n")

		next := outcome.Session
		next.Turns = append(next.Turns, booking.Turn{User: text, Bot: result.Text, At: a.config.Clock()})
		return next, nil
	})
	if err != nil {
		a.reportFailure(reporter, sessionID, err)
		return nil, err
	}

	result.FlowState = outcome.To
	result.Turn = len(committed.Turns)
	result.ProcessingTime = a.config.Clock().Sub(start).Milliseconds()

	logger.Info("Turn committed",
		zap.String("session", sessionID),
		zap.Int("turn", result.Turn),
		zap.String("from_state", string(outcome.From)),
		zap.String("to_state", string(outcome.To)),
		zap.Strings("changed_fields", fieldNames(ctx, outcome.Changed)))

	if err := reporter.Send(NewStreamComplete(result)); err != nil {
		logger.Error("Failed to send turn completion", zap.String("session", sessionID), zap.Error(err))
	}
	return result, nil
}

func (a *Agent) step(ctx context.Context, sess booking.Session, text string) (booking.Outcome, error) {
	safe, err := a.config.Safety.IsSafe(ctx, text)
	if err != nil {
		logger.Error("Safety check failed, continuing", zap.String("session", sess.ID), zap.Error(err))
		safe = true
	}
	if !safe {
		logger.Info("Unsafe utterance", zap.String("session", sess.ID))
		return booking.Outcome{
			Session: sess,
			From:    sess.FlowState,
			To:      sess.FlowState,
			Replies: []booking.Reply{{Intent: booking.IntentUnsafe}},
		}, nil
	}
	return a.config.Machine.Step(ctx, sess, text)
}

func (a *Agent) reportFailure(reporter ProgressReporter, sessionID string, err error) {
	code := "turn_failed"
	switch {
	case errors.Is(err, session.ErrTurnInProgress):
		code = "turn_in_progress"
	case errors.Is(err, session.ErrStoreUnavailable), errors.Is(err, session.ErrVersionConflict):
		code = "store_unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		logger.Info("Turn discarded", zap.String("session", sessionID), zap.Error(err))
		return
	}
	logger.Error("Turn failed", zap.String("session", sessionID), zap.String("code", code), zap.Error(err))
	if sendErr := reporter.Send(NewStreamError(render.RetryText, code)); sendErr != nil {
		logger.Error("Failed to send turn error", zap.String("session", sessionID), zap.Error(sendErr))
	}
}

func fieldNames(ctx context.Context, fields []catalog.FieldName) []string {
	names, err := linq.Pipe2(
		linq.FromSlice(ctx, fields),
		linq.Select(func(f catalog.FieldName) string { return string(f) }),
		linq.ToSlice[string](),
	)
	if err != nil {
		return nil
	}
	return names
}
