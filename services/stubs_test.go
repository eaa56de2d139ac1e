package services

import (
	"context"

	"github.com/SaiNageswarS/booking-agent/agentboot"
	"github.com/SaiNageswarS/booking-agent/booking"
)

type fakeRunner struct {
	chunks []string
	err    error

	sessionID string
	text      string
}

func (f *fakeRunner) Turn(ctx context.Context, reporter agentboot.ProgressReporter, sessionID, text string) (*agentboot.TurnResult, error) {
	f.sessionID, f.text = sessionID, text
	if f.err != nil {
		return nil, f.err
	}
	if sessionID == "" || text == "" {
		return nil, agentboot.ErrEmptyInput
	}
	if reporter == nil {
		reporter = &agentboot.NoOpProgressReporter{}
	}
	for _, c := range f.chunks {
		if err := reporter.Send(agentboot.NewAnswerChunk(booking.IntentAskField, c)); err != nil {
			return nil, err
		}
	}
	result := &agentboot.TurnResult{
		SessionID: sessionID,
		FlowState: booking.Collecting,
		Text:      "What day works best?",
		Intents:   []booking.Intent{booking.IntentAskField},
		Turn:      1,
	}
	if err := reporter.Send(agentboot.NewStreamComplete(result)); err != nil {
		return nil, err
	}
	return result, nil
}
