package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/SaiNageswarS/booking-agent/catalog"
	"github.com/SaiNageswarS/go-api-boot/logger"
	"go.uber.org/zap"
)

// Machine is the booking state machine. It is stateless; every Step works on
// a copy of the session it is given.
type Machine struct {
	catalog  *catalog.Catalog
	router   ModeRouter
	merger   *Merger
	detector *Detector
	confirm  *ConfirmationAdapter
	sink     CommitSink

	historyTurns int
	timeout      time.Duration
}

type MachineOption func(*Machine)

// WithHistoryWindow bounds how many recent turns collaborators see.
func WithHistoryWindow(turns int) MachineOption {
	return func(m *Machine) {
		m.historyTurns = turns
	}
}

// WithCollaboratorTimeout bounds each individual collaborator call.
func WithCollaboratorTimeout(d time.Duration) MachineOption {
	return func(m *Machine) {
		m.timeout = d
	}
}

type Collaborators struct {
	Router       ModeRouter
	Extractor    Extractor
	Detour       DetourClassifier
	Confirmation ConfirmationClassifier
	Sink         CommitSink
}

func NewMachine(cat *catalog.Catalog, c Collaborators, opts ...MachineOption) *Machine {
	m := &Machine{
		catalog:      cat,
		router:       c.Router,
		sink:         c.Sink,
		historyTurns: 6,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.merger = NewMerger(cat, c.Extractor, m.timeout)
	m.detector = NewDetector(c.Detour, m.timeout)
	m.confirm = NewConfirmationAdapter(c.Confirmation, m.timeout)
	return m
}

func (m *Machine) Catalog() *catalog.Catalog {
	return m.catalog
}

// Step applies one user utterance to the session and returns the resulting
// session with the replies to render. The input session is not modified.
// The only error is ctx's, in which case the outcome must be discarded.
func (m *Machine) Step(ctx context.Context, in Session, utterance string) (Outcome, error) {
	sess := in.Clone()
	if !sess.FlowState.Valid() || sess.FlowState.Terminal() {
		sess = CarryOver(sess)
	}
	out := &Outcome{From: sess.FlowState}

	if !sess.FlowState.Active() {
		return m.route(ctx, out, sess, utterance)
	}

	out.Detour = m.detector.Classify(ctx, utterance, m.sessionContext(sess))
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	switch out.Detour {
	case ExplicitCancel:
		return m.cancel(out, sess)
	case OffTopic:
		out.Replies = append(out.Replies, Reply{Intent: IntentSideAnswer, Utterance: utterance})
		out.Replies = append(out.Replies, m.PendingPrompt(sess))
		return m.finish(out, sess)
	}

	if sess.FlowState == Collecting {
		return m.collect(ctx, out, sess, utterance)
	}
	return m.confirmation(ctx, out, sess, utterance)
}

func (m *Machine) route(ctx context.Context, out *Outcome, sess Session, utterance string) (Outcome, error) {
	out.Mode = ModeUnknown
	if m.router != nil {
		callCtx, cancel := m.callContext(ctx)
		mode, err := m.router.ClassifyMode(callCtx, utterance, m.sessionContext(sess))
		cancel()
		if err != nil {
			logger.Error("Mode routing failed", zap.String("session", sess.ID), zap.Error(err))
		} else {
			out.Mode = ParseMode(string(mode))
		}
	}
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	switch out.Mode {
	case ModeBookAppointment:
		sess.Attempt++
		sess.Record = Record{}
		sess.FlowState = Collecting
		logger.Info("Booking attempt started",
			zap.String("session", sess.ID), zap.Int("attempt", sess.Attempt))
		return m.collect(ctx, out, sess, utterance)
	case ModeWhatCanYouDo:
		out.Replies = append(out.Replies, Reply{Intent: IntentCapabilities})
	case ModeUnknown:
		out.Replies = append(out.Replies, Reply{Intent: IntentPromptForMore})
	default:
		out.Replies = append(out.Replies, Reply{Intent: IntentModeAnswer, Mode: out.Mode, Utterance: utterance})
	}
	return m.finish(out, sess)
}

func (m *Machine) collect(ctx context.Context, out *Outcome, sess Session, utterance string) (Outcome, error) {
	merged := m.merger.Merge(ctx, sess.Record, utterance, m.sessionContext(sess))
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}
	sess.Record = merged.Record
	out.Changed = merged.Changed
	out.Anomalies = append(out.Anomalies, merged.Anomalies...)
	return m.evaluate(out, sess)
}

// evaluate moves to AWAITING_CONFIRMATION once the record is complete and
// otherwise asks for the next missing field.
func (m *Machine) evaluate(out *Outcome, sess Session) (Outcome, error) {
	if Complete(sess.Record, m.catalog.Required()) {
		sess.FlowState = AwaitingConfirmation
	} else {
		sess.FlowState = Collecting
	}
	out.Replies = append(out.Replies, m.PendingPrompt(sess))
	return m.finish(out, sess)
}

func (m *Machine) confirmation(ctx context.Context, out *Outcome, sess Session, utterance string) (Outcome, error) {
	merged := m.merger.Merge(ctx, sess.Record, utterance, m.sessionContext(sess))
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}
	out.Anomalies = append(out.Anomalies, merged.Anomalies...)

	out.Verdict = m.confirm.Classify(ctx, sess.ID, utterance, sess.Record, merged.Changed)
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	switch out.Verdict {
	case Affirmative:
		return m.commit(ctx, out, sess)
	case Negative:
		return m.cancel(out, sess)
	case Change:
		sess.Record = merged.Record
		out.Changed = merged.Changed
		return m.evaluate(out, sess)
	default:
		out.Replies = append(out.Replies, Reply{Intent: IntentReaskYesNo, Record: sess.Record.Clone()})
		return m.finish(out, sess)
	}
}

func (m *Machine) commit(ctx context.Context, out *Outcome, sess Session) (Outcome, error) {
	if m.sink == nil {
		out.Replies = append(out.Replies, Reply{Intent: IntentCommitFailed, Record: sess.Record.Clone()})
		return m.finish(out, sess)
	}

	bookingID, err := m.sink.Commit(ctx, CommitKey(sess), sess.Record.Clone())
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Outcome{}, ctxErr
	}
	if err != nil {
		logger.Error("Reservation commit failed, staying in confirmation",
			zap.String("session", sess.ID), zap.Error(err))
		out.Replies = append(out.Replies, Reply{Intent: IntentCommitFailed, Record: sess.Record.Clone()})
		return m.finish(out, sess)
	}

	sess.FlowState = Confirmed
	logger.Info("Booking confirmed",
		zap.String("session", sess.ID), zap.String("booking", bookingID))
	out.Replies = append(out.Replies, Reply{Intent: IntentBookingConfirmed, Record: sess.Record.Clone(), BookingID: bookingID})
	return m.finish(out, sess)
}

func (m *Machine) cancel(out *Outcome, sess Session) (Outcome, error) {
	sess.FlowState = Cancelled
	sess.Record = Record{}
	out.Replies = append(out.Replies, Reply{Intent: IntentBookingCancelled})
	return m.finish(out, sess)
}

func (m *Machine) finish(out *Outcome, sess Session) (Outcome, error) {
	out.To = sess.FlowState
	out.Session = sess
	if out.From != out.To {
		logger.Info("Flow state transition",
			zap.String("session", sess.ID),
			zap.String("from", string(out.From)),
			zap.String("to", string(out.To)))
	}
	return *out, nil
}

// PendingPrompt is the question the session is currently waiting on.
func (m *Machine) PendingPrompt(sess Session) Reply {
	switch sess.FlowState {
	case Collecting:
		if f, ok := NextMissingField(sess.Record, m.catalog.Required()); ok {
			return Reply{Intent: IntentAskField, Field: f, Record: sess.Record.Clone()}
		}
		return Reply{Intent: IntentConfirmSummary, Record: sess.Record.Clone()}
	case AwaitingConfirmation:
		return Reply{Intent: IntentConfirmSummary, Record: sess.Record.Clone()}
	default:
		return Reply{Intent: IntentPromptForMore}
	}
}

func (m *Machine) sessionContext(sess Session) SessionContext {
	return SessionContext{
		SessionID: sess.ID,
		FlowState: sess.FlowState,
		Record:    sess.Record.Clone(),
		History:   RecentTurns(sess.Turns, m.historyTurns),
	}
}

func (m *Machine) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.timeout > 0 {
		return context.WithTimeout(ctx, m.timeout)
	}
	return context.WithCancel(ctx)
}

// CommitKey is the idempotency key of the session's current booking attempt.
func CommitKey(sess Session) string {
	return fmt.Sprintf("%s:%d", sess.ID, sess.Attempt)
}

// RecentTurns returns at most n of the latest turns.
func RecentTurns(turns []Turn, n int) []Turn {
	if n <= 0 || len(turns) <= n {
		return append([]Turn(nil), turns...)
	}
	return append([]Turn(nil), turns[len(turns)-n:]...)
}
