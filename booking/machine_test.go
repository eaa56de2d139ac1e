package booking

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/SaiNageswarS/booking-agent/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scriptedFields = map[string]ExtractionResult{
	"book a tune-up for next Tuesday morning": {"service_type": "tune-up", "preferred_date": "Tuesday", "preferred_time": "morning"},
	"I need a repair":                         {"service_type": "repair"},
	"Friday":                                  {"preferred_date": "Friday"},
	"around 3pm":                              {"preferred_time": "3pm"},
	"make it Thursday":                        {"preferred_date": "Thursday"},
	"it's a road bike":                        {"bike_details": "road bike"},
	"never mind the morning, make it 3pm":     {"preferred_time": "3pm"},
}

var scriptedModes = map[string]Mode{
	"book a tune-up for next Tuesday morning": ModeBookAppointment,
	"I need a repair":                         ModeBookAppointment,
	"what can you do?":                        ModeWhatCanYouDo,
	"where is the shop?":                      ModeShopInfo,
}

func newTestMachine(sink CommitSink) *Machine {
	return NewMachine(catalog.Default(), Collaborators{
		Router: routerFunc(func(u string) (Mode, error) {
			if m, ok := scriptedModes[u]; ok {
				return m, nil
			}
			return ModeUnknown, nil
		}),
		Extractor: scriptedExtractor(scriptedFields),
		Detour: detourTable(map[string]Detour{
			"what are your opening hours?":            OffTopic,
			"what happens if I need to cancel later?": OffTopic,
		}),
		Confirmation: verdictTable(map[string]Verdict{"yes": Affirmative, "yes please": Affirmative, "no": Negative, "sure, 4pm": Affirmative, "I want to change something": Change}),
		Sink:         sink,
	})
}

// converse runs utterances through Step and carries each result over the
// way the session controller does.
func converse(t *testing.T, m *Machine, sess Session, utterances ...string) (Session, Outcome) {
	t.Helper()
	var out Outcome
	for _, u := range utterances {
		var err error
		out, err = m.Step(context.Background(), sess, u)
		require.NoError(t, err)
		next := out.Session
		next.Turns = append(next.Turns, Turn{User: u})
		sess = CarryOver(next)
	}
	return sess, out
}

func TestMachine_SingleTurnBooking(t *testing.T) {
	sink := newRecordingSink()
	m := newTestMachine(sink)

	sess, out := converse(t, m, NewSession("s1"), "book a tune-up for next Tuesday morning")

	assert.Equal(t, NotBooking, out.From)
	assert.Equal(t, AwaitingConfirmation, out.To)
	require.Len(t, out.Replies, 1)
	assert.Equal(t, IntentConfirmSummary, out.Replies[0].Intent)
	assert.Equal(t, "Tuesday", out.Replies[0].Record[catalog.PreferredDate])
	assert.Equal(t, 0, sink.calls)

	sess, out = converse(t, m, sess, "yes")

	assert.Equal(t, Confirmed, out.To)
	require.Len(t, out.Replies, 1)
	assert.Equal(t, IntentBookingConfirmed, out.Replies[0].Intent)
	assert.Equal(t, "bk-s1:1", out.Replies[0].BookingID)
	assert.Equal(t, 1, sink.calls)
	assert.Equal(t, "tune-up", sink.commits["s1:1"][catalog.ServiceType])

	assert.Equal(t, NotBooking, sess.FlowState)
	assert.Empty(t, sess.Record)
	assert.Len(t, sess.Turns, 2)
}

func TestMachine_MultiTurnCollection(t *testing.T) {
	m := newTestMachine(newRecordingSink())

	sess, out := converse(t, m, NewSession("s1"), "I need a repair")
	assert.Equal(t, Collecting, out.To)
	assert.Equal(t, IntentAskField, out.Replies[0].Intent)
	assert.Equal(t, catalog.PreferredDate, out.Replies[0].Field)

	sess, out = converse(t, m, sess, "Friday")
	assert.Equal(t, Collecting, out.To)
	assert.Equal(t, catalog.PreferredTime, out.Replies[0].Field)

	sess, out = converse(t, m, sess, "around 3pm")
	assert.Equal(t, AwaitingConfirmation, out.To)
	assert.Equal(t, IntentConfirmSummary, out.Replies[0].Intent)
	assert.Equal(t, Record{catalog.ServiceType: "repair", catalog.PreferredDate: "Friday", catalog.PreferredTime: "3pm"}, sess.Record)
}

func TestMachine_Cancellation(t *testing.T) {
	sink := newRecordingSink()
	m := newTestMachine(sink)

	sess, _ := converse(t, m, NewSession("s1"), "I need a repair", "Friday")
	sess, out := converse(t, m, sess, "never mind")

	assert.Equal(t, Cancelled, out.To)
	assert.Empty(t, out.Session.Record)
	assert.Equal(t, IntentBookingCancelled, out.Replies[0].Intent)
	assert.Equal(t, NotBooking, sess.FlowState)
	assert.Empty(t, sess.Record)
	assert.Equal(t, 0, sink.calls)
}

func TestMachine_CancelWordsThatAreNotCancels(t *testing.T) {
	t.Run("amendment at confirmation", func(t *testing.T) {
		m := newTestMachine(newRecordingSink())
		sess, _ := converse(t, m, NewSession("s1"), "book a tune-up for next Tuesday morning")

		_, out := converse(t, m, sess, "never mind the morning, make it 3pm")

		assert.Equal(t, OnTopic, out.Detour)
		assert.Equal(t, Change, out.Verdict)
		assert.Equal(t, AwaitingConfirmation, out.To)
		assert.Equal(t, "3pm", out.Session.Record.Get(catalog.PreferredTime))
		assert.Equal(t, "Tuesday", out.Session.Record.Get(catalog.PreferredDate))
	})

	t.Run("question about cancelling while collecting", func(t *testing.T) {
		m := newTestMachine(newRecordingSink())
		sess, _ := converse(t, m, NewSession("s1"), "I need a repair")

		_, out := converse(t, m, sess, "what happens if I need to cancel later?")

		assert.Equal(t, OffTopic, out.Detour)
		assert.Equal(t, Collecting, out.To)
		assert.Equal(t, Record{catalog.ServiceType: "repair"}, out.Session.Record)
		require.Len(t, out.Replies, 2)
		assert.Equal(t, IntentSideAnswer, out.Replies[0].Intent)
		assert.Equal(t, catalog.PreferredDate, out.Replies[1].Field)
	})
}

func TestMachine_NegativeAtConfirmationCancels(t *testing.T) {
	sink := newRecordingSink()
	m := newTestMachine(sink)

	_, out := converse(t, m, NewSession("s1"), "book a tune-up for next Tuesday morning", "no")

	assert.Equal(t, Cancelled, out.To)
	assert.Equal(t, Negative, out.Verdict)
	assert.Equal(t, 0, sink.calls)
}

func TestMachine_OffTopicKeepsBookingState(t *testing.T) {
	m := newTestMachine(newRecordingSink())

	before, _ := converse(t, m, NewSession("s1"), "I need a repair")
	after, out := converse(t, m, before, "what are your opening hours?")

	assert.Equal(t, OffTopic, out.Detour)
	assert.Equal(t, Collecting, after.FlowState)
	assert.Equal(t, before.Record, after.Record)
	require.Len(t, out.Replies, 2)
	assert.Equal(t, IntentSideAnswer, out.Replies[0].Intent)
	assert.Equal(t, "what are your opening hours?", out.Replies[0].Utterance)
	assert.Equal(t, IntentAskField, out.Replies[1].Intent)
	assert.Equal(t, catalog.PreferredDate, out.Replies[1].Field)
}

func TestMachine_ChangeAtConfirmation(t *testing.T) {
	sink := newRecordingSink()
	m := newTestMachine(sink)

	sess, _ := converse(t, m, NewSession("s1"), "book a tune-up for next Tuesday morning")
	sess, out := converse(t, m, sess, "make it Thursday")

	assert.Equal(t, Change, out.Verdict)
	assert.Equal(t, AwaitingConfirmation, out.To)
	assert.Equal(t, []catalog.FieldName{catalog.PreferredDate}, out.Changed)
	assert.Equal(t, IntentConfirmSummary, out.Replies[0].Intent)
	assert.Equal(t, "Thursday", sess.Record[catalog.PreferredDate])
	assert.Equal(t, "morning", sess.Record[catalog.PreferredTime])
	assert.Equal(t, 0, sink.calls)
	summary := out.Replies[0]

	sess, out = converse(t, m, sess, "what are your opening hours?")
	require.Len(t, out.Replies, 2)
	assert.Equal(t, summary, out.Replies[1])

	_, out = converse(t, m, sess, "yes")
	assert.Equal(t, Confirmed, out.To)
	assert.Equal(t, "Thursday", sink.commits["s1:1"][catalog.PreferredDate])
}

func TestMachine_AmbiguousReplyDoesNotCommit(t *testing.T) {
	sink := newRecordingSink()
	m := newTestMachine(sink)

	sess, _ := converse(t, m, NewSession("s1"), "book a tune-up for next Tuesday morning")
	sess, out := converse(t, m, sess, "sure, 4pm")

	assert.Equal(t, Unclear, out.Verdict)
	assert.Equal(t, AwaitingConfirmation, sess.FlowState)
	assert.Equal(t, IntentReaskYesNo, out.Replies[0].Intent)
	assert.Equal(t, 0, sink.calls)
}

func TestMachine_ChangeWithoutValueShowsSummaryAgain(t *testing.T) {
	sink := newRecordingSink()
	m := newTestMachine(sink)

	sess, _ := converse(t, m, NewSession("s1"), "book a tune-up for next Tuesday morning")
	before := sess.Record.Clone()
	_, out := converse(t, m, sess, "I want to change something")

	assert.Equal(t, Change, out.Verdict)
	assert.Empty(t, out.Changed)
	assert.Equal(t, AwaitingConfirmation, out.To)
	require.Len(t, out.Replies, 1)
	assert.Equal(t, IntentConfirmSummary, out.Replies[0].Intent)
	assert.Equal(t, before, out.Session.Record)
	assert.Equal(t, 0, sink.calls)
}

func TestMachine_OptionalFieldAtConfirmationIsChange(t *testing.T) {
	m := newTestMachine(newRecordingSink())

	sess, _ := converse(t, m, NewSession("s1"), "book a tune-up for next Tuesday morning")
	sess, out := converse(t, m, sess, "it's a road bike")

	assert.Equal(t, Change, out.Verdict)
	assert.Equal(t, AwaitingConfirmation, sess.FlowState)
	assert.Equal(t, "road bike", sess.Record[catalog.BikeDetails])
}

func TestMachine_CommitFailureStaysInConfirmation(t *testing.T) {
	sink := newRecordingSink()
	sink.fail = errCollaborator
	m := newTestMachine(sink)

	sess, _ := converse(t, m, NewSession("s1"), "book a tune-up for next Tuesday morning")
	sess, out := converse(t, m, sess, "yes")

	assert.Equal(t, AwaitingConfirmation, out.To)
	assert.Equal(t, IntentCommitFailed, out.Replies[0].Intent)
	assert.Equal(t, "tune-up", sess.Record[catalog.ServiceType])

	sink.fail = nil
	_, out = converse(t, m, sess, "yes please")
	assert.Equal(t, Confirmed, out.To)
	assert.Equal(t, 2, sink.calls)
	assert.Len(t, sink.commits, 1)
}

func TestMachine_NonBookingModes(t *testing.T) {
	m := newTestMachine(newRecordingSink())

	tests := []struct {
		utterance string
		intent    Intent
		mode      Mode
	}{
		{"what can you do?", IntentCapabilities, ModeWhatCanYouDo},
		{"where is the shop?", IntentModeAnswer, ModeShopInfo},
		{"asdf qwerty", IntentPromptForMore, ModeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			sess, out := converse(t, m, NewSession("s1"), tt.utterance)
			assert.Equal(t, NotBooking, sess.FlowState)
			assert.Equal(t, tt.mode, out.Mode)
			assert.Equal(t, tt.intent, out.Replies[0].Intent)
		})
	}

	t.Run("router failure becomes unknown", func(t *testing.T) {
		failing := NewMachine(catalog.Default(), Collaborators{
			Router: routerFunc(func(string) (Mode, error) { return ModeBookAppointment, errCollaborator }),
		})
		_, out := converse(t, failing, NewSession("s1"), "book something")
		assert.Equal(t, ModeUnknown, out.Mode)
		assert.Equal(t, IntentPromptForMore, out.Replies[0].Intent)
	})
}

func TestMachine_CancelledContextIsDiscarded(t *testing.T) {
	m := newTestMachine(newRecordingSink())
	sess, _ := converse(t, m, NewSession("s1"), "I need a repair")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out, err := m.Step(ctx, sess, "Friday")

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out.Replies)
	assert.Equal(t, Collecting, sess.FlowState)
	assert.Empty(t, sess.Record[catalog.PreferredDate])
}

func TestMachine_AttemptsKeyCommits(t *testing.T) {
	sink := newRecordingSink()
	m := newTestMachine(sink)

	sess, _ := converse(t, m, NewSession("s1"), "book a tune-up for next Tuesday morning", "yes")
	_, _ = converse(t, m, sess, "I need a repair", "Friday", "around 3pm", "yes")

	assert.Contains(t, sink.commits, "s1:1")
	assert.Contains(t, sink.commits, "s1:2")
	assert.Equal(t, "repair", sink.commits["s1:2"][catalog.ServiceType])
}

func TestMachine_TerminalInputIsCarriedOver(t *testing.T) {
	m := newTestMachine(newRecordingSink())
	sess := NewSession("s1")
	sess.FlowState = Confirmed
	sess.Record = Record{catalog.ServiceType: "repair"}

	out, err := m.Step(context.Background(), sess, "what can you do?")

	require.NoError(t, err)
	assert.Equal(t, NotBooking, out.From)
	assert.Empty(t, out.Session.Record)
}

// Random conversations never commit without a complete record that was
// shown in a summary, and AWAITING_CONFIRMATION always holds a complete record.
func TestMachine_RandomConversations(t *testing.T) {
	utterances := []string{
		"book a tune-up for next Tuesday morning", "I need a repair", "Friday", "around 3pm",
		"make it Thursday", "it's a road bike", "yes", "no", "sure, 4pm", "never mind",
		"what are your opening hours?", "where is the shop?", "what can you do?", "hmm",
	}
	required := catalog.Default().Required()
	rng := rand.New(rand.NewPCG(42, 2024))

	for run := range 200 {
		sink := newRecordingSink()
		m := newTestMachine(sink)
		sess := NewSession("p")

		for step := range 12 {
			u := utterances[rng.IntN(len(utterances))]
			before := sess
			out, err := m.Step(context.Background(), sess, u)
			require.NoError(t, err)

			if out.To == AwaitingConfirmation {
				assert.True(t, Complete(out.Session.Record, required), "run %d step %d", run, step)
			}
			if out.To == Confirmed {
				assert.Equal(t, AwaitingConfirmation, before.FlowState, "run %d step %d", run, step)
				assert.Equal(t, Affirmative, out.Verdict)
				assert.Equal(t, before.Record, out.Session.Record)
			}
			if before.FlowState == NotBooking && out.Mode != ModeBookAppointment {
				assert.Equal(t, NotBooking, out.To)
			}
			if before.FlowState.Active() && out.To != Confirmed && out.To != Cancelled {
				for _, f := range required {
					if before.Record.Get(f) != "" {
						assert.NotEmpty(t, out.Session.Record.Get(f), "run %d step %d field %s", run, step, f)
					}
				}
				assert.Equal(t, before.Attempt, out.Session.Attempt, "run %d step %d", run, step)
			}
			if out.Detour == OffTopic {
				assert.Equal(t, before.Record, out.Session.Record)
				assert.Equal(t, before.FlowState, out.To)
			}

			next := out.Session
			next.Turns = append(next.Turns, Turn{User: u})
			sess = CarryOver(next)
		}

		assert.LessOrEqual(t, len(sink.commits), sess.Attempt, "run %d", run)
	}
}
