package booking

import (
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/SaiNageswarS/booking-agent/catalog"
)

// FlowState is the booking sub-state of a session.
type FlowState string

const (
	NotBooking           FlowState = "NOT_BOOKING"
	Collecting           FlowState = "COLLECTING"
	AwaitingConfirmation FlowState = "AWAITING_CONFIRMATION"
	Confirmed            FlowState = "CONFIRMED"
	Cancelled            FlowState = "CANCELLED"
)

// Active reports whether a booking attempt is in progress.
func (s FlowState) Active() bool {
	return s == Collecting || s == AwaitingConfirmation
}

// Terminal reports whether the booking attempt just ended.
func (s FlowState) Terminal() bool {
	return s == Confirmed || s == Cancelled
}

func (s FlowState) Valid() bool {
	switch s {
	case NotBooking, Collecting, AwaitingConfirmation, Confirmed, Cancelled:
		return true
	}
	return false
}

// Record holds the appointment fields collected so far.
type Record map[catalog.FieldName]string

func (r Record) Clone() Record {
	if r == nil {
		return Record{}
	}
	return maps.Clone(r)
}

// Get returns the trimmed value of a field, "" when absent.
func (r Record) Get(name catalog.FieldName) string {
	return strings.TrimSpace(r[name])
}

// Has reports whether the field holds a non-empty value.
func (r Record) Has(name catalog.FieldName) bool {
	return r.Get(name) != ""
}

// ExtractionResult is the raw output of the extraction collaborator for one
// utterance. Keys are unvalidated field names.
type ExtractionResult map[string]string

// Turn is one user utterance and the bot text produced for it.
type Turn struct {
	User string    `json:"user" bson:"user"`
	Bot  string    `json:"bot" bson:"bot"`
	At   time.Time `json:"at" bson:"at"`
}

// Session is the persisted state of one conversation.
type Session struct {
	ID        string    `json:"id"`
	Turns     []Turn    `json:"turns"`
	FlowState FlowState `json:"flow_state"`
	Record    Record    `json:"record"`

	// Attempt counts booking attempts started in this session. It keys
	// reservation commits so a replayed turn never books twice.
	Attempt int `json:"attempt"`
	// Version increases on every committed turn.
	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewSession(id string) Session {
	return Session{
		ID:        id,
		FlowState: NotBooking,
		Record:    Record{},
		Turns:     []Turn{},
	}
}

// Clone returns a deep copy so a turn can work on its own value.
func (s Session) Clone() Session {
	out := s
	out.Turns = slices.Clone(s.Turns)
	if out.Turns == nil {
		out.Turns = []Turn{}
	}
	out.Record = s.Record.Clone()
	return out
}

// Verdict is the interpretation of a reply to the confirmation summary.
type Verdict string

const (
	Affirmative Verdict = "AFFIRMATIVE"
	Negative    Verdict = "NEGATIVE"
	Change      Verdict = "CHANGE"
	Unclear     Verdict = "UNCLEAR"
)

func (v Verdict) Valid() bool {
	switch v {
	case Affirmative, Negative, Change, Unclear:
		return true
	}
	return false
}

// ParseVerdict maps a collaborator label to a Verdict. Labels outside the
// enum yield Unclear and false.
func ParseVerdict(label string) (Verdict, bool) {
	v := Verdict(strings.ToUpper(strings.TrimSpace(label)))
	if !v.Valid() {
		return Unclear, false
	}
	return v, true
}

// Detour classifies an utterance made while a booking is active.
type Detour string

const (
	OnTopic        Detour = "ON_TOPIC"
	OffTopic       Detour = "OFF_TOPIC"
	ExplicitCancel Detour = "EXPLICIT_CANCEL"
)

func (d Detour) Valid() bool {
	switch d {
	case OnTopic, OffTopic, ExplicitCancel:
		return true
	}
	return false
}

func ParseDetour(label string) (Detour, bool) {
	d := Detour(strings.ToUpper(strings.TrimSpace(label)))
	if !d.Valid() {
		return OnTopic, false
	}
	return d, true
}

// Mode is the conversation mode picked by the mode router.
type Mode string

const (
	ModeBookAppointment Mode = "book_appointment"
	ModeShopInfo        Mode = "shop_info"
	ModeProductInquiry  Mode = "product_inquiry"
	ModeMaintenanceTips Mode = "maintenance_tips"
	ModePolicyQuestion  Mode = "policy_question"
	ModeWhatCanYouDo    Mode = "what_can_you_do"
	ModeUnknown         Mode = "unknown"
)

// Modes lists every mode the router may return.
var Modes = []Mode{
	ModeShopInfo,
	ModeProductInquiry,
	ModeBookAppointment,
	ModeMaintenanceTips,
	ModePolicyQuestion,
	ModeWhatCanYouDo,
	ModeUnknown,
}

// ParseMode maps a router label to a Mode; anything else is ModeUnknown.
func ParseMode(label string) Mode {
	m := Mode(strings.ToLower(strings.TrimSpace(label)))
	if slices.Contains(Modes, m) {
		return m
	}
	return ModeUnknown
}

// Intent tells the response generator what kind of utterance to produce.
type Intent string

const (
	IntentAskField         Intent = "ask_field"
	IntentConfirmSummary   Intent = "confirm_summary"
	IntentReaskYesNo       Intent = "reask_yes_no"
	IntentBookingConfirmed Intent = "booking_confirmed"
	IntentBookingCancelled Intent = "booking_cancelled"
	IntentCommitFailed     Intent = "commit_failed"
	IntentSideAnswer       Intent = "side_answer"
	IntentModeAnswer       Intent = "mode_answer"
	IntentCapabilities     Intent = "capabilities"
	IntentPromptForMore    Intent = "prompt_for_more"
	IntentUnsafe           Intent = "unsafe"
	IntentRetry            Intent = "retry"
)

// Reply is one bot utterance intent plus the data needed to word it.
type Reply struct {
	Intent    Intent            `json:"intent"`
	Field     catalog.FieldName `json:"field,omitempty"`
	Record    Record            `json:"record,omitempty"`
	Mode      Mode              `json:"mode,omitempty"`
	BookingID string            `json:"booking_id,omitempty"`
	Utterance string            `json:"utterance,omitempty"`
}

// Outcome is the result of one state machine step. Everything except
// Session is per-turn scratch and is dropped once the turn is committed.
type Outcome struct {
	Session Session
	From    FlowState
	To      FlowState
	Replies []Reply

	Mode      Mode
	Detour    Detour
	Verdict   Verdict
	Changed   []catalog.FieldName
	Anomalies []string
}
