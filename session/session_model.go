package session

import (
	"time"

	"github.com/SaiNageswarS/booking-agent/booking"
	"github.com/SaiNageswarS/booking-agent/catalog"
)

type SessionModel struct {
	ID        string            `bson:"_id" json:"id"`
	Turns     []booking.Turn    `bson:"turns" json:"turns"`
	FlowState string            `bson:"flowState" json:"flow_state"`
	Record    map[string]string `bson:"record" json:"record"`
	Attempt   int               `bson:"attempt" json:"attempt"`
	Version   int64             `bson:"version" json:"version"`
	UpdatedAt time.Time         `bson:"updatedAt" json:"updated_at"`
}

func (m SessionModel) Id() string {
	return m.ID
}

func (m SessionModel) CollectionName() string {
	return "booking_sessions"
}

func NewSessionModel(sess booking.Session) SessionModel {
	record := make(map[string]string, len(sess.Record))
	for k, v := range sess.Record {
		record[string(k)] = v
	}
	return SessionModel{
		ID:        sess.ID,
		Turns:     sess.Turns,
		FlowState: string(sess.FlowState),
		Record:    record,
		Attempt:   sess.Attempt,
		Version:   sess.Version,
		UpdatedAt: sess.UpdatedAt,
	}
}

// Session converts the stored model back, normalising anything a previous
// release could have left behind.
func (m SessionModel) Session() booking.Session {
	record := make(booking.Record, len(m.Record))
	for k, v := range m.Record {
		record[catalog.FieldName(k)] = v
	}
	turns := m.Turns
	if turns == nil {
		turns = []booking.Turn{}
	}
	return booking.CarryOver(booking.Session{
		ID:        m.ID,
		Turns:     turns,
		FlowState: booking.FlowState(m.FlowState),
		Record:    record,
		Attempt:   m.Attempt,
		Version:   m.Version,
		UpdatedAt: m.UpdatedAt,
	})
}
