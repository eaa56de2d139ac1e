package reservations

import (
	"maps"
	"strings"
	"time"

	"github.com/SaiNageswarS/booking-agent/booking"
	"github.com/SaiNageswarS/booking-agent/catalog"
	"github.com/google/uuid"
)

// ReservationModel is a committed service appointment. ID is derived from
// the commit key so a replayed commit finds the earlier reservation, and a
// replay with different details amends it.
type ReservationModel struct {
	ID        string            `bson:"_id" json:"id"`
	CommitKey string            `bson:"commitKey" json:"commit_key"`
	BookingID string            `bson:"bookingId" json:"booking_id"`
	Record    map[string]string `bson:"record" json:"record"`
	CreatedAt time.Time         `bson:"createdAt" json:"created_at"`
	UpdatedAt time.Time         `bson:"updatedAt" json:"updated_at"`
}

func (m ReservationModel) Id() string {
	return m.ID
}

func (m ReservationModel) CollectionName() string {
	return "reservations"
}

func (m ReservationModel) ServiceType() string {
	return m.Record[string(catalog.ServiceType)]
}

func newReservation(id, key string, record booking.Record, now time.Time) ReservationModel {
	return ReservationModel{
		ID:        id,
		CommitKey: key,
		BookingID: NewBookingID(),
		Record:    reservationFields(record),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// amend returns the reservation carrying record and whether anything changed.
func (m ReservationModel) amend(record booking.Record, now time.Time) (ReservationModel, bool) {
	fields := reservationFields(record)
	if maps.Equal(m.Record, fields) {
		return m, false
	}
	m.Record = fields
	m.UpdatedAt = now
	return m, true
}

func reservationFields(record booking.Record) map[string]string {
	fields := make(map[string]string, len(record))
	for k, v := range record {
		if v = strings.TrimSpace(v); v != "" {
			fields[string(k)] = v
		}
	}
	return fields
}

// NewBookingID returns a short customer facing reference such as BK-1A2B3C4D.
func NewBookingID() string {
	return "BK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
