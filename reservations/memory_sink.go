package reservations

import (
	"context"
	"sync"
	"time"

	"github.com/SaiNageswarS/booking-agent/booking"
)

// MemorySink keeps reservations in process memory.
type MemorySink struct {
	mu    sync.Mutex
	byKey map[string]ReservationModel
}

func NewMemorySink() *MemorySink {
	return &MemorySink{byKey: map[string]ReservationModel{}}
}

func (s *MemorySink) Commit(_ context.Context, key string, record booking.Record) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.byKey[key]; ok {
		if amended, changed := existing.amend(record, time.Now()); changed {
			s.byKey[key] = amended
		}
		return existing.BookingID, nil
	}
	r := newReservation(key, key, record, time.Now())
	s.byKey[key] = r
	return r.BookingID, nil
}

// Reservations returns a snapshot of every committed reservation.
func (s *MemorySink) Reservations() []ReservationModel {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ReservationModel, 0, len(s.byKey))
	for _, r := range s.byKey {
		out = append(out, r)
	}
	return out
}
