package booking

// CarryOver projects a finished turn's session onto what the next turn sees.
// Flow state, record and turn history survive; a terminal state collapses to
// NOT_BOOKING with an empty record.
func CarryOver(s Session) Session {
	out := Session{
		ID:        s.ID,
		Turns:     s.Turns,
		FlowState: s.FlowState,
		Record:    s.Record,
		Attempt:   s.Attempt,
		Version:   s.Version,
		UpdatedAt: s.UpdatedAt,
	}
	if out.Turns == nil {
		out.Turns = []Turn{}
	}
	if out.Record == nil {
		out.Record = Record{}
	}
	if out.FlowState.Terminal() || !out.FlowState.Valid() {
		out.FlowState = NotBooking
		out.Record = Record{}
	}
	return out
}
