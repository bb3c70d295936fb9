package engine

// slotKey identifies one reminder slot for one user.
type slotKey struct {
	userID int64
	slot   string
}

// ledger records which reminder slots have already been dispatched on a
// given calendar day. It is owned exclusively by the Engine and replaced
// wholesale when the observed date changes, so each day starts with zero
// sent-state. It is not persisted: a restart forgets the current day.
type ledger struct {
	day       string
	arrival   map[slotKey]bool
	departure map[slotKey]bool
}

func newLedger(day string) *ledger {
	return &ledger{
		day:       day,
		arrival:   make(map[slotKey]bool),
		departure: make(map[slotKey]bool),
	}
}

func (l *ledger) bucket(kind Kind) map[slotKey]bool {
	if kind == KindArrival {
		return l.arrival
	}
	return l.departure
}

// sent reports whether the slot already fired today.
func (l *ledger) sent(kind Kind, userID int64, slot string) bool {
	return l.bucket(kind)[slotKey{userID, slot}]
}

// markSent records the slot as fired for the rest of the day.
func (l *ledger) markSent(kind Kind, userID int64, slot string) {
	l.bucket(kind)[slotKey{userID, slot}] = true
}
