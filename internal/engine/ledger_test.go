package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLedger_MarkAndQuery(t *testing.T) {
	l := newLedger("2025-05-05")

	assert.False(t, l.sent(KindArrival, 1, "09:00"))
	l.markSent(KindArrival, 1, "09:00")
	assert.True(t, l.sent(KindArrival, 1, "09:00"))

	// Kinds, users and slots are independent keys.
	assert.False(t, l.sent(KindDeparture, 1, "09:00"))
	assert.False(t, l.sent(KindArrival, 2, "09:00"))
	assert.False(t, l.sent(KindArrival, 1, "09:30"))
}
