package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBookingStatus(t *testing.T) {
	for _, raw := range []string{"pending", "confirmed", "cancelled", "completed"} {
		s, err := ParseBookingStatus(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, BookingStatus(raw), s)
	}

	for _, raw := range []string{"", "PENDING", "done", "canceled", "pending "} {
		_, err := ParseBookingStatus(raw)
		assert.ErrorIs(t, err, ErrUnknownStatus, "%q must be rejected", raw)
	}
}

func TestBookingStatusBlocking(t *testing.T) {
	assert.True(t, BookingPending.Blocking())
	assert.True(t, BookingConfirmed.Blocking())
	assert.False(t, BookingCancelled.Blocking())
	assert.False(t, BookingCompleted.Blocking())
}

func TestBookingStatusTransitions(t *testing.T) {
	all := []BookingStatus{BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted}

	allowed := map[BookingStatus]map[BookingStatus]bool{
		BookingPending:   {BookingConfirmed: true, BookingCancelled: true},
		BookingConfirmed: {BookingCompleted: true, BookingCancelled: true},
		BookingCancelled: {},
		BookingCompleted: {},
	}

	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, allowed[from][to], from.CanTransitionTo(to),
				"%s -> %s", from, to)
		}
	}

	// Terminal states never move again, including self-transitions.
	assert.True(t, BookingCancelled.Terminal())
	assert.True(t, BookingCompleted.Terminal())
	assert.False(t, BookingPending.Terminal())
	assert.False(t, BookingConfirmed.Terminal())
}
