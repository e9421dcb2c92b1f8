package bookings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusNew.Terminal())
	assert.False(t, StatusProcessing.Terminal())
	assert.True(t, StatusApprovedForQuote.Terminal())
	assert.True(t, StatusRejected.Terminal())
	assert.True(t, StatusFailed.Terminal())
}

func TestBinsQuantities(t *testing.T) {
	b := Bins{"black": {Quantity: 2}, "blue": {Quantity: 0}}
	assert.Equal(t, map[string]int{"black": 2, "blue": 0}, b.Quantities())
}

func TestBinsRequested(t *testing.T) {
	assert.False(t, Bins{}.Requested())
	assert.False(t, Bins{"black": {Quantity: 0}}.Requested())
	assert.True(t, Bins{"black": {Quantity: 0}, "brown": {Quantity: 1}}.Requested())
}
