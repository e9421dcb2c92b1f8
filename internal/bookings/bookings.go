// Package bookings is the shared booking store: rows created by the intake
// form and worked through their lifecycle by the schedule worker.
package bookings

import (
	"time"
)

// Status is a booking's lifecycle state. Transitions only move forward:
// new -> processing -> one of the three terminal states. Terminal bookings
// are never revisited by the worker.
type Status string

const (
	StatusNew              Status = "new"
	StatusProcessing       Status = "processing"
	StatusApprovedForQuote Status = "approved_for_quote"
	StatusRejected         Status = "rejected"
	StatusFailed           Status = "failed"
)

// Terminal reports whether the status is an end state.
func (s Status) Terminal() bool {
	return s == StatusApprovedForQuote || s == StatusRejected || s == StatusFailed
}

// BinRequest is what the customer asked for one bin colour.
type BinRequest struct {
	Quantity int `json:"quantity"`
}

// Bins maps a bin colour ("grey", "blue", ...) to the customer's request
// for it. Stored as JSONB.
type Bins map[string]BinRequest

// Quantities flattens the request to colour -> quantity for date matching.
func (b Bins) Quantities() map[string]int {
	out := make(map[string]int, len(b))
	for colour, req := range b {
		out[colour] = req.Quantity
	}
	return out
}

// Requested reports whether at least one bin colour has a positive quantity.
func (b Bins) Requested() bool {
	for _, req := range b {
		if req.Quantity > 0 {
			return true
		}
	}
	return false
}

// Booking is one customer booking row.
type Booking struct {
	ID     int64
	Status Status

	CustomerName     string
	Email            string
	Phone            string
	AddressFormatted string
	Postcode         string
	Locality         string
	Bins             Bins

	// Fields written by the worker. CouncilLookup holds the marshaled
	// lookup result (JSONB); the date fields are ISO YYYY-MM-DD strings.
	CouncilLookup     []byte
	ProposedArea      *string
	NextEmptyDate     *string
	ProposedCleanDate *string
	ErrorMessage      *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
