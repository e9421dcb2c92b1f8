// Package council looks up upcoming refuse-collection dates for an address
// on the council's online bin calendar.
package council

import "context"

// LookupResult is what a calendar lookup produced for one address.
type LookupResult struct {
	// RawText is the rendered text of the results widget, kept verbatim
	// for diagnostics.
	RawText string `json:"raw_text"`

	// DatesByBin maps a bin colour to its upcoming collection dates as
	// ascending ISO YYYY-MM-DD strings. Empty when the widget rendered
	// but no structured dates could be extracted.
	DatesByBin map[string][]string `json:"dates_by_bin"`
}

// DateSource is the capability the worker needs from the council calendar.
// The production implementation drives a headless browser; tests swap in a
// fake.
type DateSource interface {
	LookupCollectionDates(ctx context.Context, address string) (LookupResult, error)
}
