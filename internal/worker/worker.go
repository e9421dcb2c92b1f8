// Package worker runs the council-schedule reconciliation loop: it claims
// bookings off the queue, looks the address up on the council calendar and
// decides whether the rota can cover the customer.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/example/binrota/internal/bookings"
	"github.com/example/binrota/internal/council"
	"github.com/example/binrota/internal/db"
	"github.com/example/binrota/internal/match"
	"github.com/example/binrota/internal/rota"
)

// Diagnostics recorded on the booking when an outcome isn't an approval.
const (
	msgNoDates    = "Could not determine next empty dates from council calendar"
	msgNoCoverage = "No rota coverage in next 28 days for this area"
)

// Store is what the worker needs from the booking store. ClaimNext must be
// an atomic claim: it returns db.ErrNotFound when no 'new' booking exists
// and never hands the same booking to two callers.
type Store interface {
	ClaimNext(ctx context.Context) (bookings.Booking, error)
	MarkApproved(ctx context.Context, id int64, lookup []byte, rotaArea, nextEmpty, cleanDate string) error
	MarkRejected(ctx context.Context, id int64, lookup []byte, area, nextEmpty, msg string) error
	MarkFailed(ctx context.Context, id int64, lookup []byte, area, msg string) error
}

// Worker processes bookings strictly one at a time: claim, scrape, match,
// persist, then move on. Each booking gets its own scraper session.
type Worker struct {
	Store    Store
	Source   council.DateSource
	Interval time.Duration // sleep between polls when the queue is empty
}

// Run polls until the context is cancelled. Claim errors and empty queues
// both back off by Interval; a booking that fails stays failed and is never
// retried here.
func (w *Worker) Run(ctx context.Context) error {
	for {
		b, err := w.Store.ClaimNext(ctx)
		switch {
		case db.IsNotFound(err):
			// queue empty, quiet poll
		case err != nil:
			log.Printf("worker: claim failed: %v", err)
		default:
			log.Printf("worker: claimed booking id=%d postcode=%s", b.ID, b.Postcode)
			w.process(ctx, b)
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.Interval):
		}
	}
}

// process decides one booking's outcome and persists it. All paths write a
// terminal status; store write failures are logged and the booking is left
// in 'processing' for an operator to inspect.
func (w *Worker) process(ctx context.Context, b bookings.Booking) {
	area := rota.AreaForAddress(b.Postcode, b.Locality)

	res, err := w.Source.LookupCollectionDates(ctx, b.AddressFormatted)
	if err != nil {
		w.markFailed(ctx, b.ID, nil, area, fmt.Sprintf("Council calendar lookup failed: %v", err))
		return
	}

	lookup, err := json.Marshal(res)
	if err != nil {
		w.markFailed(ctx, b.ID, nil, area, fmt.Sprintf("Could not record council lookup: %v", err))
		return
	}

	nextEmpty, ok := match.EarliestRequestedDate(res.DatesByBin, b.Bins.Quantities())
	if !ok {
		w.markFailed(ctx, b.ID, lookup, area, msgNoDates)
		return
	}

	cov, ok := match.NextCoveredCleanDate(nextEmpty, area)
	if !ok {
		if err := w.Store.MarkRejected(ctx, b.ID, lookup, area, nextEmpty, msgNoCoverage); err != nil {
			log.Printf("worker: booking %d: mark rejected failed: %v", b.ID, err)
			return
		}
		log.Printf("worker: booking %d rejected: no coverage for %q from %s", b.ID, area, nextEmpty)
		return
	}

	if err := w.Store.MarkApproved(ctx, b.ID, lookup, cov.RotaArea, nextEmpty, cov.Date); err != nil {
		log.Printf("worker: booking %d: mark approved failed: %v", b.ID, err)
		return
	}
	log.Printf("worker: booking %d approved: clean %s on the %q run (next empty %s)",
		b.ID, cov.Date, cov.RotaArea, nextEmpty)
}

func (w *Worker) markFailed(ctx context.Context, id int64, lookup []byte, area, msg string) {
	if err := w.Store.MarkFailed(ctx, id, lookup, area, msg); err != nil {
		log.Printf("worker: booking %d: mark failed failed: %v", id, err)
		return
	}
	log.Printf("worker: booking %d failed: %s", id, msg)
}
