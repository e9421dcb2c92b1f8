package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/binrota/internal/bookings"
	"github.com/example/binrota/internal/council"
	"github.com/example/binrota/internal/db"
)

type fakeSource struct {
	res council.LookupResult
	err error
}

func (f *fakeSource) LookupCollectionDates(ctx context.Context, address string) (council.LookupResult, error) {
	return f.res, f.err
}

// outcome is the terminal write a fake store observed.
type outcome struct {
	status    bookings.Status
	lookup    []byte
	area      string
	nextEmpty string
	cleanDate string
	msg       string
}

type fakeStore struct {
	mu    sync.Mutex
	queue []bookings.Booking
	marks map[int64]outcome
}

func newFakeStore(bs ...bookings.Booking) *fakeStore {
	return &fakeStore{queue: bs, marks: map[int64]outcome{}}
}

func (f *fakeStore) ClaimNext(ctx context.Context) (bookings.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queue) == 0 {
		return bookings.Booking{}, db.ErrNotFound
	}
	b := f.queue[0]
	f.queue = f.queue[1:]
	b.Status = bookings.StatusProcessing
	return b, nil
}

func (f *fakeStore) MarkApproved(ctx context.Context, id int64, lookup []byte, rotaArea, nextEmpty, cleanDate string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.marks[id] = outcome{status: bookings.StatusApprovedForQuote, lookup: lookup, area: rotaArea, nextEmpty: nextEmpty, cleanDate: cleanDate}
	return nil
}

func (f *fakeStore) MarkRejected(ctx context.Context, id int64, lookup []byte, area, nextEmpty, msg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.marks[id] = outcome{status: bookings.StatusRejected, lookup: lookup, area: area, nextEmpty: nextEmpty, msg: msg}
	return nil
}

func (f *fakeStore) MarkFailed(ctx context.Context, id int64, lookup []byte, area, msg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.marks[id] = outcome{status: bookings.StatusFailed, lookup: lookup, area: area, msg: msg}
	return nil
}

func (f *fakeStore) mark(id int64) (outcome, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.marks[id]
	return o, ok
}

func testBooking(id int64) bookings.Booking {
	return bookings.Booking{
		ID:               id,
		Status:           bookings.StatusNew,
		AddressFormatted: "1 Main Street, Portaferry",
		Postcode:         "BT22 1AB", // classifies as "Ards"
		Locality:         "Portaferry",
		Bins:             bookings.Bins{"black": {Quantity: 1}},
	}
}

func TestProcessApproved(t *testing.T) {
	// 2026-03-02 is a Monday on the "Ards & Bangor" run; the customer's
	// derived area "Ards" matches it same-day.
	store := newFakeStore()
	src := &fakeSource{res: council.LookupResult{
		RawText:    "Black bin: Monday 2 March 2026",
		DatesByBin: map[string][]string{"black": {"2026-03-02"}},
	}}
	w := &Worker{Store: store, Source: src, Interval: time.Millisecond}

	w.process(context.Background(), testBooking(1))

	o, ok := store.mark(1)
	require.True(t, ok)
	assert.Equal(t, bookings.StatusApprovedForQuote, o.status)
	assert.Equal(t, "2026-03-02", o.nextEmpty)
	assert.Equal(t, "2026-03-02", o.cleanDate)
	assert.Equal(t, "Ards & Bangor", o.area)

	var res council.LookupResult
	require.NoError(t, json.Unmarshal(o.lookup, &res))
	assert.Equal(t, src.res, res)
}

func TestProcessFailedWhenNoDatesExtracted(t *testing.T) {
	store := newFakeStore()
	src := &fakeSource{res: council.LookupResult{RawText: "something rendered, nothing parsed"}}
	w := &Worker{Store: store, Source: src}

	w.process(context.Background(), testBooking(2))

	o, ok := store.mark(2)
	require.True(t, ok)
	assert.Equal(t, bookings.StatusFailed, o.status)
	assert.Equal(t, msgNoDates, o.msg)
	assert.Equal(t, "Ards", o.area)
	assert.NotEmpty(t, o.lookup, "the raw lookup is recorded for diagnostics")
}

func TestProcessRejectedWhenNoCoverage(t *testing.T) {
	store := newFakeStore()
	src := &fakeSource{res: council.LookupResult{
		DatesByBin: map[string][]string{"black": {"2026-03-02"}},
	}}
	w := &Worker{Store: store, Source: src}

	b := testBooking(3)
	b.Postcode = "EH1 1AA" // outside every district: derived area "Unknown"
	b.Locality = "Edinburgh"
	w.process(context.Background(), b)

	o, ok := store.mark(3)
	require.True(t, ok)
	assert.Equal(t, bookings.StatusRejected, o.status)
	assert.Equal(t, msgNoCoverage, o.msg)
	assert.Equal(t, "Unknown", o.area)
	assert.Equal(t, "2026-03-02", o.nextEmpty)
}

func TestProcessFailedOnScraperError(t *testing.T) {
	store := newFakeStore()
	src := &fakeSource{err: errors.New("waiting for selector #bin-collection-results: context deadline exceeded")}
	w := &Worker{Store: store, Source: src}

	w.process(context.Background(), testBooking(4))

	o, ok := store.mark(4)
	require.True(t, ok)
	assert.Equal(t, bookings.StatusFailed, o.status)
	assert.Contains(t, o.msg, "Council calendar lookup failed")
	assert.Contains(t, o.msg, "deadline exceeded")
	assert.Nil(t, o.lookup, "no lookup payload when the scrape itself failed")
}

func TestRunDrainsQueueAndStopsOnCancel(t *testing.T) {
	store := newFakeStore(testBooking(10), testBooking(11))
	src := &fakeSource{res: council.LookupResult{
		DatesByBin: map[string][]string{"black": {"2026-03-02"}},
	}}
	w := &Worker{Store: store, Source: src, Interval: 5 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool {
		_, ok10 := store.mark(10)
		_, ok11 := store.mark(11)
		return ok10 && ok11
	}, time.Second, 5*time.Millisecond, "both bookings should be processed")

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
