package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/binrota/internal/bookings"
)

type fakeBookingStore struct {
	created []bookings.Booking
	nextID  int64
}

func (f *fakeBookingStore) Create(ctx context.Context, b bookings.Booking) (int64, error) {
	f.nextID++
	f.created = append(f.created, b)
	return f.nextID, nil
}

func (f *fakeBookingStore) ListRecent(ctx context.Context, limit int) ([]bookings.Booking, error) {
	return f.created, nil
}

func postIntake(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(body))
	w := httptest.NewRecorder()
	s.handleBookingCreate(w, req)
	return w
}

func TestBookingIntake(t *testing.T) {
	store := &fakeBookingStore{}
	s := &Server{Bookings: store}

	w := postIntake(t, s, `{
		"name": "A Customer",
		"address": "12 Seacliff Road, Bangor",
		"postcode": "BT20 5EY",
		"locality": "Bangor",
		"bins": {"Black": {"quantity": 1}, "blue": {"quantity": 2}}
	}`)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, "new", resp.Status)

	require.Len(t, store.created, 1)
	b := store.created[0]
	assert.Equal(t, "A Customer", b.CustomerName)
	// colour keys are normalised to lowercase
	assert.Equal(t, bookings.Bins{"black": {Quantity: 1}, "blue": {Quantity: 2}}, b.Bins)
}

func TestBookingIntakeValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing address", `{"postcode":"BT20 5EY","bins":{"black":{"quantity":1}}}`},
		{"missing postcode", `{"address":"12 Seacliff Road","bins":{"black":{"quantity":1}}}`},
		{"no bins", `{"address":"12 Seacliff Road","postcode":"BT20 5EY","bins":{}}`},
		{"zero quantity only", `{"address":"12 Seacliff Road","postcode":"BT20 5EY","bins":{"black":{"quantity":0}}}`},
		{"bad json", `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeBookingStore{}
			s := &Server{Bookings: store}
			w := postIntake(t, s, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Empty(t, store.created)
		})
	}
}

func TestBookingIntakeMethodNotAllowed(t *testing.T) {
	s := &Server{Bookings: &fakeBookingStore{}}
	req := httptest.NewRequest(http.MethodGet, "/api/bookings", nil)
	w := httptest.NewRecorder()
	s.handleBookingCreate(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
