// Package web serves the booking intake API and a small session-gated ops
// dashboard for watching the worker's outcomes.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/example/binrota/internal/auth"
	"github.com/example/binrota/internal/bookings"
)

//go:embed templates/*.html
var fs embed.FS

// BookingStore is what the handlers need from the booking repository.
type BookingStore interface {
	Create(ctx context.Context, b bookings.Booking) (int64, error)
	ListRecent(ctx context.Context, limit int) ([]bookings.Booking, error)
}

type Server struct {
	Auth     *auth.Store
	Bookings BookingStore
}

type tmplData struct {
	Title string
	User  int64

	Flash    string
	Bookings []bookings.Booking
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	// Public intake endpoint the website's booking form posts to.
	mux.HandleFunc("/api/bookings", s.handleBookingCreate)

	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/logout", s.handleLogout)

	mux.Handle("/", s.Auth.RequireAuth(http.HandlerFunc(s.handleBookingsList)))

	return mux
}

// intakeRequest is the booking form payload.
type intakeRequest struct {
	Name     string                   `json:"name"`
	Email    string                   `json:"email"`
	Phone    string                   `json:"phone"`
	Address  string                   `json:"address"`
	Postcode string                   `json:"postcode"`
	Locality string                   `json:"locality"`
	Bins     map[string]intakeBinSpec `json:"bins"`
}

type intakeBinSpec struct {
	Quantity int `json:"quantity"`
}

func (s *Server) handleBookingCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req intakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	b := bookings.Booking{
		CustomerName:     strings.TrimSpace(req.Name),
		Email:            strings.TrimSpace(req.Email),
		Phone:            strings.TrimSpace(req.Phone),
		AddressFormatted: strings.TrimSpace(req.Address),
		Postcode:         strings.TrimSpace(req.Postcode),
		Locality:         strings.TrimSpace(req.Locality),
		Bins:             bookings.Bins{},
	}
	for colour, spec := range req.Bins {
		b.Bins[strings.ToLower(strings.TrimSpace(colour))] = bookings.BinRequest{Quantity: spec.Quantity}
	}

	if err := validateIntake(b); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.Bookings.Create(r.Context(), b)
	if err != nil {
		log.Printf("web: create booking: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "could not save booking")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{"id": id, "status": bookings.StatusNew})
}

func validateIntake(b bookings.Booking) error {
	if b.AddressFormatted == "" {
		return fmt.Errorf("address is required")
	}
	if b.Postcode == "" {
		return fmt.Errorf("postcode is required")
	}
	if !b.Bins.Requested() {
		return fmt.Errorf("at least one bin must be requested")
	}
	return nil
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (s *Server) handleBookingsList(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	bs, err := s.Bookings.ListRecent(r.Context(), 100)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.render(w, "templates/bookings.html", tmplData{
		Title:    "Bookings",
		User:     uid,
		Bookings: bs,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, "templates/login.html", tmplData{Title: "Login"})
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		username := strings.TrimSpace(r.FormValue("username"))
		password := r.FormValue("password")
		id, err := s.Auth.Authenticate(r.Context(), username, password)
		if err != nil {
			s.render(w, "templates/login.html", tmplData{Title: "Login", Flash: "Invalid username/password"})
			return
		}
		if err := s.Auth.SetSession(w, r, id); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/", http.StatusFound)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.Auth.ClearSession(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (s *Server) render(w http.ResponseWriter, name string, data tmplData) {
	t, err := template.ParseFS(fs,
		"templates/base.html",
		name,
	)
	if err != nil {
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.ExecuteTemplate(w, "base", data); err != nil {
		http.Error(w, "render error: "+err.Error(), http.StatusInternalServerError)
	}
}

func Start(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.Printf("web: listening on %s", addr)
	return srv.ListenAndServe()
}
