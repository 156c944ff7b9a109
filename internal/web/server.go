// Package web is the thin status front end: a login page and a
// dashboard showing the configured rules, the room priority list, and
// the days the ledger holds. It never touches the booking site.
package web

import (
	"context"
	"embed"
	"html/template"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/example/roombooker/internal/auth"
	"github.com/example/roombooker/internal/booking"
	"github.com/example/roombooker/internal/ledger"
)

//go:embed templates/*.html
var fs embed.FS

type Server struct {
	Auth   *auth.Store
	Ledger *ledger.Store
	Rules  []booking.RecurrenceRule
	Rooms  [][]booking.Room
}

type bookedDay struct {
	Date     string
	BookedAt string
}

type tmplData struct {
	Title string
	Flash string

	Rules  []booking.RecurrenceRule
	Rooms  [][]booking.Room
	Booked []bookedDay
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/logout", s.handleLogout)
	mux.Handle("/", s.Auth.RequireAuth(http.HandlerFunc(s.handleStatus)))

	return mux
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	entries, err := s.Ledger.BookedDays(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	booked := make([]bookedDay, 0, len(entries))
	for _, e := range entries {
		booked = append(booked, bookedDay{
			Date:     e.Date().Format("Mon Jan 2 2006"),
			BookedAt: e.BookedAt.Format(time.RFC822),
		})
	}
	s.render(w, "templates/status.html", tmplData{
		Title:  "Reservations",
		Rules:  s.Rules,
		Rooms:  s.Rooms,
		Booked: booked,
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
		id, err := s.Auth.Authenticate(r.Context(), username, r.FormValue("password"))
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
	t, err := template.ParseFS(fs, name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := t.Execute(w, data); err != nil {
		log.Printf("web: render %s: %v", name, err)
	}
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func Start(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: h}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
