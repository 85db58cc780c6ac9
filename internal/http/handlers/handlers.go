package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nexgen-digital/agenda-bookings/internal/booking"
	"github.com/nexgen-digital/agenda-bookings/internal/http/response"
	"github.com/nexgen-digital/agenda-bookings/internal/picker"
	"github.com/nexgen-digital/agenda-bookings/pkg/logger"
)

type contextKey string

const sessionKey contextKey = "picker_session"

type Handlers struct {
	sessions  *picker.Store
	resolver  picker.DayResolver
	submitter *booking.Submitter
	loc       *time.Location
}

func New(sessions *picker.Store, resolver picker.DayResolver, submitter *booking.Submitter, loc *time.Location) *Handlers {
	return &Handlers{
		sessions:  sessions,
		resolver:  resolver,
		submitter: submitter,
		loc:       loc,
	}
}

func (h *Handlers) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.CreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Use(h.withSession)
			r.Get("/", h.GetSession)
			r.Post("/week/next", h.NextWeek)
			r.Post("/week/previous", h.PreviousWeek)
			r.Post("/day", h.SelectDay)
			r.Post("/slot", h.SelectSlot)
			r.Post("/back", h.Back)
			r.Post("/bookings", h.SubmitBooking)
		})
	})

	r.Get("/availability", h.GetAvailability)

	return r
}

// withSession loads the picker session from the URL and tags the request
// context for logging.
func (h *Handlers) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		session, ok := h.sessions.Get(id)
		if !ok {
			response.NotFound(w, "Session not found or expired")
			return
		}

		ctx := context.WithValue(r.Context(), sessionKey, session)
		ctx = context.WithValue(ctx, logger.SessionIDKey, session.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func getSession(r *http.Request) *picker.Session {
	session, _ := r.Context().Value(sessionKey).(*picker.Session)
	return session
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}
