package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nexgen-digital/agenda-bookings/internal/booking"
	"github.com/nexgen-digital/agenda-bookings/internal/http/response"
	"github.com/nexgen-digital/agenda-bookings/internal/picker"
	"github.com/nexgen-digital/agenda-bookings/internal/schedule"
)

// SubmitBooking submits the chosen slot with the contact details. The
// session allows one submission at a time and one success overall; failures
// keep the form retryable.
func (h *Handlers) SubmitBooking(w http.ResponseWriter, r *http.Request) {
	var contact booking.ContactInfo
	if err := json.NewDecoder(r.Body).Decode(&contact); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	session := getSession(r)
	day, clock, err := session.BeginSubmission()
	if err != nil {
		switch {
		case errors.Is(err, picker.ErrAlreadySubmitted):
			response.Conflict(w, "This booking has already been submitted")
		case errors.Is(err, picker.ErrSubmissionInFlight):
			response.Conflict(w, "A submission is already in progress")
		case errors.Is(err, picker.ErrNoDaySelected), errors.Is(err, picker.ErrNoSlotChosen):
			response.Conflict(w, "Choose a day and time before booking")
		default:
			response.InternalError(w, "Could not submit booking")
		}
		return
	}

	confirmation, err := h.submitter.Submit(r.Context(), day, clock, contact)
	if err != nil {
		session.FinishSubmission(false)

		var validationErr *booking.ValidationError
		if errors.As(err, &validationErr) {
			response.BadRequest(w, validationErr.Error())
			return
		}
		response.UpstreamUnavailable(w, "Booking failed, please try again or contact support")
		return
	}

	session.FinishSubmission(true)
	writeJSON(w, http.StatusCreated, confirmation)
}

type availabilityView struct {
	Date  string          `json:"date"`
	Slots []schedule.Slot `json:"slots"`
}

// GetAvailability is the stateless day query: same resolution as the picker,
// no session required.
func (h *Handlers) GetAvailability(w http.ResponseWriter, r *http.Request) {
	day, err := schedule.ParseDay(r.URL.Query().Get("date"), h.loc)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	slots, err := h.resolver.ResolveDay(r.Context(), day)
	if err != nil {
		response.UpstreamUnavailable(w, "Could not load availability, please try again")
		return
	}

	writeJSON(w, http.StatusOK, availabilityView{
		Date:  day.Format(schedule.DayFormat),
		Slots: slots,
	})
}
