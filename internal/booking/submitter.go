package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nexgen-digital/agenda-bookings/internal/calendar"
	"github.com/nexgen-digital/agenda-bookings/internal/schedule"
	"github.com/nexgen-digital/agenda-bookings/pkg/events"
	"github.com/nexgen-digital/agenda-bookings/pkg/logger"
	"github.com/nexgen-digital/agenda-bookings/pkg/mailer"
)

// ContactInfo is what the booking form collects.
type ContactInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Confirmation echoes the booked slot back to the user.
type Confirmation struct {
	Day      string    `json:"day"`
	Time     string    `json:"time"`
	Email    string    `json:"email"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

// ValidationError marks a submission rejected before any network call.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

// Submitter converts a confirmed (day, slot, contact) tuple into one
// create-event request against the calendar backend.
type Submitter struct {
	calendar calendar.Service
	eventBus events.Publisher
	mailer   mailer.Service
}

func NewSubmitter(cal calendar.Service, eventBus events.Publisher, mail mailer.Service) *Submitter {
	if eventBus == nil {
		eventBus = events.NoopPublisher{}
	}
	return &Submitter{
		calendar: cal,
		eventBus: eventBus,
		mailer:   mail,
	}
}

// Submit validates the contact fields, anchors the slot to absolute
// timestamps in the calendar zone and submits exactly one create request.
// Validation failures never reach the network.
func (s *Submitter) Submit(ctx context.Context, day time.Time, clock string, contact ContactInfo) (*Confirmation, error) {
	if err := validateContact(contact); err != nil {
		return nil, err
	}

	start, end, err := schedule.SlotBounds(day, clock)
	if err != nil {
		return nil, err
	}

	req := calendar.CreateRequest{
		Name:  strings.TrimSpace(contact.Name),
		Email: strings.TrimSpace(contact.Email),
		Phone: strings.TrimSpace(contact.Phone),
		Start: start,
		End:   end,
		Slot:  clock,
	}

	if err := s.calendar.CreateAppointment(ctx, req); err != nil {
		logger.ErrorContext(ctx, "Booking submission failed",
			"starts_at", start.Format(time.RFC3339),
			"error", err,
		)
		s.publish(ctx, events.AppointmentBookingFailed, events.AppointmentBookingFailedEvent{
			Email:    req.Email,
			StartsAt: start,
			Reason:   err.Error(),
			FailedAt: time.Now(),
		})
		return nil, fmt.Errorf("submit booking: %w", err)
	}

	s.publish(ctx, events.AppointmentBooked, events.AppointmentBookedEvent{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		StartsAt: start,
		EndsAt:   end,
		BookedAt: time.Now(),
	})

	// The confirmation view promises an email; best effort, never blocks the
	// booking outcome.
	if s.mailer != nil {
		if err := s.mailer.SendBookingConfirmation(req.Email, req.Name, start, clock); err != nil {
			logger.WarnContext(ctx, "Failed to send confirmation email", "error", err)
		}
	}

	return &Confirmation{
		Day:      day.Format(schedule.DayFormat),
		Time:     clock,
		Email:    req.Email,
		StartsAt: start,
		EndsAt:   end,
	}, nil
}

func (s *Submitter) publish(ctx context.Context, subject string, payload interface{}) {
	if err := s.eventBus.Publish(ctx, subject, payload); err != nil {
		logger.ErrorContext(ctx, "Failed to publish booking event", "subject", subject, "error", err)
	}
}

func validateContact(contact ContactInfo) error {
	if strings.TrimSpace(contact.Name) == "" {
		return &ValidationError{Field: "name"}
	}
	if strings.TrimSpace(contact.Email) == "" {
		return &ValidationError{Field: "email"}
	}
	if strings.TrimSpace(contact.Phone) == "" {
		return &ValidationError{Field: "phone"}
	}
	return nil
}
