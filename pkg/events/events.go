package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nexgen-digital/agenda-bookings/pkg/logger"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Close() error {
	n.conn.Close()
	return nil
}

// NoopPublisher is used when no NATS URL is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	logger.DebugContext(ctx, "Event dropped (no event bus configured)", "subject", subject)
	return nil
}

func (NoopPublisher) Close() error { return nil }

// Event subjects
const (
	AppointmentBooked        = "appointment.booked"
	AppointmentBookingFailed = "appointment.booking_failed"
	AvailabilityFetchFailed  = "availability.fetch_failed"
)

// Event payloads
type AppointmentBookedEvent struct {
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Phone    string    `json:"phone"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
	BookedAt time.Time `json:"booked_at"`
}

type AppointmentBookingFailedEvent struct {
	Email    string    `json:"email"`
	StartsAt time.Time `json:"starts_at"`
	Reason   string    `json:"reason"`
	FailedAt time.Time `json:"failed_at"`
}

type AvailabilityFetchFailedEvent struct {
	Day      string    `json:"day"`
	Reason   string    `json:"reason"`
	FailedAt time.Time `json:"failed_at"`
}
