package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nexgen-digital/agenda-bookings/internal/schedule"
)

// WireTime is the timestamp format the calendar backend expects: ISO-8601
// with milliseconds and a numeric UTC offset, never "Z".
const WireTime = "2006-01-02T15:04:05.000-07:00"

const defaultTimeout = 10 * time.Second

// Service is the injectable calendar backend boundary. An interface keeps
// the resolver and the booking submitter testable with substitute
// implementations.
type Service interface {
	BusyIntervals(ctx context.Context, from, to time.Time) ([]schedule.Event, error)
	CreateAppointment(ctx context.Context, req CreateRequest) error
}

// CreateRequest is a confirmed (day, slot, contact) tuple ready to submit.
type CreateRequest struct {
	Name  string
	Email string
	Phone string
	Start time.Time
	End   time.Time
	Slot  string // "HH:MM"
}

// StatusError is a non-2xx reply from the calendar backend.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("calendar: status %d: %s", e.StatusCode, e.Body)
}

// WebhookClient talks to the external webhook-based calendar backend.
type WebhookClient struct {
	endpoint   string
	httpClient *http.Client
	loc        *time.Location
}

func NewWebhookClient(endpoint string, timeout time.Duration, loc *time.Location) *WebhookClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &WebhookClient{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		loc: loc,
	}
}

type availabilityRequest struct {
	FechaStart string `json:"fecha_start"`
	FechaEnd   string `json:"fecha_end"`
	Action     string `json:"action"`
	Status     string `json:"status"`
}

type wireEvent struct {
	ID       string `json:"id"`
	Summary  string `json:"summary"`
	Start    string `json:"start"`
	End      string `json:"end"`
	TimeZone string `json:"timeZone"`
	Creator  string `json:"creator"`
	Created  string `json:"created"`
}

type createRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Date   string `json:"date"`
	Date30 string `json:"date30"`
	Time   string `json:"time"`
	Action string `json:"action"`
}

// BusyIntervals fetches the confirmed busy intervals overlapping [from, to).
// One attempt, no retry; any failure means availability cannot be trusted.
func (c *WebhookClient) BusyIntervals(ctx context.Context, from, to time.Time) ([]schedule.Event, error) {
	body := availabilityRequest{
		FechaStart: from.Format(WireTime),
		FechaEnd:   to.Format(WireTime),
		Action:     "getAvailable",
		Status:     "active",
	}

	var wire []wireEvent
	if err := c.do(ctx, body, &wire); err != nil {
		return nil, err
	}

	events := make([]schedule.Event, 0, len(wire))
	for _, w := range wire {
		start, err := c.parseStamp(w.Start)
		if err != nil {
			return nil, fmt.Errorf("calendar: event %s start: %w", w.ID, err)
		}
		end, err := c.parseStamp(w.End)
		if err != nil {
			return nil, fmt.Errorf("calendar: event %s end: %w", w.ID, err)
		}
		created, _ := c.parseStamp(w.Created)
		events = append(events, schedule.Event{
			ID:       w.ID,
			Summary:  w.Summary,
			Start:    start,
			End:      end,
			TimeZone: w.TimeZone,
			Creator:  w.Creator,
			Created:  created,
		})
	}
	return events, nil
}

// CreateAppointment submits one create-event request. Single attempt; the
// caller decides what the user sees on failure.
func (c *WebhookClient) CreateAppointment(ctx context.Context, req CreateRequest) error {
	body := createRequest{
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Date:   req.Start.Format(WireTime),
		Date30: req.End.Format(WireTime),
		Time:   req.Slot,
		Action: "create",
	}
	return c.do(ctx, body, nil)
}

func (c *WebhookClient) do(ctx context.Context, in, out interface{}) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("calendar: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("calendar: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calendar: http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("calendar: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := string(respBody)
		if len(msg) > 300 {
			msg = msg[:300]
		}
		return &StatusError{StatusCode: resp.StatusCode, Body: msg}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("calendar: unmarshal response: %w", err)
		}
	}
	return nil
}

// parseStamp accepts RFC 3339 stamps (with or without fractional seconds) and
// bare local stamps, normalizing everything into the canonical zone.
func (c *WebhookClient) parseStamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(c.loc), nil
	}
	t, err := time.ParseInLocation("2006-01-02T15:04:05", s, c.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
