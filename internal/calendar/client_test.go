package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nexgen-digital/agenda-bookings/internal/schedule"
)

func nyLoc(t *testing.T) *time.Location {
	t.Helper()
	loc, err := schedule.LoadZone(schedule.DefaultTimezone)
	if err != nil {
		t.Fatalf("LoadZone: %v", err)
	}
	return loc
}

func TestBusyIntervals_RequestAndParsing(t *testing.T) {
	loc := nyLoc(t)

	var got map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("Expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Fatalf("Expected JSON content type, got %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("Decode request: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{
				"id": "ev-1",
				"summary": "Existing meeting",
				"start": "2025-10-20T10:00:00-04:00",
				"end": "2025-10-20T11:00:00-04:00",
				"timeZone": "America/New_York",
				"creator": "owner@example.com",
				"created": "2025-10-01T08:00:00-04:00"
			}
		]`))
	}))
	defer server.Close()

	client := NewWebhookClient(server.URL, 5*time.Second, loc)

	from := time.Date(2025, 10, 20, 0, 0, 0, 0, loc)
	to := time.Date(2025, 10, 21, 0, 0, 0, 0, loc)

	events, err := client.BusyIntervals(context.Background(), from, to)
	if err != nil {
		t.Fatalf("BusyIntervals: %v", err)
	}

	if got["action"] != "getAvailable" {
		t.Fatalf("action = %q, want getAvailable", got["action"])
	}
	if got["status"] != "active" {
		t.Fatalf("status = %q, want active", got["status"])
	}
	if got["fecha_start"] != "2025-10-20T00:00:00.000-04:00" {
		t.Fatalf("fecha_start = %q", got["fecha_start"])
	}
	if got["fecha_end"] != "2025-10-21T00:00:00.000-04:00" {
		t.Fatalf("fecha_end = %q", got["fecha_end"])
	}

	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev.ID != "ev-1" || ev.Summary != "Existing meeting" || ev.Creator != "owner@example.com" {
		t.Fatalf("Unexpected event %+v", ev)
	}

	wantStart := time.Date(2025, 10, 20, 10, 0, 0, 0, loc)
	if !ev.Start.Equal(wantStart) {
		t.Fatalf("Start = %v, want %v", ev.Start, wantStart)
	}
	if ev.Start.Location() != loc {
		t.Fatal("Event timestamps must be normalized into the calendar zone")
	}
}

func TestBusyIntervals_BareTimestampsAssumeCalendarZone(t *testing.T) {
	loc := nyLoc(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":"ev-2","start":"2025-10-20T13:00:00","end":"2025-10-20T14:00:00"}]`))
	}))
	defer server.Close()

	client := NewWebhookClient(server.URL, 5*time.Second, loc)
	events, err := client.BusyIntervals(context.Background(), time.Now(), time.Now())
	if err != nil {
		t.Fatalf("BusyIntervals: %v", err)
	}

	want := time.Date(2025, 10, 20, 13, 0, 0, 0, loc)
	if !events[0].Start.Equal(want) {
		t.Fatalf("Start = %v, want %v", events[0].Start, want)
	}
}

func TestBusyIntervals_ServerFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "workflow error", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewWebhookClient(server.URL, 5*time.Second, nyLoc(t))

	_, err := client.BusyIntervals(context.Background(), time.Now(), time.Now())
	if err == nil {
		t.Fatal("Expected error on 500")
	}

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Expected StatusError, got %T: %v", err, err)
	}
	if statusErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("StatusCode = %d", statusErr.StatusCode)
	}
}

func TestBusyIntervals_MalformedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"unexpected":"shape"}`))
	}))
	defer server.Close()

	client := NewWebhookClient(server.URL, 5*time.Second, nyLoc(t))

	if _, err := client.BusyIntervals(context.Background(), time.Now(), time.Now()); err == nil {
		t.Fatal("Expected error on malformed payload")
	}
}

func TestBusyIntervals_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := NewWebhookClient(server.URL, time.Second, nyLoc(t))

	if _, err := client.BusyIntervals(context.Background(), time.Now(), time.Now()); err == nil {
		t.Fatal("Expected error when backend is unreachable")
	}
}

func TestCreateAppointment_WireFormat(t *testing.T) {
	loc := nyLoc(t)

	var got map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("Decode request: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewWebhookClient(server.URL, 5*time.Second, loc)

	start := time.Date(2025, 10, 20, 14, 30, 0, 0, loc)
	err := client.CreateAppointment(context.Background(), CreateRequest{
		Name:  "Jane Doe",
		Email: "jane@example.com",
		Phone: "+1 555 000 0000",
		Start: start,
		End:   start.Add(30 * time.Minute),
		Slot:  "14:30",
	})
	if err != nil {
		t.Fatalf("CreateAppointment: %v", err)
	}

	// October 20 is daylight saving time in New York: offset -04:00.
	if got["date"] != "2025-10-20T14:30:00.000-04:00" {
		t.Fatalf("date = %q", got["date"])
	}
	if got["date30"] != "2025-10-20T15:00:00.000-04:00" {
		t.Fatalf("date30 = %q", got["date30"])
	}
	if got["time"] != "14:30" || got["action"] != "create" {
		t.Fatalf("time/action = %q/%q", got["time"], got["action"])
	}
	if got["name"] != "Jane Doe" || got["email"] != "jane@example.com" || got["phone"] != "+1 555 000 0000" {
		t.Fatalf("Contact fields wrong: %+v", got)
	}
}

func TestCreateAppointment_StandardTimeOffset(t *testing.T) {
	loc := nyLoc(t)

	var got map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
	}))
	defer server.Close()

	client := NewWebhookClient(server.URL, 5*time.Second, loc)

	start := time.Date(2025, 12, 15, 9, 0, 0, 0, loc)
	if err := client.CreateAppointment(context.Background(), CreateRequest{
		Name: "A", Email: "a@b.c", Phone: "1",
		Start: start, End: start.Add(30 * time.Minute), Slot: "09:00",
	}); err != nil {
		t.Fatalf("CreateAppointment: %v", err)
	}

	if got["date"] != "2025-12-15T09:00:00.000-05:00" {
		t.Fatalf("date = %q, want standard-time offset -05:00", got["date"])
	}
}
