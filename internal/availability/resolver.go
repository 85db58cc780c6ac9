package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/nexgen-digital/agenda-bookings/internal/calendar"
	"github.com/nexgen-digital/agenda-bookings/internal/schedule"
	"github.com/nexgen-digital/agenda-bookings/pkg/events"
	"github.com/nexgen-digital/agenda-bookings/pkg/logger"
)

// Resolver reconciles the remote busy intervals against the fixed daily grid.
type Resolver struct {
	calendar calendar.Service
	eventBus events.Publisher
}

func NewResolver(cal calendar.Service, eventBus events.Publisher) *Resolver {
	if eventBus == nil {
		eventBus = events.NoopPublisher{}
	}
	return &Resolver{
		calendar: cal,
		eventBus: eventBus,
	}
}

// ResolveDay fetches the day's busy intervals and annotates each grid slot.
// On any failure it returns an empty slot list along with the error: when the
// authoritative source is unreachable we offer nothing rather than guess
// (fail-closed). No retry; the user retries by reselecting the day.
func (r *Resolver) ResolveDay(ctx context.Context, day time.Time) ([]schedule.Slot, error) {
	from, to := schedule.DayBounds(day)

	busy, err := r.calendar.BusyIntervals(ctx, from, to)
	if err != nil {
		logger.ErrorContext(ctx, "Availability fetch failed",
			"day", day.Format(schedule.DayFormat),
			"error", err,
		)
		r.publishFetchFailed(ctx, day, err)
		return []schedule.Slot{}, fmt.Errorf("resolve availability for %s: %w", day.Format(schedule.DayFormat), err)
	}

	grid := schedule.Grid()
	slots := make([]schedule.Slot, 0, len(grid))
	for _, clock := range grid {
		start, end, err := schedule.SlotBounds(day, clock)
		if err != nil {
			return []schedule.Slot{}, err
		}
		slots = append(slots, schedule.Slot{
			Time:      clock,
			Available: !schedule.Occupied(start, end, busy),
		})
	}
	return slots, nil
}

func (r *Resolver) publishFetchFailed(ctx context.Context, day time.Time, cause error) {
	event := events.AvailabilityFetchFailedEvent{
		Day:      day.Format(schedule.DayFormat),
		Reason:   cause.Error(),
		FailedAt: time.Now(),
	}
	if err := r.eventBus.Publish(ctx, events.AvailabilityFetchFailed, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish availability fetch event", "error", err)
	}
}
