package picker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/nexgen-digital/agenda-bookings/internal/schedule"
)

// Picker errors.
var (
	ErrNoDaySelected      = errors.New("no day selected")
	ErrNoSlotChosen       = errors.New("no slot chosen")
	ErrSlotUnavailable    = errors.New("slot is not available")
	ErrSuperseded         = errors.New("day selection superseded by a newer one")
	ErrSubmissionInFlight = errors.New("booking submission already in flight")
	ErrAlreadySubmitted   = errors.New("booking already submitted for this session")
)

// Phase is the picker's coarse state.
type Phase string

const (
	PhaseBrowsing    Phase = "browsing"
	PhaseDaySelected Phase = "day_selected"
	PhaseSlotChosen  Phase = "slot_chosen"
)

// DayResolver annotates a day's slot grid with availability.
type DayResolver interface {
	ResolveDay(ctx context.Context, day time.Time) ([]schedule.Slot, error)
}

// Session is one browser's trip through the picker. All transitions are
// serialized by the mutex; the generation counter tags each day selection so
// a late-arriving resolution for an abandoned day is discarded instead of
// overwriting the newer selection's slots.
type Session struct {
	ID string

	mu          sync.Mutex
	weekAnchor  time.Time // always a Monday, midnight in the calendar zone
	selectedDay *time.Time
	slots       []schedule.Slot
	loading     bool
	chosenSlot  string
	generation  uint64
	submitting  bool
	submitted   bool
	lastSeen    time.Time
}

// Snapshot is a read-only copy of the session state for rendering.
type Snapshot struct {
	ID          string
	Phase       Phase
	WeekAnchor  time.Time
	SelectedDay *time.Time
	Slots       []schedule.Slot
	Loading     bool
	ChosenSlot  string
	Submitted   bool
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:         s.ID,
		Phase:      s.phaseLocked(),
		WeekAnchor: s.weekAnchor,
		Loading:    s.loading,
		ChosenSlot: s.chosenSlot,
		Submitted:  s.submitted,
	}
	if s.selectedDay != nil {
		day := *s.selectedDay
		snap.SelectedDay = &day
		snap.Slots = append([]schedule.Slot(nil), s.slots...)
	}
	return snap
}

func (s *Session) phaseLocked() Phase {
	switch {
	case s.chosenSlot != "":
		return PhaseSlotChosen
	case s.selectedDay != nil:
		return PhaseDaySelected
	default:
		return PhaseBrowsing
	}
}

// PreviousWeek shifts the anchor back seven days and returns to browsing.
func (s *Session) PreviousWeek() time.Time {
	return s.shiftWeek(-7)
}

// NextWeek shifts the anchor forward seven days and returns to browsing.
func (s *Session) NextWeek() time.Time {
	return s.shiftWeek(7)
}

func (s *Session) shiftWeek(days int) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.weekAnchor = s.weekAnchor.AddDate(0, 0, days)
	s.clearSelectionLocked()
	return s.weekAnchor
}

// clearSelectionLocked drops the selected day, its slots and any chosen slot,
// and invalidates in-flight resolutions.
func (s *Session) clearSelectionLocked() {
	s.selectedDay = nil
	s.slots = nil
	s.loading = false
	s.chosenSlot = ""
	s.generation++
}

// SelectDay moves to DaySelected with slots loading, resolves availability,
// and commits the result only if no newer selection arrived meanwhile. A
// superseded resolution returns ErrSuperseded and leaves state untouched.
// Resolver failures leave the day selected with an empty slot list.
func (s *Session) SelectDay(ctx context.Context, day time.Time, resolver DayResolver) ([]schedule.Slot, error) {
	s.mu.Lock()
	selected := day
	s.selectedDay = &selected
	s.slots = nil
	s.loading = true
	s.chosenSlot = ""
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	slots, err := resolver.ResolveDay(ctx, day)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return nil, ErrSuperseded
	}

	s.loading = false
	s.slots = slots
	return append([]schedule.Slot(nil), slots...), err
}

// SelectSlot chooses a time on the selected day. Valid only when that slot
// resolved as available.
func (s *Session) SelectSlot(clock string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selectedDay == nil || s.loading {
		return ErrNoDaySelected
	}
	for _, slot := range s.slots {
		if slot.Time == clock {
			if !slot.Available {
				return ErrSlotUnavailable
			}
			s.chosenSlot = clock
			return nil
		}
	}
	return ErrSlotUnavailable
}

// Back leaves the booking form and returns to browsing, discarding the
// chosen slot and the day selection. The week anchor is kept.
func (s *Session) Back() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearSelectionLocked()
}

// BeginSubmission claims the single submission allowed for this session and
// returns the confirmed (day, slot) pair. FinishSubmission must be called
// with the outcome; until then re-submission is rejected.
func (s *Session) BeginSubmission() (day time.Time, clock string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.submitted {
		return time.Time{}, "", ErrAlreadySubmitted
	}
	if s.submitting {
		return time.Time{}, "", ErrSubmissionInFlight
	}
	if s.selectedDay == nil {
		return time.Time{}, "", ErrNoDaySelected
	}
	if s.chosenSlot == "" {
		return time.Time{}, "", ErrNoSlotChosen
	}

	s.submitting = true
	return *s.selectedDay, s.chosenSlot, nil
}

// FinishSubmission records the submission outcome. On failure the form stays
// usable and the user may retry; on success the session is done booking.
func (s *Session) FinishSubmission(success bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.submitting = false
	if success {
		s.submitted = true
	}
}
