package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nexgen-digital/agenda-bookings/internal/http/response"
	"github.com/nexgen-digital/agenda-bookings/internal/picker"
	"github.com/nexgen-digital/agenda-bookings/internal/schedule"
)

type dayView struct {
	Date    string `json:"date"`
	Weekday string `json:"weekday"`
}

type sessionView struct {
	ID          string          `json:"id"`
	Phase       picker.Phase    `json:"phase"`
	WeekStart   string          `json:"week_start"`
	WeekEnd     string          `json:"week_end"`
	Days        []dayView       `json:"days"`
	SelectedDay string          `json:"selected_day,omitempty"`
	Slots       []schedule.Slot `json:"slots"`
	Loading     bool            `json:"loading"`
	ChosenSlot  string          `json:"chosen_slot,omitempty"`
	Submitted   bool            `json:"submitted"`
}

func renderSession(snap picker.Snapshot) sessionView {
	view := sessionView{
		ID:         snap.ID,
		Phase:      snap.Phase,
		WeekStart:  snap.WeekAnchor.Format(schedule.DayFormat),
		WeekEnd:    snap.WeekAnchor.AddDate(0, 0, 6).Format(schedule.DayFormat),
		Slots:      []schedule.Slot{},
		Loading:    snap.Loading,
		ChosenSlot: snap.ChosenSlot,
		Submitted:  snap.Submitted,
	}
	for _, day := range schedule.WeekDays(snap.WeekAnchor) {
		view.Days = append(view.Days, dayView{
			Date:    day.Format(schedule.DayFormat),
			Weekday: day.Weekday().String(),
		})
	}
	if snap.SelectedDay != nil {
		view.SelectedDay = snap.SelectedDay.Format(schedule.DayFormat)
		if snap.Slots != nil {
			view.Slots = snap.Slots
		}
	}
	return view
}

// CreateSession opens a new picker session anchored at the current week.
func (h *Handlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.Create()
	writeJSON(w, http.StatusCreated, renderSession(session.Snapshot()))
}

// GetSession returns the current picker state.
func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, renderSession(getSession(r).Snapshot()))
}

// NextWeek shifts the week forward and clears any selection.
func (h *Handlers) NextWeek(w http.ResponseWriter, r *http.Request) {
	session := getSession(r)
	session.NextWeek()
	writeJSON(w, http.StatusOK, renderSession(session.Snapshot()))
}

// PreviousWeek shifts the week back and clears any selection.
func (h *Handlers) PreviousWeek(w http.ResponseWriter, r *http.Request) {
	session := getSession(r)
	session.PreviousWeek()
	writeJSON(w, http.StatusOK, renderSession(session.Snapshot()))
}

type selectDayRequest struct {
	Date string `json:"date"`
}

// SelectDay selects a day and resolves its availability. A fetch failure is
// fail-closed: the day stays selected with zero slots and the client gets a
// retryable notification.
func (h *Handlers) SelectDay(w http.ResponseWriter, r *http.Request) {
	var req selectDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	day, err := schedule.ParseDay(req.Date, h.loc)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	session := getSession(r)
	if _, err := session.SelectDay(r.Context(), day, h.resolver); err != nil {
		if errors.Is(err, picker.ErrSuperseded) {
			response.Conflict(w, "Day selection superseded by a newer one")
			return
		}
		response.UpstreamUnavailable(w, "Could not load availability, please try again")
		return
	}

	writeJSON(w, http.StatusOK, renderSession(session.Snapshot()))
}

type selectSlotRequest struct {
	Time string `json:"time"`
}

// SelectSlot chooses an available time on the selected day.
func (h *Handlers) SelectSlot(w http.ResponseWriter, r *http.Request) {
	var req selectSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	session := getSession(r)
	if err := session.SelectSlot(req.Time); err != nil {
		switch {
		case errors.Is(err, picker.ErrNoDaySelected):
			response.Conflict(w, "Select a day before choosing a time")
		case errors.Is(err, picker.ErrSlotUnavailable):
			response.SlotUnavailable(w, "That time is not available")
		default:
			response.InternalError(w, "Could not choose slot")
		}
		return
	}

	writeJSON(w, http.StatusOK, renderSession(session.Snapshot()))
}

// Back leaves the booking form and returns to browsing.
func (h *Handlers) Back(w http.ResponseWriter, r *http.Request) {
	session := getSession(r)
	session.Back()
	writeJSON(w, http.StatusOK, renderSession(session.Snapshot()))
}
