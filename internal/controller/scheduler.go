package controller

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-portal/internal/form"
	"github.com/noah-isme/school-portal/internal/models"
	appErrors "github.com/noah-isme/school-portal/pkg/errors"
)

// View is the calendar granularity shown by the scheduler.
type View string

const (
	ViewMonth View = "month"
	ViewWeek  View = "week"
	ViewDay   View = "day"
)

// Navigation actions understood by Navigate.
const (
	NavigatePrev  = "prev"
	NavigateNext  = "next"
	NavigateToday = "today"
	NavigateDate  = "date"
)

// SlotActionSelect marks a slot chosen by dragging across the calendar.
const SlotActionSelect = "select"

// Default colours of events created from the scheduler.
const (
	DefaultEventColor     = "#3B82F6"
	DefaultEventTextColor = "#FFFFFF"
)

// TeacherDirectory lists the teachers an event can be assigned to.
type TeacherDirectory interface {
	Teachers(ctx context.Context) ([]models.TeacherRef, error)
}

// SchedulerState is the navigation state of the calendar.
type SchedulerState struct {
	View       View      `json:"view"`
	Date       time.Time `json:"date"`
	RangeStart time.Time `json:"range_start"`
	RangeEnd   time.Time `json:"range_end"`
}

// EventSelection is an event opened for editing from the calendar.
type EventSelection struct {
	Form         *form.Form[models.Event]
	TeacherLabel string
}

// Scheduler keeps the calendar view of one workspace on top of the event list.
type Scheduler struct {
	events   *List[models.Event]
	teachers TeacherDirectory
	logger   *zap.Logger
	now      func() time.Time

	mu   sync.Mutex
	view View
	date time.Time
}

// NewScheduler starts in month view on today's date.
func NewScheduler(events *List[models.Event], teachers TeacherDirectory, now func() time.Time, logger *zap.Logger) *Scheduler {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		events:   events,
		teachers: teachers,
		logger:   logger,
		now:      now,
		view:     ViewMonth,
		date:     startOfDay(now()),
	}
}

// Events returns the underlying event list controller.
func (s *Scheduler) Events() *List[models.Event] { return s.events }

// State returns the view, the navigation date and the visible window.
func (s *Scheduler) State() SchedulerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	from, to := visibleRange(s.view, s.date)
	return SchedulerState{View: s.view, Date: s.date, RangeStart: from, RangeEnd: to}
}

// SetView switches the calendar granularity.
func (s *Scheduler) SetView(v View) error {
	switch v {
	case ViewMonth, ViewWeek, ViewDay:
	default:
		return appErrors.Validation("View must be one of month, week, day", map[string]string{"view": "invalid"})
	}
	s.mu.Lock()
	s.view = v
	s.mu.Unlock()
	return nil
}

// Navigate moves the navigation date. prev and next step by one unit of the
// current view, today jumps to the clock's day and date jumps to target.
func (s *Scheduler) Navigate(action string, target time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch action {
	case NavigatePrev:
		s.date = step(s.view, s.date, -1)
	case NavigateNext:
		s.date = step(s.view, s.date, 1)
	case NavigateToday:
		s.date = startOfDay(s.now())
	case NavigateDate:
		if target.IsZero() {
			return appErrors.Validation("Date is required", map[string]string{"date": "required"})
		}
		s.date = startOfDay(target)
	default:
		return appErrors.Validation("Unknown navigation action", map[string]string{"action": "invalid"})
	}
	return nil
}

// VisibleRange returns the half-open window [from, to) of the current view.
func (s *Scheduler) VisibleRange() (time.Time, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return visibleRange(s.view, s.date)
}

// VisibleEvents returns the events overlapping the visible window.
func (s *Scheduler) VisibleEvents() []models.Event {
	from, to := s.VisibleRange()
	var out []models.Event
	for _, e := range s.events.Rows() {
		if e.Overlaps(from, to) {
			out = append(out, e)
		}
	}
	return out
}

// SelectSlot opens a create form for the selected time slot. Dragging a
// selection that spans a full day or more makes the event all-day.
func (s *Scheduler) SelectSlot(start, end time.Time, action string) *form.Form[models.Event] {
	draft := models.Event{
		Start:     start,
		End:       end,
		AllDay:    action == SlotActionSelect && end.Sub(start) >= 24*time.Hour,
		Color:     DefaultEventColor,
		TextColor: DefaultEventTextColor,
	}
	return s.events.NewForm(draft)
}

// SelectEvent opens a stored event for editing, with its teacher resolved to
// a display label.
func (s *Scheduler) SelectEvent(ctx context.Context, id string) (*EventSelection, error) {
	event, _, ok := s.events.Get(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
	}
	f, err := s.events.OpenEdit(id)
	if err != nil {
		return nil, err
	}
	return &EventSelection{Form: f, TeacherLabel: s.teacherLabel(ctx, event)}, nil
}

func (s *Scheduler) teacherLabel(ctx context.Context, event models.Event) string {
	if event.Teacher != nil && event.Teacher.Username != "" {
		return event.Teacher.Label()
	}
	if event.TeacherID == "" || s.teachers == nil {
		return ""
	}
	teachers, err := s.teachers.Teachers(ctx)
	if err != nil {
		s.logger.Warn("failed to load teacher directory", zap.Error(err))
		return ""
	}
	for _, t := range teachers {
		if t.ID == event.TeacherID {
			return t.Label()
		}
	}
	return ""
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func step(v View, date time.Time, n int) time.Time {
	switch v {
	case ViewDay:
		return date.AddDate(0, 0, n)
	case ViewWeek:
		return date.AddDate(0, 0, 7*n)
	default:
		return addMonths(date, n)
	}
}

// addMonths moves by whole months, clamping the day so Jan 31 + 1 month is
// the last day of February rather than early March.
func addMonths(date time.Time, n int) time.Time {
	y, m, d := date.Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, date.Location()).AddDate(0, n, 0)
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, date.Location())
}

func visibleRange(v View, date time.Time) (time.Time, time.Time) {
	day := startOfDay(date)
	switch v {
	case ViewDay:
		return day, day.AddDate(0, 0, 1)
	case ViewWeek:
		from := day.AddDate(0, 0, -int(day.Weekday()))
		return from, from.AddDate(0, 0, 7)
	default:
		from := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
		return from, from.AddDate(0, 1, 0)
	}
}
