package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-portal/internal/controller"
	"github.com/noah-isme/school-portal/internal/form"
	"github.com/noah-isme/school-portal/internal/models"
)

// CalendarView is the scheduler page payload.
type CalendarView struct {
	controller.SchedulerState
	Events []models.Event `json:"events"`
}

// EventForm is an event opened from the calendar.
type EventForm struct {
	Event        models.Event `json:"event"`
	Revision     uint64       `json:"revision,omitempty"`
	TeacherLabel string       `json:"teacher_label,omitempty"`
}

// SchedulerService backs the scheduler page.
type SchedulerService struct {
	*EntityService[models.Event]
}

// NewSchedulerService constructs a SchedulerService.
func NewSchedulerService(logger *zap.Logger) *SchedulerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchedulerService{&EntityService[models.Event]{
		list:   func(ws *Workspace) *controller.List[models.Event] { return ws.Scheduler.Events() },
		match:  func(e models.Event, q string) bool { return containsFold(e.Title, q) },
		logger: logger,
	}}
}

// Calendar returns the navigation state and the events inside the window.
func (s *SchedulerService) Calendar(ctx context.Context, ws *Workspace) CalendarView {
	ws.Scheduler.Events().Ensure(ctx)
	return CalendarView{SchedulerState: ws.Scheduler.State(), Events: ws.Scheduler.VisibleEvents()}
}

// SetView switches the calendar granularity.
func (s *SchedulerService) SetView(ctx context.Context, ws *Workspace, view controller.View) (CalendarView, error) {
	if err := ws.Scheduler.SetView(view); err != nil {
		return CalendarView{}, err
	}
	return s.Calendar(ctx, ws), nil
}

// Navigate moves the calendar.
func (s *SchedulerService) Navigate(ctx context.Context, ws *Workspace, action string, target time.Time) (CalendarView, error) {
	if err := ws.Scheduler.Navigate(action, target); err != nil {
		return CalendarView{}, err
	}
	return s.Calendar(ctx, ws), nil
}

// SelectSlot returns the draft for a new event over the chosen slot.
func (s *SchedulerService) SelectSlot(ws *Workspace, start, end time.Time, action string) EventForm {
	return EventForm{Event: ws.Scheduler.SelectSlot(start, end, action).Value()}
}

// SelectEvent opens an existing event with its teacher label.
func (s *SchedulerService) SelectEvent(ctx context.Context, ws *Workspace, id string) (*EventForm, error) {
	ws.Scheduler.Events().Ensure(ctx)
	sel, err := ws.Scheduler.SelectEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	return &EventForm{Event: sel.Form.Value(), Revision: sel.Form.Revision(), TeacherLabel: sel.TeacherLabel}, nil
}

// Teachers lists the teachers an event can be assigned to.
func (s *SchedulerService) Teachers(ctx context.Context, ws *Workspace) []models.TeacherRef {
	teachers, err := ws.Directory().Teachers(ctx)
	if err != nil {
		s.logger.Warn("failed to load teachers", zap.Error(err))
		ws.Notices.Error(PageScheduler, err)
		return []models.TeacherRef{}
	}
	return teachers
}

// Create saves a new event, filling in the default colours.
func (s *SchedulerService) Create(ctx context.Context, ws *Workspace, draft models.Event, attachment *models.Attachment) (form.Result[models.Event], error) {
	if draft.Color == "" {
		draft.Color = controller.DefaultEventColor
	}
	if draft.TextColor == "" {
		draft.TextColor = controller.DefaultEventTextColor
	}
	return s.EntityService.Create(ctx, ws, draft, attachment)
}
