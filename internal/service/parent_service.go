package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-portal/internal/models"
	appErrors "github.com/noah-isme/school-portal/pkg/errors"
)

// ParentOverview is what a parent sees for one child.
type ParentOverview struct {
	Student    models.Student               `json:"student"`
	StartDate  string                       `json:"start_date,omitempty"`
	EndDate    string                       `json:"end_date,omitempty"`
	Attendance []models.AttendanceReportRow `json:"attendance"`
	Exams      []models.ExamReportRow       `json:"exams"`
	Fees       []models.FeeReportRow        `json:"fees"`
}

// ParentService backs the parent portal.
type ParentService struct {
	progress *progressSource
	logger   *zap.Logger
}

// NewParentService constructs a ParentService.
func NewParentService(attendance *AttendanceService, logger *zap.Logger) *ParentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ParentService{
		progress: &progressSource{attendance: attendance, logger: logger},
		logger:   logger,
	}
}

var unbounded = DateRange{To: time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)}

// Overview returns the child's attendance, exam results and fees. When both
// bounds are empty every date is kept, otherwise the range is inclusive.
func (s *ParentService) Overview(ctx context.Context, ws *Workspace, studentID, start, end string) (*ParentOverview, error) {
	if strings.TrimSpace(studentID) == "" {
		return nil, appErrors.Validation("Please select a student.", map[string]string{"student_id": "required"})
	}
	rng := unbounded
	if start != "" || end != "" {
		var err error
		if rng, err = ParseDateRange(start, end); err != nil {
			return nil, err
		}
	}

	ws.Students.Ensure(ctx)
	student, _, ok := ws.Students.Get(studentID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}

	out := &ParentOverview{Student: student}
	if rng != unbounded {
		out.StartDate = rng.From.Format(models.DayLayout)
		out.EndDate = rng.To.Format(models.DayLayout)
	}

	var err error
	if out.Attendance, err = s.progress.attendanceRows(ctx, ws, studentID, rng); err != nil {
		return nil, s.fail(ws, "attendance", err)
	}
	if out.Exams, err = s.progress.examRows(ctx, ws, studentID, rng); err != nil {
		return nil, s.fail(ws, "exams", err)
	}
	if out.Fees, err = s.progress.feeRows(ctx, ws, studentID, rng); err != nil {
		return nil, s.fail(ws, "fees", err)
	}
	return out, nil
}

func (s *ParentService) fail(ws *Workspace, section string, err error) error {
	s.logger.Warn("failed to load parent overview", zap.String("section", section), zap.Error(err))
	ws.Notices.Error(PageParent, err)
	return err
}

// Students lists the children a parent may pick from.
func (s *ParentService) Students(ctx context.Context, ws *Workspace) []models.Student {
	ws.Students.Ensure(ctx)
	return ws.Students.Rows()
}

// Teachers lists message recipients.
func (s *ParentService) Teachers(ctx context.Context, ws *Workspace) ([]models.TeacherRef, error) {
	return ws.Directory().Teachers(ctx)
}

// Messages returns the message history, optionally for one teacher.
func (s *ParentService) Messages(ctx context.Context, ws *Workspace, teacherID string) []models.Message {
	ws.Messages.Ensure(ctx)
	rows := ws.Messages.Rows()
	if teacherID == "" {
		return rows
	}
	out := make([]models.Message, 0, len(rows))
	for _, m := range rows {
		if m.Recipient == teacherID || m.Sender == teacherID {
			out = append(out, m)
		}
	}
	return out
}

// Send posts a message to a teacher on behalf of the signed-in user.
func (s *ParentService) Send(ctx context.Context, ws *Workspace, msg models.Message) (*models.Message, error) {
	msg.ID = ""
	msg.Sender = ws.UserID
	msg.Content = strings.TrimSpace(msg.Content)

	ws.Messages.Ensure(ctx)
	result, err := ws.Messages.Save(ctx, ws.Messages.NewForm(msg))
	if err != nil {
		return nil, err
	}
	ws.Notices.Post(PageParent, models.NoticeSuccess, "", "Message sent successfully!")
	return &result.Record, nil
}
