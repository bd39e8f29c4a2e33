package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/school-portal/internal/controller"
	"github.com/noah-isme/school-portal/internal/models"
)

// StudentService backs the students page.
type StudentService struct {
	*EntityService[models.Student]
}

// NewStudentService constructs a StudentService. Search matches usernames.
func NewStudentService(logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{&EntityService[models.Student]{
		list:   func(ws *Workspace) *controller.List[models.Student] { return ws.Students },
		match:  func(s models.Student, q string) bool { return containsFold(s.Username, q) },
		logger: logger,
	}}
}

// Departments lists the departments a student can be enrolled in.
func (s *StudentService) Departments(ctx context.Context, ws *Workspace) []string {
	departments, err := ws.Directory().Departments(ctx)
	if err != nil {
		s.logger.Warn("failed to load departments", zap.Error(err))
		ws.Notices.Error(PageStudents, err)
		return []string{}
	}
	return departments
}

// TeacherService backs the teachers page.
type TeacherService struct {
	*EntityService[models.Teacher]
}

// NewTeacherService constructs a TeacherService. Any change invalidates the
// cached teacher directory used by the scheduler.
func NewTeacherService(logger *zap.Logger) *TeacherService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{&EntityService[models.Teacher]{
		list:  func(ws *Workspace) *controller.List[models.Teacher] { return ws.Teachers },
		match: func(t models.Teacher, q string) bool { return containsFold(t.Username, q) },
		onChange: func(ctx context.Context, ws *Workspace) {
			ws.Directory().InvalidateTeachers(ctx)
		},
		logger: logger,
	}}
}

// AdminSummary holds the headline counts of the admin dashboard.
type AdminSummary struct {
	Students int `json:"students"`
	Teachers int `json:"teachers"`
}

// AdminService backs the admin dashboard.
type AdminService struct {
	logger *zap.Logger
}

// NewAdminService constructs an AdminService.
func NewAdminService(logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{logger: logger}
}

// Summary counts students and teachers. A failed fetch counts as zero and
// leaves a notice on the page.
func (s *AdminService) Summary(ctx context.Context, ws *Workspace) AdminSummary {
	ws.Students.Ensure(ctx)
	ws.Teachers.Ensure(ctx)
	return AdminSummary{Students: ws.Students.Len(), Teachers: ws.Teachers.Len()}
}
