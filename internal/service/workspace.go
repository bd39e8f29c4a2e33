package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-portal/internal/apiclient"
	"github.com/noah-isme/school-portal/internal/controller"
	"github.com/noah-isme/school-portal/internal/form"
	"github.com/noah-isme/school-portal/internal/models"
	"github.com/noah-isme/school-portal/internal/repository"
	"github.com/noah-isme/school-portal/internal/syncer"
)

// Page names, used for notices and logging.
const (
	PageAdmin      = "admin"
	PageStudents   = "students"
	PageTeachers   = "teachers"
	PageCourses    = "courses"
	PageExams      = "exams"
	PageFees       = "fees"
	PageLibrary    = "library"
	PageAttendance = "attendance"
	PageScheduler  = "scheduler"
	PageParent     = "parentportal"
	PageReports    = "reports"
	PageSettings   = "settings"
	PageProfile    = "profile"
)

// Workspace is the per-session set of page controllers. It lives from the
// first protected request of a session until logout.
type Workspace struct {
	SessionID string
	UserID    string
	Token     string
	Notices   *controller.Notices

	Students  *controller.List[models.Student]
	Teachers  *controller.List[models.Teacher]
	Courses   *controller.List[models.Course]
	Exams     *controller.List[models.Exam]
	Fees      *controller.List[models.Fee]
	Books     *controller.List[models.Book]
	Borrows   *controller.List[models.BorrowRecord]
	Users     *controller.List[models.User]
	Messages  *controller.List[models.Message]
	Scheduler *controller.Scheduler

	Reports *syncer.Collection[models.Report]
	Exports *syncer.Collection[models.ExportJob]

	courses    *repository.Resource[models.Course]
	results    *repository.Resource[models.ExamResult]
	attendance *repository.Resource[models.AttendanceRecord]
	settings   *repository.SettingsRepository
	directory  *ReferenceDirectory

	sheetMu sync.Mutex
	sheet   *models.AttendanceSheet
}

// WorkspaceRegistry owns the workspaces of every live session.
type WorkspaceRegistry struct {
	mu        sync.Mutex
	items     map[string]*Workspace
	client    *apiclient.Client
	cache     *CacheService
	validator *form.Validator
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
}

// NewWorkspaceRegistry constructs an empty registry.
func NewWorkspaceRegistry(client *apiclient.Client, cache *CacheService, validator *form.Validator, metrics *MetricsService, logger *zap.Logger) *WorkspaceRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validator == nil {
		validator = form.NewValidator()
	}
	return &WorkspaceRegistry{
		items:     make(map[string]*Workspace),
		client:    client,
		cache:     cache,
		validator: validator,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// Get returns the workspace of s, creating it on first use.
func (r *WorkspaceRegistry) Get(s *models.Session) *Workspace {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ws, ok := r.items[s.ID]; ok {
		return ws
	}
	ws := r.build(s)
	r.items[s.ID] = ws
	r.metrics.WorkspaceOpened()
	return ws
}

// Drop discards the workspace of a session. Unknown ids are ignored.
func (r *WorkspaceRegistry) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[sessionID]; !ok {
		return
	}
	delete(r.items, sessionID)
	r.metrics.WorkspaceClosed()
}

// Len returns the number of live workspaces.
func (r *WorkspaceRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

func (r *WorkspaceRegistry) build(s *models.Session) *Workspace {
	notices := controller.NewNotices()
	logger := r.logger.With(zap.String("session_id", s.ID))
	token := s.Token

	teachers := repository.NewResource[models.Teacher](r.client, repository.TeacherResource, token)
	courses := repository.NewResource[models.Course](r.client, repository.CourseResource, token)

	ws := &Workspace{
		SessionID:  s.ID,
		UserID:     s.User.ID,
		Token:      token,
		Notices:    notices,
		Students:   controller.NewList[models.Student](PageStudents, repository.NewResource[models.Student](r.client, repository.StudentResource, token), r.validator, notices, logger),
		Teachers:   controller.NewList[models.Teacher](PageTeachers, teachers, r.validator, notices, logger),
		Courses:    controller.NewList[models.Course](PageCourses, courses, r.validator, notices, logger),
		Exams:      controller.NewList[models.Exam](PageExams, repository.NewResource[models.Exam](r.client, repository.ExamResource, token), r.validator, notices, logger),
		Fees:       controller.NewList[models.Fee](PageFees, repository.NewResource[models.Fee](r.client, repository.FeeResource, token), r.validator, notices, logger),
		Books:      controller.NewList[models.Book](PageLibrary, repository.NewResource[models.Book](r.client, repository.BookResource, token), r.validator, notices, logger),
		Borrows:    controller.NewList[models.BorrowRecord](PageLibrary, repository.NewResource[models.BorrowRecord](r.client, repository.BorrowResource, token), r.validator, notices, logger),
		Users:      controller.NewList[models.User](PageSettings, repository.NewResource[models.User](r.client, repository.UserResource, token), r.validator, notices, logger),
		Messages:   controller.NewList[models.Message](PageParent, repository.NewResource[models.Message](r.client, repository.MessageResource, token), r.validator, notices, logger),
		Reports:    syncer.NewCollection[models.Report](),
		Exports:    syncer.NewCollection[models.ExportJob](),
		courses:    courses,
		results:    repository.NewResource[models.ExamResult](r.client, repository.ExamResource, token),
		attendance: repository.NewResource[models.AttendanceRecord](r.client, repository.AttendanceResource, token),
		settings:   repository.NewSettingsRepository(r.client, token),
		directory:  &ReferenceDirectory{userID: s.User.ID, teachers: teachers, courses: courses, cache: r.cache},
	}

	ws.Books.WithDeleteGuard(openBorrowGuard(ws))

	events := controller.NewList[models.Event](PageScheduler, repository.NewResource[models.Event](r.client, repository.EventResource, token), r.validator, notices, logger)
	ws.Scheduler = controller.NewScheduler(events, ws.directory, r.now, logger)
	return ws
}

// Directory returns the cached reference data of the workspace's user.
func (ws *Workspace) Directory() *ReferenceDirectory { return ws.directory }

// ReferenceDirectory serves slow-changing reference lists through the
// reference cache, keyed per user so nothing leaks across accounts.
type ReferenceDirectory struct {
	userID   string
	teachers interface {
		List(ctx context.Context) ([]models.Teacher, error)
	}
	courses interface {
		List(ctx context.Context) ([]models.Course, error)
	}
	cache *CacheService
}

func (d *ReferenceDirectory) teachersKey() string    { return "teachers:" + d.userID }
func (d *ReferenceDirectory) departmentsKey() string { return "departments:" + d.userID }

// Teachers returns the teacher directory used by event forms.
func (d *ReferenceDirectory) Teachers(ctx context.Context) ([]models.TeacherRef, error) {
	var refs []models.TeacherRef
	err := d.cache.Remember(ctx, d.teachersKey(), &refs, func(ctx context.Context) error {
		list, err := d.teachers.List(ctx)
		if err != nil {
			return err
		}
		refs = make([]models.TeacherRef, 0, len(list))
		for _, t := range list {
			refs = append(refs, t.Ref())
		}
		return nil
	})
	return refs, err
}

// Departments returns the course titles, which double as departments.
func (d *ReferenceDirectory) Departments(ctx context.Context) ([]string, error) {
	var titles []string
	err := d.cache.Remember(ctx, d.departmentsKey(), &titles, func(ctx context.Context) error {
		list, err := d.courses.List(ctx)
		if err != nil {
			return err
		}
		titles = make([]string, 0, len(list))
		for _, c := range list {
			if c.Title != "" {
				titles = append(titles, c.Title)
			}
		}
		return nil
	})
	return titles, err
}

// InvalidateTeachers drops the cached teacher directory.
func (d *ReferenceDirectory) InvalidateTeachers(ctx context.Context) {
	_ = d.cache.Invalidate(ctx, d.teachersKey())
}

// InvalidateDepartments drops the cached department list.
func (d *ReferenceDirectory) InvalidateDepartments(ctx context.Context) {
	_ = d.cache.Invalidate(ctx, d.departmentsKey())
}
