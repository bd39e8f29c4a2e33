package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/school-portal/internal/controller"
	"github.com/noah-isme/school-portal/internal/form"
	"github.com/noah-isme/school-portal/internal/models"
	"github.com/noah-isme/school-portal/internal/syncer"
	appErrors "github.com/noah-isme/school-portal/pkg/errors"
)

// CourseService backs the courses page and its nested curriculum routes.
type CourseService struct {
	*EntityService[models.Course]
	validator *form.Validator
}

// NewCourseService constructs a CourseService. Course titles double as
// departments, so every change invalidates the cached department list.
func NewCourseService(validator *form.Validator, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validator == nil {
		validator = form.NewValidator()
	}
	return &CourseService{
		EntityService: &EntityService[models.Course]{
			list: func(ws *Workspace) *controller.List[models.Course] { return ws.Courses },
			onChange: func(ctx context.Context, ws *Workspace) {
				ws.Directory().InvalidateDepartments(ctx)
			},
			logger: logger,
		},
		validator: validator,
	}
}

// AddSemester appends an empty semester to a course.
func (s *CourseService) AddSemester(ctx context.Context, ws *Workspace, courseID string, number int) (*models.Course, error) {
	semester := models.Semester{Number: number, Subjects: []models.Subject{}}
	if err := s.validator.Struct(semester); err != nil {
		return nil, err
	}
	course, err := s.course(ctx, ws, courseID)
	if err != nil {
		return nil, err
	}
	if course.HasSemester(number) {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("Semester %d already exists", number))
	}
	return s.mutate(ctx, ws, courseID, func(ctx context.Context) (models.Course, bool, error) {
		return ws.courses.Post(ctx, semestersPath(courseID), semester, "updatedCourse")
	})
}

// DeleteSemester removes a semester and its subjects.
func (s *CourseService) DeleteSemester(ctx context.Context, ws *Workspace, courseID string, number int) (*models.Course, error) {
	if _, err := s.semester(ctx, ws, courseID, number); err != nil {
		return nil, err
	}
	return s.mutate(ctx, ws, courseID, func(ctx context.Context) (models.Course, bool, error) {
		return ws.courses.Remove(ctx, semestersPath(courseID)+"/"+strconv.Itoa(number), "updatedCourse")
	})
}

// AddSubject appends a subject to a semester.
func (s *CourseService) AddSubject(ctx context.Context, ws *Workspace, courseID string, number int, subject models.Subject) (*models.Course, error) {
	if err := s.validator.Struct(subject); err != nil {
		return nil, err
	}
	if _, err := s.semester(ctx, ws, courseID, number); err != nil {
		return nil, err
	}
	return s.mutate(ctx, ws, courseID, func(ctx context.Context) (models.Course, bool, error) {
		return ws.courses.Post(ctx, subjectsPath(courseID, number), subject, "updatedCourse")
	})
}

// DeleteSubject removes the subject at index from a semester.
func (s *CourseService) DeleteSubject(ctx context.Context, ws *Workspace, courseID string, number, index int) (*models.Course, error) {
	semester, err := s.semester(ctx, ws, courseID, number)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(semester.Subjects) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
	}
	return s.mutate(ctx, ws, courseID, func(ctx context.Context) (models.Course, bool, error) {
		return ws.courses.Remove(ctx, subjectsPath(courseID, number)+"/"+strconv.Itoa(index), "updatedCourse")
	})
}

func (s *CourseService) course(ctx context.Context, ws *Workspace, id string) (models.Course, error) {
	ws.Courses.Ensure(ctx)
	course, _, ok := ws.Courses.Get(id)
	if !ok {
		return models.Course{}, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}
	return course, nil
}

func (s *CourseService) semester(ctx context.Context, ws *Workspace, courseID string, number int) (models.Semester, error) {
	course, err := s.course(ctx, ws, courseID)
	if err != nil {
		return models.Semester{}, err
	}
	for _, sem := range course.Semesters {
		if sem.Number == number {
			return sem, nil
		}
	}
	return models.Semester{}, appErrors.Clone(appErrors.ErrNotFound, "semester not found")
}

// mutate runs a nested-route call and applies the echoed course as an
// update. Without an echo the course list is refetched.
func (s *CourseService) mutate(ctx context.Context, ws *Workspace, courseID string, call func(ctx context.Context) (models.Course, bool, error)) (*models.Course, error) {
	updated, echoed, err := call(ctx)
	if err != nil {
		s.logger.Warn("failed to update course", zap.String("course_id", courseID), zap.Error(err))
		ws.Notices.Error(PageCourses, err)
		return nil, err
	}
	if !echoed || updated.ID == "" {
		_ = ws.Courses.Mount(ctx)
	} else if err := ws.Courses.Apply(ctx, syncer.Update, updated); err != nil {
		return nil, err
	}
	current, _, ok := ws.Courses.Get(courseID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}
	return &current, nil
}

func semestersPath(courseID string) string {
	return repositoryPath("/course", courseID) + "/semesters"
}

func subjectsPath(courseID string, number int) string {
	return semestersPath(courseID) + "/" + strconv.Itoa(number) + "/subjects"
}

func repositoryPath(base, id string) string {
	return base + "/" + url.PathEscape(id)
}
