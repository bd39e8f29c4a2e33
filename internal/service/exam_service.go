package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/school-portal/internal/controller"
	"github.com/noah-isme/school-portal/internal/models"
	appErrors "github.com/noah-isme/school-portal/pkg/errors"
)

// ExamService backs the exams page.
type ExamService struct {
	*EntityService[models.Exam]
}

// NewExamService constructs an ExamService.
func NewExamService(logger *zap.Logger) *ExamService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExamService{&EntityService[models.Exam]{
		list:   func(ws *Workspace) *controller.List[models.Exam] { return ws.Exams },
		match:  func(e models.Exam, q string) bool { return containsFold(e.ExamName, q) },
		logger: logger,
	}}
}

// NewDraft returns the blank exam form.
func (s *ExamService) NewDraft() models.Exam {
	return models.NewExamDraft()
}

// Results lists the results of one exam. A failed fetch yields an empty
// list and a notice.
func (s *ExamService) Results(ctx context.Context, ws *Workspace, examID string) ([]models.ExamResult, error) {
	ws.Exams.Ensure(ctx)
	exam, _, ok := ws.Exams.Get(examID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
	}
	results, err := ws.results.ListAt(ctx, repositoryPath("/exam", examID)+"/results", nil, "results")
	if err != nil {
		s.logger.Warn("failed to load exam results", zap.String("exam_id", examID), zap.Error(err))
		ws.Notices.Error(PageExams, err)
		return []models.ExamResult{}, nil
	}
	out := make([]models.ExamResult, 0, len(results))
	for _, r := range results {
		if r.ExamID == "" {
			r.ExamID = examID
		}
		if r.ExamName == "" {
			r.ExamName = exam.ExamName
		}
		if r.Date == "" {
			r.Date = exam.Date
		}
		out = append(out, r.Normalize())
	}
	return out, nil
}
