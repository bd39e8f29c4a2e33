package service

import (
	"context"
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/school-portal/internal/form"
	"github.com/noah-isme/school-portal/internal/models"
	"github.com/noah-isme/school-portal/internal/syncer"
	appErrors "github.com/noah-isme/school-portal/pkg/errors"
	"github.com/noah-isme/school-portal/pkg/export"
	"github.com/noah-isme/school-portal/pkg/jobs"
	"github.com/noah-isme/school-portal/pkg/storage"
)

const exportJobType = "report_export"

// ExportDownloadPath is where signed export downloads are served.
const ExportDownloadPath = "/dashboard/reports/exports/download"

// ReportStorage persists rendered exports.
type ReportStorage interface {
	Save(name string, data []byte) (string, error)
	Open(name string) (*os.File, error)
}

// ReportConfig tunes the export worker pool.
type ReportConfig struct {
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
	JobTimeout time.Duration
}

// ReportService generates reports into the workspace and exports them in
// the background.
type ReportService struct {
	progress  *progressSource
	validator *form.Validator
	storage   ReportStorage
	signer    *storage.DownloadSigner
	queue     *jobs.Queue
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
}

type exportPayload struct {
	ws     *Workspace
	report models.Report
}

// NewReportService constructs a ReportService. Start must be called before
// exports are accepted.
func NewReportService(attendance *AttendanceService, validator *form.Validator, store ReportStorage, signer *storage.DownloadSigner, metrics *MetricsService, logger *zap.Logger, cfg ReportConfig) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validator == nil {
		validator = form.NewValidator()
	}
	s := &ReportService{
		progress:  &progressSource{attendance: attendance, logger: logger},
		validator: validator,
		storage:   store,
		signer:    signer,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
	s.queue = jobs.NewQueue(exportJobType, s.handleExport, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		JobTimeout: cfg.JobTimeout,
		OnGiveUp:   s.exportFailed,
		Logger:     logger,
	})
	return s
}

// Start launches the export workers.
func (s *ReportService) Start(ctx context.Context) { s.queue.Start(ctx) }

// Stop waits for the export workers to exit.
func (s *ReportService) Stop() { s.queue.Stop() }

// Generate builds a report of the requested type from the backend data,
// keeping only rows dated within the inclusive range, and saves it in the
// workspace.
func (s *ReportService) Generate(ctx context.Context, ws *Workspace, req models.ReportRequest) (*models.Report, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	rng, err := ParseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	report := models.Report{
		ID:          uuid.NewString(),
		Type:        req.Type,
		StartDate:   rng.From.Format(models.DayLayout),
		EndDate:     rng.To.Format(models.DayLayout),
		StudentID:   req.StudentID,
		GeneratedAt: s.now().UTC(),
	}
	switch req.Type {
	case models.ReportAttendance:
		report.Attendance, err = s.progress.attendanceRows(ctx, ws, req.StudentID, rng)
	case models.ReportExam:
		report.Exam, err = s.progress.examRows(ctx, ws, req.StudentID, rng)
	case models.ReportFees:
		report.Fees, err = s.progress.feeRows(ctx, ws, req.StudentID, rng)
	}
	if err != nil {
		s.logger.Warn("failed to generate report", zap.String("type", string(req.Type)), zap.Error(err))
		ws.Notices.Error(PageReports, err)
		return nil, err
	}

	if err := ws.Reports.Apply(syncer.Created(report)); err != nil {
		return nil, err
	}
	ws.Notices.Post(PageReports, models.NoticeSuccess, "", "Report generated successfully!")
	return &report, nil
}

// List returns the reports saved in the workspace.
func (s *ReportService) List(ws *Workspace) []models.Report {
	return ws.Reports.Items()
}

// Get returns one saved report.
func (s *ReportService) Get(ws *Workspace, id string) (*models.Report, error) {
	report, _, ok := ws.Reports.Get(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
	}
	return &report, nil
}

// Delete removes a saved report.
func (s *ReportService) Delete(ws *Workspace, id string) error {
	return ws.Reports.Apply(syncer.Deleted[models.Report](id))
}

// Export queues the rendering of a saved report.
func (s *ReportService) Export(ctx context.Context, ws *Workspace, reportID string, format models.ExportFormat) (*models.ExportJob, error) {
	if _, err := export.ForFormat(string(format)); err != nil {
		return nil, appErrors.Validation("Format must be one of csv, pdf, xlsx", map[string]string{"format": "invalid"})
	}
	report, err := s.Get(ws, reportID)
	if err != nil {
		return nil, err
	}

	job := models.ExportJob{
		ID:        uuid.NewString(),
		ReportID:  reportID,
		Format:    format,
		Status:    models.ExportQueued,
		CreatedAt: s.now().UTC(),
	}
	if err := ws.Exports.Apply(syncer.Created(job)); err != nil {
		return nil, err
	}
	err = s.queue.Enqueue(jobs.Job{
		ID:      job.ID,
		Type:    exportJobType,
		Payload: exportPayload{ws: ws, report: *report},
	})
	if err != nil {
		_ = ws.Exports.Apply(syncer.Deleted[models.ExportJob](job.ID))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue export")
	}
	return &job, nil
}

// Jobs lists the export jobs of the workspace.
func (s *ReportService) Jobs(ws *Workspace) []models.ExportJob {
	return ws.Exports.Items()
}

// Job returns one export job.
func (s *ReportService) Job(ws *Workspace, id string) (*models.ExportJob, error) {
	job, _, ok := ws.Exports.Get(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	return &job, nil
}

// Download resolves a signed token to the stored export.
func (s *ReportService) Download(token string) (*os.File, string, string, error) {
	claims, err := s.signer.Parse(token)
	if err != nil {
		return nil, "", "", appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid or expired download link")
	}
	ext := strings.TrimPrefix(path.Ext(claims.Path), ".")
	if ext == "" {
		return nil, "", "", appErrors.Clone(appErrors.ErrNotFound, "export not found")
	}
	renderer, err := export.ForFormat(ext)
	if err != nil {
		return nil, "", "", appErrors.Clone(appErrors.ErrNotFound, "export not found")
	}
	file, err := s.storage.Open(claims.Path)
	if err != nil {
		return nil, "", "", appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "export not found")
	}
	return file, path.Base(claims.Path), renderer.ContentType(), nil
}

func (s *ReportService) handleExport(ctx context.Context, j jobs.Job) error {
	payload, ok := j.Payload.(exportPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", j.Payload)
	}
	ws := payload.ws
	job, _, ok := ws.Exports.Get(j.ID)
	if !ok {
		return nil
	}
	job.Status = models.ExportProcessing
	_ = ws.Exports.Apply(syncer.Updated(job))

	renderer, err := export.ForFormat(string(job.Format))
	if err != nil {
		return err
	}
	data, err := renderer.Render(reportDataset(payload.report))
	if err != nil {
		return err
	}
	name := fmt.Sprintf("reports/%s/%s.%s", payload.report.Type, job.ID, renderer.Extension())
	stored, err := s.storage.Save(name, data)
	if err != nil {
		return err
	}
	token, _, err := s.signer.Generate(job.ID, stored)
	if err != nil {
		return err
	}

	finished := s.now().UTC()
	job.Status = models.ExportFinished
	job.DownloadURL = ExportDownloadPath + "?token=" + token
	job.FinishedAt = &finished
	if err := ws.Exports.Apply(syncer.Updated(job)); err != nil {
		return nil
	}
	s.metrics.ObserveExportJob(string(job.Format), job.Status)
	s.logger.Info("report exported", zap.String("job_id", job.ID), zap.String("path", stored))
	return nil
}

func (s *ReportService) exportFailed(j jobs.Job, err error) {
	payload, ok := j.Payload.(exportPayload)
	if !ok {
		return
	}
	job, _, ok := payload.ws.Exports.Get(j.ID)
	if !ok {
		return
	}
	finished := s.now().UTC()
	job.Status = models.ExportFailed
	job.ErrorMessage = err.Error()
	job.FinishedAt = &finished
	_ = payload.ws.Exports.Apply(syncer.Updated(job))
	s.metrics.ObserveExportJob(string(job.Format), job.Status)
	payload.ws.Notices.Post(PageReports, models.NoticeError, appErrors.ErrInternal.Code, "Failed to export report.")
}

func reportDataset(r models.Report) export.Dataset {
	data := export.Dataset{Title: fmt.Sprintf("%s report %s to %s", r.Type, r.StartDate, r.EndDate)}
	switch r.Type {
	case models.ReportAttendance:
		data.Headers = []string{"Date", "Student ID", "Student", "Status"}
		for _, row := range r.Attendance {
			data.Rows = append(data.Rows, []string{row.Date, row.StudentID, row.StudentName, string(row.Status)})
		}
	case models.ReportExam:
		data.Headers = []string{"Date", "Exam", "Student ID", "Student", "Marks", "Grade"}
		for _, row := range r.Exam {
			data.Rows = append(data.Rows, []string{row.Date, row.ExamName, row.StudentID, row.StudentName,
				strconv.FormatFloat(row.Marks, 'f', -1, 64), row.Grade})
		}
	case models.ReportFees:
		data.Headers = []string{"Student ID", "Student", "Amount", "Due date", "Status"}
		for _, row := range r.Fees {
			data.Rows = append(data.Rows, []string{row.StudentID, row.StudentName,
				strconv.FormatFloat(row.Amount, 'f', 2, 64), row.DueDate, string(row.Status)})
		}
	}
	return data
}
