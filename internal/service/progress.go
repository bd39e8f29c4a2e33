package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-portal/internal/models"
	appErrors "github.com/noah-isme/school-portal/pkg/errors"
)

// DateRange is an inclusive range of calendar days.
type DateRange struct {
	From time.Time
	To   time.Time
}

// ParseDateRange validates a pair of calendar days, start on or before end.
func ParseDateRange(start, end string) (DateRange, error) {
	from, okFrom := models.ParseDay(start)
	to, okTo := models.ParseDay(end)
	details := map[string]string{}
	if !okFrom {
		details["start_date"] = "Start date must be a valid date"
	}
	if !okTo {
		details["end_date"] = "End date must be a valid date"
	}
	if len(details) > 0 {
		msg := details["start_date"]
		if msg == "" {
			msg = details["end_date"]
		}
		return DateRange{}, appErrors.Validation(msg, details)
	}
	if from.After(to) {
		return DateRange{}, appErrors.Validation("Start date must be on or before End date",
			map[string]string{"start_date": "Start date must be on or before End date"})
	}
	return DateRange{From: from, To: to}, nil
}

// Contains reports whether the day of raw falls inside the range, bounds
// included. Unparseable dates are outside every range.
func (r DateRange) Contains(raw string) bool {
	day, ok := models.ParseDay(raw)
	if !ok {
		return false
	}
	return !day.Before(r.From) && !day.After(r.To)
}

// progressSource gathers per-student rows from the backend collections.
type progressSource struct {
	attendance *AttendanceService
	logger     *zap.Logger
}

func (p *progressSource) studentNames(ctx context.Context, ws *Workspace) map[string]string {
	ws.Students.Ensure(ctx)
	names := make(map[string]string)
	for _, s := range ws.Students.Rows() {
		names[s.ID] = s.FullName()
	}
	return names
}

func (p *progressSource) attendanceRows(ctx context.Context, ws *Workspace, studentID string, rng DateRange) ([]models.AttendanceReportRow, error) {
	records, err := p.attendance.Records(ctx, ws, studentID)
	if err != nil {
		return nil, err
	}
	names := p.studentNames(ctx, ws)
	rows := make([]models.AttendanceReportRow, 0, len(records))
	for _, r := range records {
		if !rng.Contains(r.Date) {
			continue
		}
		rows = append(rows, models.AttendanceReportRow{
			Date:        r.Date,
			StudentID:   r.StudentID,
			StudentName: names[r.StudentID],
			Status:      r.Status,
		})
	}
	return rows, nil
}

func (p *progressSource) examRows(ctx context.Context, ws *Workspace, studentID string, rng DateRange) ([]models.ExamReportRow, error) {
	ws.Exams.Ensure(ctx)
	rows := make([]models.ExamReportRow, 0)
	for _, exam := range ws.Exams.Rows() {
		results, err := ws.results.ListAt(ctx, repositoryPath("/exam", exam.ID)+"/results", nil, "results")
		if err != nil {
			return nil, err
		}
		for _, r := range results {
			if studentID != "" && r.StudentID != studentID {
				continue
			}
			date := r.Date
			if date == "" {
				date = exam.Date
			}
			if !rng.Contains(date) {
				continue
			}
			name := r.ExamName
			if name == "" {
				name = exam.ExamName
			}
			rows = append(rows, models.ExamReportRow{
				Date:        models.Today(mustDay(date)),
				ExamName:    name,
				StudentID:   r.StudentID,
				StudentName: r.StudentName,
				Marks:       r.Marks,
				Grade:       r.Grade,
			})
		}
	}
	return rows, nil
}

func (p *progressSource) feeRows(ctx context.Context, ws *Workspace, studentID string, rng DateRange) ([]models.FeeReportRow, error) {
	ws.Fees.Ensure(ctx)
	names := p.studentNames(ctx, ws)
	rows := make([]models.FeeReportRow, 0)
	for _, f := range ws.Fees.Rows() {
		if studentID != "" && f.StudentID != studentID {
			continue
		}
		if !rng.Contains(f.DueDate) {
			continue
		}
		rows = append(rows, models.FeeReportRow{
			StudentID:   f.StudentID,
			StudentName: names[f.StudentID],
			Amount:      f.Amount,
			DueDate:     f.DueDate,
			Status:      f.Status,
		})
	}
	return rows, nil
}

func mustDay(raw string) time.Time {
	day, _ := models.ParseDay(raw)
	return day
}
