package models

import "time"

// ExportFormat enumerates supported report export formats.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportPDF  ExportFormat = "pdf"
	ExportXLSX ExportFormat = "xlsx"
)

// ExportStatus captures background export lifecycle states.
type ExportStatus string

const (
	ExportQueued     ExportStatus = "QUEUED"
	ExportProcessing ExportStatus = "PROCESSING"
	ExportFinished   ExportStatus = "FINISHED"
	ExportFailed     ExportStatus = "FAILED"
)

// ExportJob tracks the asynchronous rendering of a saved report.
type ExportJob struct {
	ID           string       `json:"id"`
	ReportID     string       `json:"report_id"`
	Format       ExportFormat `json:"format"`
	Status       ExportStatus `json:"status"`
	DownloadURL  string       `json:"download_url,omitempty"`
	ErrorMessage string       `json:"error,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	FinishedAt   *time.Time   `json:"finished_at,omitempty"`
}

func (j ExportJob) EntityID() string { return j.ID }
