package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-portal/internal/models"
	appErrors "github.com/noah-isme/school-portal/pkg/errors"
)

// AuditStore persists the activity trail.
type AuditStore interface {
	Create(ctx context.Context, log *models.AuditLog) error
	List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, error)
}

// RequestMeta identifies the HTTP request behind an audited action.
type RequestMeta struct {
	RequestID string
	IPAddress string
	UserAgent string
}

// AuditService records portal actions. A nil store disables the trail.
type AuditService struct {
	store   AuditStore
	metrics *MetricsService
	logger  *zap.Logger
}

// NewAuditService constructs an AuditService.
func NewAuditService(store AuditStore, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{store: store, logger: logger}
}

// WithMetrics times audit queries against the given collector.
func (s *AuditService) WithMetrics(metrics *MetricsService) *AuditService {
	s.metrics = metrics
	return s
}

// Enabled reports whether entries are persisted.
func (s *AuditService) Enabled() bool {
	return s != nil && s.store != nil
}

// Record stores an entry. Failures are logged and never surface to the user.
func (s *AuditService) Record(ctx context.Context, entry models.AuditLog, meta RequestMeta) {
	if !s.Enabled() {
		return
	}
	entry.RequestID = meta.RequestID
	entry.IPAddress = meta.IPAddress
	entry.UserAgent = meta.UserAgent
	start := time.Now()
	err := s.store.Create(ctx, &entry)
	s.metrics.ObserveDBQuery("audit_insert", time.Since(start))
	if err != nil {
		s.logger.Warn("failed to record audit log",
			zap.String("action", entry.Action),
			zap.String("resource", entry.Resource),
			zap.Error(err),
		)
	}
}

// List returns the most recent entries. The list is empty when the trail is
// disabled.
func (s *AuditService) List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, error) {
	if !s.Enabled() {
		return []models.AuditLog{}, nil
	}
	start := time.Now()
	logs, err := s.store.List(ctx, filter)
	s.metrics.ObserveDBQuery("audit_list", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity logs")
	}
	if logs == nil {
		logs = []models.AuditLog{}
	}
	return logs, nil
}

func strPtr(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
