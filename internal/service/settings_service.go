package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/school-portal/internal/controller"
	"github.com/noah-isme/school-portal/internal/form"
	"github.com/noah-isme/school-portal/internal/models"
)

// SettingsService backs the settings page: user accounts, the school-wide
// settings document and the activity log.
type SettingsService struct {
	*EntityService[models.User]
	validator *form.Validator
	audit     *AuditService
}

// NewSettingsService constructs a SettingsService.
func NewSettingsService(audit *AuditService, validator *form.Validator, logger *zap.Logger) *SettingsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validator == nil {
		validator = form.NewValidator()
	}
	return &SettingsService{
		EntityService: &EntityService[models.User]{
			list: func(ws *Workspace) *controller.List[models.User] { return ws.Users },
			match: func(u models.User, q string) bool {
				return containsFold(u.Name, q) || containsFold(u.Email, q)
			},
			logger: logger,
		},
		validator: validator,
		audit:     audit,
	}
}

// Settings fetches the settings document.
func (s *SettingsService) Settings(ctx context.Context, ws *Workspace) (*models.SchoolSettings, error) {
	settings, err := ws.settings.Get(ctx)
	if err != nil {
		s.logger.Warn("failed to load settings", zap.Error(err))
		ws.Notices.Error(PageSettings, err)
		return nil, err
	}
	return settings, nil
}

// SaveSettings validates and stores the settings document.
func (s *SettingsService) SaveSettings(ctx context.Context, ws *Workspace, settings models.SchoolSettings) (*models.SchoolSettings, error) {
	settings = settings.Normalize()
	if err := s.validator.Struct(settings); err != nil {
		return nil, err
	}
	stored, err := ws.settings.Save(ctx, settings)
	if err != nil {
		s.logger.Warn("failed to save settings", zap.Error(err))
		ws.Notices.Error(PageSettings, err)
		return nil, err
	}
	ws.Notices.Post(PageSettings, models.NoticeSuccess, "", "Settings saved successfully!")
	return stored, nil
}

// ActivityLogs returns the recent audit trail.
func (s *SettingsService) ActivityLogs(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, error) {
	return s.audit.List(ctx, filter)
}
