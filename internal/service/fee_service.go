package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-portal/internal/controller"
	"github.com/noah-isme/school-portal/internal/form"
	"github.com/noah-isme/school-portal/internal/models"
	appErrors "github.com/noah-isme/school-portal/pkg/errors"
	"github.com/noah-isme/school-portal/pkg/export"
)

// FeeStatusAll disables the fee status filter.
const FeeStatusAll = "All"

// FeeService backs the fees page.
type FeeService struct {
	*EntityService[models.Fee]
	now func() time.Time
}

// NewFeeService constructs a FeeService.
func NewFeeService(logger *zap.Logger) *FeeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeeService{
		EntityService: &EntityService[models.Fee]{
			list:  func(ws *Workspace) *controller.List[models.Fee] { return ws.Fees },
			match: func(f models.Fee, q string) bool { return containsFold(f.StudentID, q) },
			onCreate: func(draft models.Fee) models.Fee {
				draft.Status = models.FeeStatusPending
				draft.PaymentDate = ""
				return draft
			},
			onUpdate: func(stored, draft models.Fee) models.Fee {
				draft.Status = stored.Status
				draft.PaymentDate = stored.PaymentDate
				return draft
			},
			logger: logger,
		},
		now: time.Now,
	}
}

// Filter returns the fees in the given status; All or empty returns every fee.
func (s *FeeService) Filter(ctx context.Context, ws *Workspace, status string) ([]models.Fee, error) {
	rows := s.Rows(ctx, ws, "")
	switch status {
	case "", FeeStatusAll:
		return rows, nil
	case string(models.FeeStatusPaid), string(models.FeeStatusPending):
	default:
		return nil, appErrors.Validation("Status must be one of All, Paid, Pending", map[string]string{"status": "invalid"})
	}
	out := make([]models.Fee, 0, len(rows))
	for _, f := range rows {
		if string(f.Status) == status {
			out = append(out, f)
		}
	}
	return out, nil
}

// MarkPaid moves a pending fee to Paid with today's payment date. A fee
// that is already paid is left untouched.
func (s *FeeService) MarkPaid(ctx context.Context, ws *Workspace, id string) (form.Result[models.Fee], error) {
	var zero form.Result[models.Fee]
	ws.Fees.Ensure(ctx)
	fee, revision, ok := ws.Fees.Get(id)
	if !ok {
		return zero, appErrors.Clone(appErrors.ErrNotFound, "fee not found")
	}
	if fee.Paid() {
		return zero, appErrors.Clone(appErrors.ErrConflict, "Fee is already paid")
	}
	draft := fee.Draft()
	draft.Status = models.FeeStatusPaid
	draft.PaymentDate = models.Today(s.now())
	return s.transition(ctx, ws, id, revision, draft)
}

// Receipt renders the PDF receipt of a fee.
func (s *FeeService) Receipt(ctx context.Context, ws *Workspace, id string) ([]byte, error) {
	ws.Fees.Ensure(ctx)
	fee, _, ok := ws.Fees.Get(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "fee not found")
	}
	receipt := export.Receipt{
		FeeID:       fee.ID,
		StudentID:   fee.StudentID,
		Amount:      fee.Amount,
		DueDate:     fee.DueDate,
		Status:      string(fee.Status),
		PaymentDate: fee.PaymentDate,
	}
	if student, _, ok := ws.Students.Get(fee.StudentID); ok {
		receipt.StudentName = student.FullName()
	}
	if settings, err := ws.settings.Get(ctx); err == nil {
		receipt.SchoolName = settings.SchoolName
	}
	out, err := export.RenderReceipt(receipt)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render receipt")
	}
	return out, nil
}
