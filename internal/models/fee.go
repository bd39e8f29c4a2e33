package models

// FeeStatus enumerates the payment states of a fee.
type FeeStatus string

const (
	FeeStatusPending FeeStatus = "Pending"
	FeeStatusPaid    FeeStatus = "Paid"
)

// Fee is a charge raised against a student.
type Fee struct {
	ID          string    `json:"_id,omitempty"`
	StudentID   string    `json:"student_id" validate:"required" label:"Student"`
	Amount      float64   `json:"amount" validate:"positive" label:"Amount"`
	DueDate     string    `json:"due_date" validate:"required,day" label:"Due date"`
	Status      FeeStatus `json:"status" validate:"omitempty,oneof=Paid Pending" label:"Status"`
	PaymentDate string    `json:"payment_date,omitempty"`
}

func (f Fee) EntityID() string { return f.ID }

func (f Fee) WithID(id string) Fee {
	f.ID = id
	return f
}

func (f Fee) Normalize() Fee {
	f.DueDate = dayOrNA(f.DueDate)
	if f.PaymentDate != "" {
		f.PaymentDate = dayOrNA(f.PaymentDate)
	}
	if f.Status == "" {
		f.Status = FeeStatusPending
	}
	fillNA(&f.StudentID)
	return f
}

func (f Fee) Draft() Fee {
	clearNA(&f.DueDate, &f.PaymentDate, &f.StudentID)
	if f.Status == "" {
		f.Status = FeeStatusPending
	}
	return f
}

// Paid reports whether the fee has been settled.
func (f Fee) Paid() bool { return f.Status == FeeStatusPaid }
