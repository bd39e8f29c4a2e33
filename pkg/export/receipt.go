package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"
)

// Receipt is the content of a fee payment receipt.
type Receipt struct {
	SchoolName  string
	FeeID       string
	StudentID   string
	StudentName string
	Amount      float64
	DueDate     string
	Status      string
	PaymentDate string
}

// RenderReceipt produces a one-page PDF receipt carrying a QR code of the
// fee id, so a printed copy can be traced back to the record.
func RenderReceipt(r Receipt) ([]byte, error) {
	if r.FeeID == "" {
		return nil, fmt.Errorf("receipt requires a fee id")
	}
	png, err := qrcode.Encode(r.FeeID, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("encode receipt qr: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(12, 15, 12)
	pdf.AddPage()

	title := "Fee Receipt"
	if r.SchoolName != "" {
		title = r.SchoolName + " - " + title
	}
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	lines := [][2]string{
		{"Receipt", r.FeeID},
		{"Student", studentLabel(r)},
		{"Amount", fmt.Sprintf("%.2f", r.Amount)},
		{"Due date", r.DueDate},
		{"Status", r.Status},
		{"Paid on", r.PaymentDate},
	}
	for _, line := range lines {
		if line[1] == "" {
			continue
		}
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(35, 8, line[0], "", 0, "", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 8, line[1], "", 1, "", false, 0, "")
	}

	name := "qr-" + r.FeeID
	opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
	pdf.ImageOptions(name, 54, pdf.GetY()+8, 40, 40, false, opts, 0, "")

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return buf.Bytes(), nil
}

func studentLabel(r Receipt) string {
	if r.StudentName == "" {
		return r.StudentID
	}
	return r.StudentName + " (" + r.StudentID + ")"
}
