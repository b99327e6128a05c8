package receipt

import (
	"bytes"
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"
)

const qrImageName = "appointment-qr"

type Data struct {
	AppointmentID   string
	PatientID       string
	DoctorName      string
	HospitalName    string
	ScheduledAt     time.Time
	Status          string
	FeePaid         decimal.Decimal
	DoctorRevenue   decimal.Decimal
	HospitalRevenue decimal.Decimal
}

// QRPayload is what the receipt's QR code encodes.
func QRPayload(d Data) string {
	return fmt.Sprintf("appointment:%s|slot-start:%s", d.AppointmentID, d.ScheduledAt.UTC().Format(time.RFC3339))
}

// Render builds a one-page A4 appointment receipt with a QR code of the appointment id.
func Render(d Data) ([]byte, error) {
	if d.AppointmentID == "" {
		return nil, fmt.Errorf("пустой идентификатор записи")
	}

	qrPNG, err := qrcode.Encode(QRPayload(d), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("ошибка генерации QR-кода: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Appointment receipt "+d.AppointmentID, true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 12, "Appointment receipt")
	pdf.Ln(16)

	rows := [][2]string{
		{"Appointment", d.AppointmentID},
		{"Patient", d.PatientID},
		{"Doctor", d.DoctorName},
		{"Hospital", d.HospitalName},
		{"Scheduled at", d.ScheduledAt.Format("2006-01-02 15:04 MST")},
		{"Status", d.Status},
		{"Consultation fee", d.FeePaid.StringFixed(2)},
		{"Doctor share", d.DoctorRevenue.StringFixed(2)},
		{"Hospital share", d.HospitalRevenue.StringFixed(2)},
	}

	for _, row := range rows {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(45, 8, row[0]+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(0, 8, tr(row[1]), "", 1, "L", false, 0, "")
	}

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(qrImageName, imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions(qrImageName, 150, 20, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("ошибка формирования PDF: %w", err)
	}

	return buf.Bytes(), nil
}
