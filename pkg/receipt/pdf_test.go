package receipt

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleData() Data {
	return Data{
		AppointmentID:   "appointment-1",
		PatientID:       "patient-1",
		DoctorName:      "Dr. José Martín",
		HospitalName:    "Городская больница",
		ScheduledAt:     time.Date(2030, time.March, 10, 9, 0, 0, 0, time.UTC),
		Status:          "booked",
		FeePaid:         decimal.NewFromInt(50),
		DoctorRevenue:   decimal.NewFromInt(30),
		HospitalRevenue: decimal.NewFromInt(20),
	}
}

func TestRender(t *testing.T) {
	content, err := Render(sampleData())
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(content, []byte("%PDF-")))
	assert.Contains(t, string(content), "/Subtype /Image")
}

func TestRender_RequiresAppointment(t *testing.T) {
	d := sampleData()
	d.AppointmentID = ""

	_, err := Render(d)
	assert.Error(t, err)
}

func TestQRPayload(t *testing.T) {
	d := sampleData()
	d.ScheduledAt = time.Date(2030, time.March, 10, 12, 0, 0, 0, time.FixedZone("MSK", 3*60*60))

	assert.Equal(t, "appointment:appointment-1|slot-start:2030-03-10T09:00:00Z", QRPayload(d))
}
