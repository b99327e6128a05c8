package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"medslot/internal/domain"
)

func TestHospitalRevenueWorkbook(t *testing.T) {
	dashboard := domain.HospitalDashboard{
		HospitalID:         "hospital-1",
		HospitalName:       "Городская больница",
		TotalConsultations: 3,
		TotalRevenue:       "52.50",
		ByDoctor: []domain.RevenueLine{
			{Key: "doctor-1", Name: "Иван Петров", Revenue: "40.00"},
			{Key: "doctor-2", Name: "Анна Смирнова", Revenue: "12.50"},
		},
		ByDepartment: []domain.RevenueLine{
			{Key: "dep-1", Name: "Cardiology", Revenue: "52.50"},
		},
	}

	content, err := HospitalRevenueWorkbook(dashboard, time.Date(2030, time.March, 10, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SummarySheet, DoctorSheet, DepartmentSheet}, f.GetSheetList())

	raw := excelize.Options{RawCellValue: true}
	cell := func(sheet, axis string) string {
		v, err := f.GetCellValue(sheet, axis, raw)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "Городская больница", cell(SummarySheet, "B1"))
	assert.Equal(t, "3", cell(SummarySheet, "B3"))
	assert.Equal(t, "52.5", cell(SummarySheet, "B4"))
	assert.Equal(t, "2030-03-10T12:00:00Z", cell(SummarySheet, "B5"))

	assert.Equal(t, "Doctor revenue", cell(DoctorSheet, "C1"))
	assert.Equal(t, "Hospital revenue", cell(DepartmentSheet, "C1"))
	assert.Equal(t, "doctor-2", cell(DoctorSheet, "A3"))
	assert.Equal(t, "Анна Смирнова", cell(DoctorSheet, "B3"))
	assert.Equal(t, "12.5", cell(DoctorSheet, "C3"))

	assert.Equal(t, "Cardiology", cell(DepartmentSheet, "B2"))
}

func TestHospitalRevenueWorkbook_EmptyBreakdown(t *testing.T) {
	content, err := HospitalRevenueWorkbook(domain.HospitalDashboard{
		HospitalID:   "hospital-1",
		HospitalName: "Пустая больница",
		TotalRevenue: "0.00",
	}, time.Now())
	require.NoError(t, err)
	assert.NotEmpty(t, content)
}

func TestHospitalRevenueWorkbook_BadAmount(t *testing.T) {
	_, err := HospitalRevenueWorkbook(domain.HospitalDashboard{TotalRevenue: "n/a"}, time.Now())
	assert.Error(t, err)
}
