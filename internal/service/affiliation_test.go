package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medslot/internal/domain"
)

func TestNewAffiliation(t *testing.T) {
	specializations := []string{"Cardiology", "Therapy"}

	tests := []struct {
		name       string
		fee        string
		department string
		wantField  string
	}{
		{name: "valid", fee: "50", department: "Cardiology"},
		{name: "zero fee", fee: "0", department: "Cardiology", wantField: "consultation_fee"},
		{name: "negative fee", fee: "-10", department: "Cardiology", wantField: "consultation_fee"},
		{name: "fraction of a cent", fee: "75.555", department: "Cardiology", wantField: "consultation_fee"},
		{name: "smallest fraction of a cent", fee: "0.001", department: "Cardiology", wantField: "consultation_fee"},
		{name: "trailing zeros", fee: "50.000", department: "Cardiology"},
		{name: "department outside specializations", fee: "50", department: "Neurology", wantField: "department_id"},
		{name: "case differs", fee: "50", department: "cardiology", wantField: "department_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewAffiliation("doctor-1", "hospital-1", "department-1",
				decimal.RequireFromString(tt.fee), specializations, tt.department)

			if tt.wantField == "" {
				require.NoError(t, err)
				assert.Equal(t, "doctor-1", a.DoctorID)
				assert.Equal(t, "department-1", a.DepartmentID)
				assert.True(t, a.ConsultationFee.Equal(decimal.NewFromInt(50)))
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrValidation)
			var validationErr *domain.ValidationError
			require.True(t, errors.As(err, &validationErr))
			assert.Equal(t, tt.wantField, validationErr.Field)
		})
	}
}

func TestAffiliationService_Create(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	h := f.hospital(t, "Больница А")
	other := f.hospital(t, "Больница Б")
	cardiology := f.department(t, h.ID, "Cardiology")
	foreign := f.department(t, other.ID, "Cardiology")
	f.doctor(t, "doctor-1", "Иван Петров", "Cardiology")

	t.Run("duplicates allowed", func(t *testing.T) {
		first := f.affiliate(t, "doctor-1", h.ID, cardiology.ID, "50")
		second := f.affiliate(t, "doctor-1", h.ID, cardiology.ID, "70")
		assert.NotEqual(t, first.ID, second.ID)
	})

	t.Run("department of another hospital", func(t *testing.T) {
		_, err := f.affiliation.Create(ctx, "doctor-1", domain.CreateAffiliationDTO{
			HospitalID:      h.ID,
			DepartmentID:    foreign.ID,
			ConsultationFee: decimal.NewFromInt(50),
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("doctor without profile", func(t *testing.T) {
		_, err := f.affiliation.Create(ctx, "doctor-unknown", domain.CreateAffiliationDTO{
			HospitalID:      h.ID,
			DepartmentID:    cardiology.ID,
			ConsultationFee: decimal.NewFromInt(50),
		})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("unknown department", func(t *testing.T) {
		_, err := f.affiliation.Create(ctx, "doctor-1", domain.CreateAffiliationDTO{
			HospitalID:      h.ID,
			DepartmentID:    "missing",
			ConsultationFee: decimal.NewFromInt(50),
		})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	list, err := f.affiliation.List(ctx, domain.AffiliationFilter{HospitalID: &h.ID})
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
