package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medslot/internal/domain"
)

func TestSplitRevenue(t *testing.T) {
	tests := []struct {
		fee      string
		doctor   string
		hospital string
	}{
		{fee: "50", doctor: "30", hospital: "20"},
		{fee: "100", doctor: "60", hospital: "40"},
		{fee: "99.99", doctor: "59.99", hospital: "40"},
		{fee: "100.01", doctor: "60.01", hospital: "40"},
		{fee: "0.01", doctor: "0.01", hospital: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.fee, func(t *testing.T) {
			fee := decimal.RequireFromString(tt.fee)
			doctor, hospital := SplitRevenue(fee)

			assert.True(t, doctor.Equal(decimal.RequireFromString(tt.doctor)), "doctor share %s", doctor)
			assert.True(t, hospital.Equal(decimal.RequireFromString(tt.hospital)), "hospital share %s", hospital)
			assert.True(t, doctor.Add(hospital).Equal(fee))
		})
	}
}

func TestBookingService_Book(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.clinic(t, "50")
	slot := f.slot(t, c.doctor.ID, c.hospital.ID, baseTime, 30*time.Minute)

	appointment, err := f.booking.Book(ctx, "patient-1", domain.BookSlotDTO{SlotID: slot.ID})
	require.NoError(t, err)

	assert.Equal(t, domain.AppointmentStatusBooked, appointment.Status)
	assert.Equal(t, slot.ID, appointment.SlotID)
	assert.Equal(t, c.doctor.ID, appointment.DoctorID)
	assert.Equal(t, c.hospital.ID, appointment.HospitalID)
	assert.True(t, appointment.ScheduledAt.Equal(slot.StartTime))
	assert.Equal(t, "50.00", FormatMoney(appointment.FeePaid))
	assert.Equal(t, "30.00", FormatMoney(appointment.DoctorRevenue))
	assert.Equal(t, "20.00", FormatMoney(appointment.HospitalRevenue))

	stored, err := f.repos.Slot.GetByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsBooked)
	require.NotNil(t, stored.BookedByPatientID)
	assert.Equal(t, "patient-1", *stored.BookedByPatientID)

	_, err = f.booking.Book(ctx, "patient-2", domain.BookSlotDTO{SlotID: slot.ID})
	assert.ErrorIs(t, err, domain.ErrSlotUnavailable)

	appointments, err := f.booking.ListForPatient(ctx, "patient-2")
	require.NoError(t, err)
	assert.Empty(t, appointments)
}

func TestBookingService_BookErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.clinic(t, "50")

	t.Run("unknown slot", func(t *testing.T) {
		_, err := f.booking.Book(ctx, "patient-1", domain.BookSlotDTO{SlotID: "missing"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("no affiliation at slot hospital", func(t *testing.T) {
		elsewhere := f.hospital(t, "Больница без аффилиации")
		slot := f.slot(t, c.doctor.ID, elsewhere.ID, baseTime.Add(24*time.Hour), time.Hour)

		_, err := f.booking.Book(ctx, "patient-1", domain.BookSlotDTO{SlotID: slot.ID})
		assert.ErrorIs(t, err, domain.ErrNotFound)

		stored, err := f.repos.Slot.GetByID(ctx, slot.ID)
		require.NoError(t, err)
		assert.False(t, stored.IsBooked)
	})

	t.Run("affiliation of another doctor", func(t *testing.T) {
		f.doctor(t, "doctor-2", "Анна Смирнова", "Cardiology")
		foreign := f.affiliate(t, "doctor-2", c.hospital.ID, c.department.ID, "80")
		slot := f.slot(t, c.doctor.ID, c.hospital.ID, baseTime.Add(48*time.Hour), time.Hour)

		_, err := f.booking.Book(ctx, "patient-1", domain.BookSlotDTO{SlotID: slot.ID, AffiliationID: foreign.ID})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("explicit affiliation sets the fee", func(t *testing.T) {
		second := f.affiliate(t, c.doctor.ID, c.hospital.ID, c.department.ID, "120")
		slot := f.slot(t, c.doctor.ID, c.hospital.ID, baseTime.Add(72*time.Hour), time.Hour)

		appointment, err := f.booking.Book(ctx, "patient-1", domain.BookSlotDTO{SlotID: slot.ID, AffiliationID: second.ID})
		require.NoError(t, err)
		assert.Equal(t, "120.00", FormatMoney(appointment.FeePaid))
		assert.Equal(t, "72.00", FormatMoney(appointment.DoctorRevenue))
	})
}

func TestBookingService_ConcurrentBookingSingleWinner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.clinic(t, "50")
	slot := f.slot(t, c.doctor.ID, c.hospital.ID, baseTime, time.Hour)

	const patients = 32

	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		winners     []string
		unavailable int
	)

	start := make(chan struct{})
	for i := 0; i < patients; i++ {
		wg.Add(1)
		go func(patientID string) {
			defer wg.Done()
			<-start

			appointment, err := f.booking.Book(ctx, patientID, domain.BookSlotDTO{SlotID: slot.ID})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners = append(winners, appointment.PatientID)
			case errors.Is(err, domain.ErrSlotUnavailable):
				unavailable++
			default:
				t.Errorf("неожиданная ошибка: %v", err)
			}
		}(fmt.Sprintf("patient-%d", i))
	}
	close(start)
	wg.Wait()

	require.Len(t, winners, 1)
	assert.Equal(t, patients-1, unavailable)

	all, err := f.repos.Appointment.List(ctx, domain.AppointmentFilter{DoctorID: &c.doctor.ID})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, winners[0], all[0].PatientID)

	stored, err := f.repos.Slot.GetByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, winners[0], *stored.BookedByPatientID)
}

func TestBookingService_Complete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.clinic(t, "50")
	slot := f.slot(t, c.doctor.ID, c.hospital.ID, baseTime, time.Hour)

	appointment, err := f.booking.Book(ctx, "patient-1", domain.BookSlotDTO{SlotID: slot.ID})
	require.NoError(t, err)

	completed, err := f.booking.Complete(ctx, appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AppointmentStatusCompleted, completed.Status)

	again, err := f.booking.Complete(ctx, appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AppointmentStatusCompleted, again.Status)

	_, err = f.booking.Complete(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBookingService_Receipt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.clinic(t, "50")
	slot := f.slot(t, c.doctor.ID, c.hospital.ID, baseTime, time.Hour)

	appointment, err := f.booking.Book(ctx, "patient-1", domain.BookSlotDTO{SlotID: slot.ID})
	require.NoError(t, err)

	doc, err := f.booking.Receipt(ctx, appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, "appointment-"+appointment.ID+".pdf", doc.FileName)
	assert.Empty(t, doc.URL)
	assert.True(t, bytes.HasPrefix(doc.Content, []byte("%PDF")))
}
