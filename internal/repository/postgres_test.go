package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medslot/internal/domain"
)

var (
	slotStart = time.Date(2030, time.March, 10, 9, 0, 0, 0, time.UTC)
	slotEnd   = slotStart.Add(time.Hour)

	slotColumnNames = []string{
		"id", "doctor_id", "hospital_id", "start_time", "end_time",
		"is_booked", "booked_by_patient_id", "created_at", "updated_at",
	}
)

func setupMockPool(t *testing.T) pgxmock.PgxPoolIface {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func newSlot(id string, start, end time.Time) domain.Slot {
	return domain.Slot{
		ID:         id,
		DoctorID:   "doctor-1",
		HospitalID: "hospital-a",
		StartTime:  start,
		EndTime:    end,
		CreatedAt:  slotStart.Add(-24 * time.Hour),
	}
}

func TestSlotRepo_CreateExclusive_Success(t *testing.T) {
	mock := setupMockPool(t)
	repo := NewSlotRepository(mock)

	mock.ExpectBegin()
	mock.ExpectExec(`pg_advisory_xact_lock`).
		WithArgs("doctor-1").
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectQuery(`FROM availability_slots`).
		WithArgs("doctor-1").
		WillReturnRows(pgxmock.NewRows(slotColumnNames).
			AddRow("slot-1", "doctor-1", "hospital-a", slotStart, slotEnd, false, nil, slotStart, slotStart))
	mock.ExpectExec(`INSERT INTO availability_slots`).
		WithArgs("slot-2", "doctor-1", "hospital-a", slotEnd, slotEnd.Add(time.Hour), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	var seen []domain.Slot
	slot, err := repo.CreateExclusive(context.Background(), "doctor-1", func(existing []domain.Slot) (domain.Slot, error) {
		seen = existing
		return newSlot("slot-2", slotEnd, slotEnd.Add(time.Hour)), nil
	})

	require.NoError(t, err)
	assert.Equal(t, "slot-2", slot.ID)
	require.Len(t, seen, 1)
	assert.Equal(t, "slot-1", seen[0].ID)
	assert.Nil(t, seen[0].BookedByPatientID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepo_CreateExclusive_BuilderRejects(t *testing.T) {
	mock := setupMockPool(t)
	repo := NewSlotRepository(mock)

	mock.ExpectBegin()
	mock.ExpectExec(`pg_advisory_xact_lock`).
		WithArgs("doctor-1").
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectQuery(`FROM availability_slots`).
		WithArgs("doctor-1").
		WillReturnRows(pgxmock.NewRows(slotColumnNames))
	mock.ExpectRollback()

	_, err := repo.CreateExclusive(context.Background(), "doctor-1", func(existing []domain.Slot) (domain.Slot, error) {
		return domain.Slot{}, &domain.OverlapError{SlotID: "slot-1"}
	})

	assert.ErrorIs(t, err, domain.ErrSlotOverlap)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepo_CreateExclusive_ExclusionViolation(t *testing.T) {
	mock := setupMockPool(t)
	repo := NewSlotRepository(mock)

	mock.ExpectBegin()
	mock.ExpectExec(`pg_advisory_xact_lock`).
		WithArgs("doctor-1").
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectQuery(`FROM availability_slots`).
		WithArgs("doctor-1").
		WillReturnRows(pgxmock.NewRows(slotColumnNames))
	mock.ExpectExec(`INSERT INTO availability_slots`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: pgExclusionViolation})
	mock.ExpectRollback()

	_, err := repo.CreateExclusive(context.Background(), "doctor-1", func(existing []domain.Slot) (domain.Slot, error) {
		return newSlot("slot-2", slotStart, slotEnd), nil
	})

	assert.ErrorIs(t, err, domain.ErrSlotOverlap)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepo_List_Filters(t *testing.T) {
	mock := setupMockPool(t)
	repo := NewSlotRepository(mock)

	doctorID, hospitalID := "doctor-1", "hospital-a"
	from, to := slotStart.Add(-time.Hour), slotStart.Add(time.Hour)

	mock.ExpectQuery(`AND doctor_id = \$1 AND hospital_id = \$2 AND is_booked = FALSE AND start_time >= \$3 AND start_time <= \$4 ORDER BY start_time`).
		WithArgs(doctorID, hospitalID, from, to).
		WillReturnRows(pgxmock.NewRows(slotColumnNames).
			AddRow("slot-1", doctorID, hospitalID, slotStart, slotEnd, false, nil, slotStart, slotStart))

	slots, err := repo.List(context.Background(), domain.SlotFilter{
		DoctorID:     &doctorID,
		HospitalID:   &hospitalID,
		OnlyUnbooked: true,
		StartFrom:    &from,
		StartTo:      &to,
	})

	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, slotStart, slots[0].StartTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepo_List_DayBoundsInclusive(t *testing.T) {
	mock := setupMockPool(t)
	repo := NewSlotRepository(mock)

	from := time.Date(2030, time.March, 10, 0, 0, 0, 0, time.UTC)
	to := from.Add(24*time.Hour - time.Millisecond)

	mock.ExpectQuery(`AND is_booked = FALSE AND start_time >= \$1 AND start_time <= \$2 ORDER BY start_time`).
		WithArgs(from, to).
		WillReturnRows(pgxmock.NewRows(slotColumnNames).
			AddRow("slot-open", "doctor-1", "hospital-a", from, from.Add(30*time.Minute), false, nil, from, from).
			AddRow("slot-close", "doctor-1", "hospital-a", to, to.Add(time.Millisecond), false, nil, from, from))

	slots, err := repo.List(context.Background(), domain.SlotFilter{
		OnlyUnbooked: true,
		StartFrom:    &from,
		StartTo:      &to,
	})

	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, from, slots[0].StartTime)
	assert.Equal(t, to, slots[1].StartTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepo_GetByID_NotFound(t *testing.T) {
	mock := setupMockPool(t)
	repo := NewSlotRepository(mock)

	mock.ExpectQuery(`FROM availability_slots WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(slotColumnNames))

	slot, err := repo.GetByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, slot)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func newAppointment() domain.Appointment {
	now := slotStart.Add(-2 * time.Hour)
	return domain.Appointment{
		ID:              "appointment-1",
		PatientID:       "patient-1",
		DoctorID:        "doctor-1",
		HospitalID:      "hospital-a",
		SlotID:          "slot-1",
		FeePaid:         decimal.NewFromInt(50),
		DoctorRevenue:   decimal.NewFromInt(30),
		HospitalRevenue: decimal.NewFromInt(20),
		Status:          domain.AppointmentStatusBooked,
		CreatedAt:       now,
	}
}

func expectClaim(mock pgxmock.PgxPoolIface, rows *pgxmock.Rows) {
	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE availability_slots`).
		WithArgs("slot-1", "patient-1", pgxmock.AnyArg()).
		WillReturnRows(rows)
}

func TestAppointmentRepo_BookSlot_Success(t *testing.T) {
	mock := setupMockPool(t)
	repo := NewAppointmentRepository(mock)

	expectClaim(mock, pgxmock.NewRows([]string{"start_time"}).AddRow(slotStart))
	mock.ExpectExec(`INSERT INTO appointments`).
		WithArgs("appointment-1", "patient-1", "doctor-1", "hospital-a", "slot-1", slotStart,
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	appointment, err := repo.BookSlot(context.Background(), newAppointment())

	require.NoError(t, err)
	assert.Equal(t, slotStart, appointment.ScheduledAt)
	assert.Equal(t, appointment.CreatedAt, appointment.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepo_BookSlot_AlreadyBooked(t *testing.T) {
	mock := setupMockPool(t)
	repo := NewAppointmentRepository(mock)

	expectClaim(mock, pgxmock.NewRows([]string{"start_time"}))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("slot-1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	_, err := repo.BookSlot(context.Background(), newAppointment())

	assert.ErrorIs(t, err, domain.ErrSlotUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepo_BookSlot_UnknownSlot(t *testing.T) {
	mock := setupMockPool(t)
	repo := NewAppointmentRepository(mock)

	expectClaim(mock, pgxmock.NewRows([]string{"start_time"}))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("slot-1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectRollback()

	_, err := repo.BookSlot(context.Background(), newAppointment())

	var notFound *domain.NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "slot-1", notFound.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepo_BookSlot_DuplicateAppointment(t *testing.T) {
	mock := setupMockPool(t)
	repo := NewAppointmentRepository(mock)

	expectClaim(mock, pgxmock.NewRows([]string{"start_time"}).AddRow(slotStart))
	mock.ExpectExec(`INSERT INTO appointments`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: pgUniqueViolation})
	mock.ExpectRollback()

	_, err := repo.BookSlot(context.Background(), newAppointment())

	assert.ErrorIs(t, err, domain.ErrSlotUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepo_UpdateStatus(t *testing.T) {
	mock := setupMockPool(t)
	repo := NewAppointmentRepository(mock)

	mock.ExpectExec(`UPDATE appointments SET status`).
		WithArgs("appointment-1", domain.AppointmentStatusBooked, domain.AppointmentStatusCompleted).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE appointments SET status`).
		WithArgs("appointment-1", domain.AppointmentStatusBooked, domain.AppointmentStatusCompleted).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	updated, err := repo.UpdateStatus(context.Background(), "appointment-1", domain.AppointmentStatusBooked, domain.AppointmentStatusCompleted)
	require.NoError(t, err)
	assert.True(t, updated)

	updated, err = repo.UpdateStatus(context.Background(), "appointment-1", domain.AppointmentStatusBooked, domain.AppointmentStatusCompleted)
	require.NoError(t, err)
	assert.False(t, updated)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAffiliationRepo_List(t *testing.T) {
	mock := setupMockPool(t)
	repo := NewAffiliationRepository(mock)

	hospitalID := "hospital-a"
	mock.ExpectQuery(`FROM affiliations WHERE 1=1 AND hospital_id = \$1 ORDER BY created_at, id`).
		WithArgs(hospitalID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "doctor_id", "hospital_id", "department_id", "consultation_fee", "created_at"}).
			AddRow("aff-1", "doctor-1", hospitalID, "dep-1", decimal.RequireFromString("50.00"), slotStart))

	affiliations, err := repo.List(context.Background(), domain.AffiliationFilter{HospitalID: &hospitalID})

	require.NoError(t, err)
	require.Len(t, affiliations, 1)
	assert.Equal(t, "dep-1", affiliations[0].DepartmentID)
	assert.True(t, affiliations[0].ConsultationFee.Equal(decimal.NewFromInt(50)))
	assert.NoError(t, mock.ExpectationsWereMet())
}
