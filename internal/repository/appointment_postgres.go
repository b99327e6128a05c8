package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"medslot/internal/domain"
)

const pgUniqueViolation = "23505"

const appointmentColumns = `id, patient_id, doctor_id, hospital_id, slot_id, scheduled_at, fee_paid, doctor_revenue, hospital_revenue, status, created_at, updated_at`

type AppointmentRepo struct {
	db PgxPool
}

func NewAppointmentRepository(db PgxPool) *AppointmentRepo {
	return &AppointmentRepo{
		db: db,
	}
}

func (r *AppointmentRepo) BookSlot(ctx context.Context, appointment domain.Appointment) (*domain.Appointment, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	claimQuery := `
		UPDATE availability_slots
		SET is_booked = TRUE, booked_by_patient_id = $2, updated_at = $3
		WHERE id = $1 AND is_booked = FALSE
		RETURNING start_time
	`

	err = tx.QueryRow(ctx, claimQuery, appointment.SlotID, appointment.PatientID, appointment.CreatedAt).
		Scan(&appointment.ScheduledAt)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("ошибка бронирования слота: %w", err)
		}

		var exists bool
		err = tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM availability_slots WHERE id = $1)`, appointment.SlotID).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("ошибка проверки слота: %w", err)
		}
		if !exists {
			return nil, domain.NewNotFoundError("слот", appointment.SlotID)
		}
		return nil, domain.ErrSlotUnavailable
	}

	insertQuery := `
		INSERT INTO appointments (` + appointmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
	`

	_, err = tx.Exec(ctx, insertQuery,
		appointment.ID,
		appointment.PatientID,
		appointment.DoctorID,
		appointment.HospitalID,
		appointment.SlotID,
		appointment.ScheduledAt,
		appointment.FeePaid,
		appointment.DoctorRevenue,
		appointment.HospitalRevenue,
		appointment.Status,
		appointment.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, domain.ErrSlotUnavailable
		}
		return nil, fmt.Errorf("ошибка создания записи на прием: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("ошибка при коммите транзакции: %w", err)
	}

	appointment.UpdatedAt = appointment.CreatedAt
	return &appointment, nil
}

func (r *AppointmentRepo) GetByID(ctx context.Context, id string) (*domain.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	appointment, err := scanAppointment(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка получения записи на прием: %w", err)
	}

	return appointment, nil
}

func (r *AppointmentRepo) List(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE 1=1`

	var args []interface{}
	argPos := 1

	if filter.PatientID != nil {
		query += fmt.Sprintf(" AND patient_id = $%d", argPos)
		args = append(args, *filter.PatientID)
		argPos++
	}

	if filter.DoctorID != nil {
		query += fmt.Sprintf(" AND doctor_id = $%d", argPos)
		args = append(args, *filter.DoctorID)
		argPos++
	}

	if filter.HospitalID != nil {
		query += fmt.Sprintf(" AND hospital_id = $%d", argPos)
		args = append(args, *filter.HospitalID)
		argPos++
	}

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, *filter.Status)
	}

	query += " ORDER BY scheduled_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка записей: %w", err)
	}
	defer rows.Close()

	appointments := []domain.Appointment{}
	for rows.Next() {
		appointment, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки записи: %w", err)
		}
		appointments = append(appointments, *appointment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при обработке результатов запроса: %w", err)
	}

	return appointments, nil
}

func (r *AppointmentRepo) UpdateStatus(ctx context.Context, id string, from, to domain.AppointmentStatus) (bool, error) {
	query := `UPDATE appointments SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`

	tag, err := r.db.Exec(ctx, query, id, from, to)
	if err != nil {
		return false, fmt.Errorf("ошибка обновления статуса записи: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

func scanAppointment(row pgx.Row) (*domain.Appointment, error) {
	var a domain.Appointment
	err := row.Scan(
		&a.ID,
		&a.PatientID,
		&a.DoctorID,
		&a.HospitalID,
		&a.SlotID,
		&a.ScheduledAt,
		&a.FeePaid,
		&a.DoctorRevenue,
		&a.HospitalRevenue,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
