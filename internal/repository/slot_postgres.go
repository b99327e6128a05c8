package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"medslot/internal/domain"
)

const pgExclusionViolation = "23P01"

const slotColumns = `id, doctor_id, hospital_id, start_time, end_time, is_booked, booked_by_patient_id, created_at, updated_at`

type SlotRepo struct {
	db PgxPool
}

func NewSlotRepository(db PgxPool) *SlotRepo {
	return &SlotRepo{db: db}
}

func (r *SlotRepo) CreateExclusive(ctx context.Context, doctorID string, build SlotBuilder) (*domain.Slot, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, doctorID); err != nil {
		return nil, fmt.Errorf("ошибка блокировки расписания врача: %w", err)
	}

	rows, err := tx.Query(ctx, `
		SELECT `+slotColumns+`
		FROM availability_slots
		WHERE doctor_id = $1 AND is_booked = FALSE
		ORDER BY start_time
	`, doctorID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения слотов врача: %w", err)
	}
	existing, err := scanSlots(rows)
	if err != nil {
		return nil, err
	}

	slot, err := build(existing)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO availability_slots (`+slotColumns+`)
		VALUES ($1, $2, $3, $4, $5, FALSE, NULL, $6, $6)
	`,
		slot.ID,
		slot.DoctorID,
		slot.HospitalID,
		slot.StartTime,
		slot.EndTime,
		slot.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgExclusionViolation {
			return nil, &domain.OverlapError{}
		}
		return nil, fmt.Errorf("ошибка создания слота: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("ошибка при коммите транзакции: %w", err)
	}

	return &slot, nil
}

func (r *SlotRepo) GetByID(ctx context.Context, id string) (*domain.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM availability_slots WHERE id = $1`

	slot, err := scanSlot(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка получения слота: %w", err)
	}

	return slot, nil
}

func (r *SlotRepo) ListUnbookedByDoctor(ctx context.Context, doctorID string) ([]domain.Slot, error) {
	return r.List(ctx, domain.SlotFilter{DoctorID: &doctorID, OnlyUnbooked: true})
}

func (r *SlotRepo) List(ctx context.Context, filter domain.SlotFilter) ([]domain.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM availability_slots WHERE 1=1`

	var args []interface{}
	argPos := 1

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

	if filter.OnlyUnbooked {
		query += " AND is_booked = FALSE"
	}

	if filter.StartFrom != nil {
		query += fmt.Sprintf(" AND start_time >= $%d", argPos)
		args = append(args, *filter.StartFrom)
		argPos++
	}

	if filter.StartTo != nil {
		query += fmt.Sprintf(" AND start_time <= $%d", argPos)
		args = append(args, *filter.StartTo)
	}

	query += " ORDER BY start_time"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка слотов: %w", err)
	}

	return scanSlots(rows)
}

func scanSlot(row pgx.Row) (*domain.Slot, error) {
	var slot domain.Slot
	err := row.Scan(
		&slot.ID,
		&slot.DoctorID,
		&slot.HospitalID,
		&slot.StartTime,
		&slot.EndTime,
		&slot.IsBooked,
		&slot.BookedByPatientID,
		&slot.CreatedAt,
		&slot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func scanSlots(rows pgx.Rows) ([]domain.Slot, error) {
	defer rows.Close()

	slots := []domain.Slot{}
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки слота: %w", err)
		}
		slots = append(slots, *slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при обработке результатов запроса: %w", err)
	}

	return slots, nil
}
