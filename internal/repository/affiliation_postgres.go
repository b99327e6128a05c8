package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"medslot/internal/domain"
)

const affiliationColumns = `id, doctor_id, hospital_id, department_id, consultation_fee, created_at`

type AffiliationRepo struct {
	db PgxPool
}

func NewAffiliationRepository(db PgxPool) *AffiliationRepo {
	return &AffiliationRepo{db: db}
}

func (r *AffiliationRepo) Create(ctx context.Context, affiliation domain.Affiliation) error {
	query := `
		INSERT INTO affiliations (` + affiliationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(ctx, query,
		affiliation.ID,
		affiliation.DoctorID,
		affiliation.HospitalID,
		affiliation.DepartmentID,
		affiliation.ConsultationFee,
		affiliation.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("ошибка создания аффилиации: %w", err)
	}

	return nil
}

func (r *AffiliationRepo) GetByID(ctx context.Context, id string) (*domain.Affiliation, error) {
	query := `SELECT ` + affiliationColumns + ` FROM affiliations WHERE id = $1`

	var a domain.Affiliation
	err := r.db.QueryRow(ctx, query, id).Scan(
		&a.ID,
		&a.DoctorID,
		&a.HospitalID,
		&a.DepartmentID,
		&a.ConsultationFee,
		&a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка получения аффилиации: %w", err)
	}

	return &a, nil
}

func (r *AffiliationRepo) List(ctx context.Context, filter domain.AffiliationFilter) ([]domain.Affiliation, error) {
	query := `SELECT ` + affiliationColumns + ` FROM affiliations WHERE 1=1`

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
	}

	query += " ORDER BY created_at, id"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка аффилиаций: %w", err)
	}
	defer rows.Close()

	affiliations := []domain.Affiliation{}
	for rows.Next() {
		var a domain.Affiliation
		if err := rows.Scan(
			&a.ID,
			&a.DoctorID,
			&a.HospitalID,
			&a.DepartmentID,
			&a.ConsultationFee,
			&a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки аффилиации: %w", err)
		}
		affiliations = append(affiliations, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при обработке результатов запроса: %w", err)
	}

	return affiliations, nil
}
