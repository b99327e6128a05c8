package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"medslot/internal/domain"
)

type DirectoryRepo struct {
	db PgxPool
}

func NewDirectoryRepository(db PgxPool) *DirectoryRepo {
	return &DirectoryRepo{db: db}
}

func (r *DirectoryRepo) UpsertDoctorProfile(ctx context.Context, profile domain.DoctorProfile) error {
	query := `
		INSERT INTO doctor_profiles (id, name, specializations, years_of_experience, qualifications, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
			specializations = EXCLUDED.specializations,
			years_of_experience = EXCLUDED.years_of_experience,
			qualifications = EXCLUDED.qualifications,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.Exec(ctx, query,
		profile.ID,
		profile.Name,
		profile.Specializations,
		profile.YearsOfExperience,
		profile.Qualifications,
		profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("ошибка сохранения профиля врача: %w", err)
	}

	return nil
}

func (r *DirectoryRepo) GetDoctorProfile(ctx context.Context, id string) (*domain.DoctorProfile, error) {
	query := `
		SELECT id, name, specializations, years_of_experience, qualifications, updated_at
		FROM doctor_profiles
		WHERE id = $1
	`

	var p domain.DoctorProfile
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Name,
		&p.Specializations,
		&p.YearsOfExperience,
		&p.Qualifications,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка получения профиля врача: %w", err)
	}

	return &p, nil
}

func (r *DirectoryRepo) CreateHospital(ctx context.Context, hospital domain.Hospital) error {
	query := `INSERT INTO hospitals (id, name, location, created_at) VALUES ($1, $2, $3, $4)`

	_, err := r.db.Exec(ctx, query, hospital.ID, hospital.Name, hospital.Location, hospital.CreatedAt)
	if err != nil {
		return fmt.Errorf("ошибка создания больницы: %w", err)
	}

	return nil
}

func (r *DirectoryRepo) GetHospital(ctx context.Context, id string) (*domain.Hospital, error) {
	query := `SELECT id, name, location, created_at FROM hospitals WHERE id = $1`

	var h domain.Hospital
	err := r.db.QueryRow(ctx, query, id).Scan(&h.ID, &h.Name, &h.Location, &h.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка получения больницы: %w", err)
	}

	return &h, nil
}

func (r *DirectoryRepo) ListHospitals(ctx context.Context) ([]domain.Hospital, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, location, created_at FROM hospitals ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка больниц: %w", err)
	}
	defer rows.Close()

	hospitals := []domain.Hospital{}
	for rows.Next() {
		var h domain.Hospital
		if err := rows.Scan(&h.ID, &h.Name, &h.Location, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки больницы: %w", err)
		}
		hospitals = append(hospitals, h)
	}

	return hospitals, rows.Err()
}

func (r *DirectoryRepo) CreateDepartment(ctx context.Context, department domain.Department) error {
	query := `INSERT INTO departments (id, hospital_id, name, created_at) VALUES ($1, $2, $3, $4)`

	_, err := r.db.Exec(ctx, query, department.ID, department.HospitalID, department.Name, department.CreatedAt)
	if err != nil {
		return fmt.Errorf("ошибка создания отделения: %w", err)
	}

	return nil
}

func (r *DirectoryRepo) GetDepartment(ctx context.Context, id string) (*domain.Department, error) {
	query := `SELECT id, hospital_id, name, created_at FROM departments WHERE id = $1`

	var d domain.Department
	err := r.db.QueryRow(ctx, query, id).Scan(&d.ID, &d.HospitalID, &d.Name, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка получения отделения: %w", err)
	}

	return &d, nil
}

func (r *DirectoryRepo) ListDepartments(ctx context.Context, hospitalID string) ([]domain.Department, error) {
	query := `SELECT id, hospital_id, name, created_at FROM departments WHERE hospital_id = $1 ORDER BY name`

	rows, err := r.db.Query(ctx, query, hospitalID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка отделений: %w", err)
	}
	defer rows.Close()

	departments := []domain.Department{}
	for rows.Next() {
		var d domain.Department
		if err := rows.Scan(&d.ID, &d.HospitalID, &d.Name, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки отделения: %w", err)
		}
		departments = append(departments, d)
	}

	return departments, rows.Err()
}
