package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"medslot/internal/domain"
	"medslot/internal/repository"
	"medslot/pkg/validator"
)

type DirectoryServiceImpl struct {
	repo   repository.DirectoryRepository
	logger *zap.Logger
}

func NewDirectoryService(repo repository.DirectoryRepository, logger *zap.Logger) *DirectoryServiceImpl {
	return &DirectoryServiceImpl{
		repo:   repo,
		logger: logger,
	}
}

func (s *DirectoryServiceImpl) CreateHospital(ctx context.Context, dto domain.CreateHospitalDTO) (*domain.Hospital, error) {
	name := validator.SanitizeString(dto.Name)
	if !validator.ValidateTitle(name) {
		return nil, domain.NewValidationError("name", "некорректное название больницы")
	}

	hospital := domain.Hospital{
		ID:        uuid.New().String(),
		Name:      name,
		Location:  validator.SanitizeString(dto.Location),
		CreatedAt: time.Now(),
	}

	if err := s.repo.CreateHospital(ctx, hospital); err != nil {
		s.logger.Error("ошибка создания больницы", zap.Error(err))
		return nil, fmt.Errorf("ошибка при создании больницы: %w", err)
	}

	s.logger.Info("больница создана", zap.String("hospital_id", hospital.ID))
	return &hospital, nil
}

func (s *DirectoryServiceImpl) GetHospital(ctx context.Context, id string) (*domain.Hospital, error) {
	hospital, err := s.repo.GetHospital(ctx, id)
	if err != nil {
		s.logger.Error("ошибка получения больницы", zap.String("hospital_id", id), zap.Error(err))
		return nil, fmt.Errorf("ошибка получения больницы: %w", err)
	}
	if hospital == nil {
		return nil, domain.NewNotFoundError("больница", id)
	}
	return hospital, nil
}

func (s *DirectoryServiceImpl) ListHospitals(ctx context.Context) ([]domain.Hospital, error) {
	hospitals, err := s.repo.ListHospitals(ctx)
	if err != nil {
		s.logger.Error("ошибка получения списка больниц", zap.Error(err))
		return nil, fmt.Errorf("ошибка при получении списка больниц: %w", err)
	}
	return hospitals, nil
}

func (s *DirectoryServiceImpl) CreateDepartment(ctx context.Context, hospitalID string, dto domain.CreateDepartmentDTO) (*domain.Department, error) {
	if _, err := s.GetHospital(ctx, hospitalID); err != nil {
		return nil, err
	}

	name := validator.SanitizeString(dto.Name)
	if !validator.ValidateTitle(name) {
		return nil, domain.NewValidationError("name", "некорректное название отделения")
	}

	department := domain.Department{
		ID:         uuid.New().String(),
		HospitalID: hospitalID,
		Name:       name,
		CreatedAt:  time.Now(),
	}

	if err := s.repo.CreateDepartment(ctx, department); err != nil {
		s.logger.Error("ошибка создания отделения", zap.String("hospital_id", hospitalID), zap.Error(err))
		return nil, fmt.Errorf("ошибка при создании отделения: %w", err)
	}

	return &department, nil
}

func (s *DirectoryServiceImpl) ListDepartments(ctx context.Context, hospitalID string) ([]domain.Department, error) {
	if _, err := s.GetHospital(ctx, hospitalID); err != nil {
		return nil, err
	}

	departments, err := s.repo.ListDepartments(ctx, hospitalID)
	if err != nil {
		s.logger.Error("ошибка получения отделений", zap.String("hospital_id", hospitalID), zap.Error(err))
		return nil, fmt.Errorf("ошибка при получении списка отделений: %w", err)
	}
	return departments, nil
}

func (s *DirectoryServiceImpl) UpsertDoctorProfile(ctx context.Context, doctorID string, dto domain.UpsertDoctorProfileDTO) (*domain.DoctorProfile, error) {
	name := validator.SanitizeString(dto.Name)
	if !validator.ValidateTitle(name) {
		return nil, domain.NewValidationError("name", "некорректное имя врача")
	}

	specializations := validator.ParseSpecializations(dto.Specializations)
	if len(specializations) == 0 {
		return nil, domain.NewValidationError("specializations", "нужно указать хотя бы одну специализацию")
	}
	if dto.YearsOfExperience < 0 {
		return nil, domain.NewValidationError("years_of_experience", "стаж не может быть отрицательным")
	}

	profile := domain.DoctorProfile{
		ID:                doctorID,
		Name:              name,
		Specializations:   specializations,
		YearsOfExperience: dto.YearsOfExperience,
		Qualifications:    validator.SanitizeString(dto.Qualifications),
		UpdatedAt:         time.Now(),
	}

	if err := s.repo.UpsertDoctorProfile(ctx, profile); err != nil {
		s.logger.Error("ошибка сохранения профиля врача", zap.String("doctor_id", doctorID), zap.Error(err))
		return nil, fmt.Errorf("ошибка при сохранении профиля врача: %w", err)
	}

	return &profile, nil
}

func (s *DirectoryServiceImpl) GetDoctorProfile(ctx context.Context, doctorID string) (*domain.DoctorProfile, error) {
	profile, err := s.repo.GetDoctorProfile(ctx, doctorID)
	if err != nil {
		s.logger.Error("ошибка получения профиля врача", zap.String("doctor_id", doctorID), zap.Error(err))
		return nil, fmt.Errorf("ошибка получения профиля врача: %w", err)
	}
	if profile == nil {
		return nil, domain.NewNotFoundError("профиль врача", doctorID)
	}
	return profile, nil
}
