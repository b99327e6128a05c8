package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"medslot/internal/domain"
	"medslot/internal/repository"
)

// NewAffiliation validates the fee (positive, whole cents) and requires the
// department name to be one of the doctor's specializations, compared exactly.
// Duplicates are allowed.
func NewAffiliation(doctorID, hospitalID, departmentID string, fee decimal.Decimal, doctorSpecializations []string, departmentName string) (domain.Affiliation, error) {
	if !fee.IsPositive() {
		return domain.Affiliation{}, domain.NewValidationError("consultation_fee", "стоимость консультации должна быть больше нуля")
	}
	if !fee.Equal(fee.Truncate(2)) {
		return domain.Affiliation{}, domain.NewValidationError("consultation_fee", "стоимость консультации указывается с точностью до копеек")
	}

	profile := domain.DoctorProfile{Specializations: doctorSpecializations}
	if !profile.HasSpecialization(departmentName) {
		return domain.Affiliation{}, domain.NewValidationError("department_id",
			fmt.Sprintf("отделение %q не входит в специализации врача", departmentName))
	}

	return domain.Affiliation{
		ID:              uuid.New().String(),
		DoctorID:        doctorID,
		HospitalID:      hospitalID,
		DepartmentID:    departmentID,
		ConsultationFee: fee,
		CreatedAt:       time.Now(),
	}, nil
}

type AffiliationServiceImpl struct {
	repo          repository.AffiliationRepository
	directoryRepo repository.DirectoryRepository
	logger        *zap.Logger
}

func NewAffiliationService(
	repo repository.AffiliationRepository,
	directoryRepo repository.DirectoryRepository,
	logger *zap.Logger,
) *AffiliationServiceImpl {
	return &AffiliationServiceImpl{
		repo:          repo,
		directoryRepo: directoryRepo,
		logger:        logger,
	}
}

func (s *AffiliationServiceImpl) Create(ctx context.Context, doctorID string, dto domain.CreateAffiliationDTO) (*domain.Affiliation, error) {
	profile, err := s.directoryRepo.GetDoctorProfile(ctx, doctorID)
	if err != nil {
		s.logger.Error("ошибка получения профиля врача", zap.String("doctor_id", doctorID), zap.Error(err))
		return nil, fmt.Errorf("ошибка получения профиля врача: %w", err)
	}
	if profile == nil {
		return nil, domain.NewNotFoundError("профиль врача", doctorID)
	}

	hospital, err := s.directoryRepo.GetHospital(ctx, dto.HospitalID)
	if err != nil {
		s.logger.Error("ошибка получения больницы", zap.String("hospital_id", dto.HospitalID), zap.Error(err))
		return nil, fmt.Errorf("ошибка получения больницы: %w", err)
	}
	if hospital == nil {
		return nil, domain.NewNotFoundError("больница", dto.HospitalID)
	}

	department, err := s.directoryRepo.GetDepartment(ctx, dto.DepartmentID)
	if err != nil {
		s.logger.Error("ошибка получения отделения", zap.String("department_id", dto.DepartmentID), zap.Error(err))
		return nil, fmt.Errorf("ошибка получения отделения: %w", err)
	}
	if department == nil {
		return nil, domain.NewNotFoundError("отделение", dto.DepartmentID)
	}
	if department.HospitalID != hospital.ID {
		return nil, domain.NewValidationError("department_id", "отделение не относится к выбранной больнице")
	}

	affiliation, err := NewAffiliation(doctorID, hospital.ID, department.ID, dto.ConsultationFee, profile.Specializations, department.Name)
	if err != nil {
		s.logger.Info("аффилиация отклонена", zap.String("doctor_id", doctorID), zap.Error(err))
		return nil, err
	}

	if err := s.repo.Create(ctx, affiliation); err != nil {
		s.logger.Error("ошибка создания аффилиации", zap.String("doctor_id", doctorID), zap.Error(err))
		return nil, fmt.Errorf("ошибка создания аффилиации: %w", err)
	}

	return &affiliation, nil
}

func (s *AffiliationServiceImpl) List(ctx context.Context, filter domain.AffiliationFilter) ([]domain.Affiliation, error) {
	affiliations, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("ошибка получения списка аффилиаций", zap.Error(err))
		return nil, fmt.Errorf("ошибка получения списка аффилиаций: %w", err)
	}
	return affiliations, nil
}
