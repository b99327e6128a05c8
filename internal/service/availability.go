package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"medslot/internal/domain"
	"medslot/internal/repository"
)

// RegisterSlot builds a new unbooked slot after checking it against the
// doctor's existing unbooked slots at every hospital. It has no side effects.
func RegisterSlot(doctorID, hospitalID string, start, end time.Time, existing []domain.Slot) (domain.Slot, error) {
	if !start.Before(end) {
		return domain.Slot{}, domain.ErrInvalidTimeRange
	}

	for _, other := range existing {
		if other.DoctorID != doctorID || other.IsBooked {
			continue
		}
		if other.Overlaps(start, end) {
			return domain.Slot{}, &domain.OverlapError{
				SlotID: other.ID,
				Start:  other.StartTime,
				End:    other.EndTime,
			}
		}
	}

	now := time.Now()
	return domain.Slot{
		ID:         uuid.New().String(),
		DoctorID:   doctorID,
		HospitalID: hospitalID,
		StartTime:  start,
		EndTime:    end,
		IsBooked:   false,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

type AvailabilityServiceImpl struct {
	repo          repository.SlotRepository
	directoryRepo repository.DirectoryRepository
	logger        *zap.Logger
}

func NewAvailabilityService(
	repo repository.SlotRepository,
	directoryRepo repository.DirectoryRepository,
	logger *zap.Logger,
) *AvailabilityServiceImpl {
	return &AvailabilityServiceImpl{
		repo:          repo,
		directoryRepo: directoryRepo,
		logger:        logger,
	}
}

func (s *AvailabilityServiceImpl) Register(ctx context.Context, doctorID string, dto domain.RegisterSlotDTO) (*domain.Slot, error) {
	if !dto.StartTime.Before(dto.EndTime) {
		return nil, domain.ErrInvalidTimeRange
	}

	hospital, err := s.directoryRepo.GetHospital(ctx, dto.HospitalID)
	if err != nil {
		s.logger.Error("ошибка получения больницы", zap.String("hospital_id", dto.HospitalID), zap.Error(err))
		return nil, fmt.Errorf("ошибка получения больницы: %w", err)
	}
	if hospital == nil {
		return nil, domain.NewNotFoundError("больница", dto.HospitalID)
	}

	slot, err := s.repo.CreateExclusive(ctx, doctorID, func(existing []domain.Slot) (domain.Slot, error) {
		return RegisterSlot(doctorID, dto.HospitalID, dto.StartTime, dto.EndTime, existing)
	})
	if err != nil {
		var overlap *domain.OverlapError
		if errors.As(err, &overlap) {
			s.logger.Info("слот пересекается с существующим",
				zap.String("doctor_id", doctorID),
				zap.String("conflicting_slot_id", overlap.SlotID),
			)
			return nil, err
		}
		s.logger.Error("ошибка регистрации слота", zap.String("doctor_id", doctorID), zap.Error(err))
		return nil, fmt.Errorf("ошибка регистрации слота: %w", err)
	}

	return slot, nil
}

func (s *AvailabilityServiceImpl) ListByDoctor(ctx context.Context, doctorID string) ([]domain.SlotView, error) {
	slots, err := s.repo.List(ctx, domain.SlotFilter{DoctorID: &doctorID})
	if err != nil {
		s.logger.Error("ошибка получения слотов врача", zap.String("doctor_id", doctorID), zap.Error(err))
		return nil, fmt.Errorf("ошибка получения слотов врача: %w", err)
	}

	names := make(map[string]string)
	views := make([]domain.SlotView, 0, len(slots))
	for _, slot := range slots {
		name, ok := names[slot.HospitalID]
		if !ok {
			hospital, err := s.directoryRepo.GetHospital(ctx, slot.HospitalID)
			if err != nil {
				return nil, fmt.Errorf("ошибка получения больницы: %w", err)
			}
			if hospital != nil {
				name = hospital.Name
			}
			names[slot.HospitalID] = name
		}
		views = append(views, domain.SlotView{Slot: slot, HospitalName: name})
	}

	return views, nil
}
