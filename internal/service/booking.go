package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"medslot/internal/domain"
	"medslot/internal/repository"
	"medslot/pkg/receipt"
)

// Fixed split of every consultation fee between doctor and hospital.
const (
	DoctorSharePercent   = 60
	HospitalSharePercent = 100 - DoctorSharePercent
)

// SplitRevenue gives the doctor their share rounded to cents and the hospital
// the remainder, so the two always add up to fee exactly.
func SplitRevenue(fee decimal.Decimal) (doctor, hospital decimal.Decimal) {
	doctor = fee.Mul(decimal.NewFromInt(DoctorSharePercent)).Div(decimal.NewFromInt(100)).Round(2)
	hospital = fee.Sub(doctor)
	return doctor, hospital
}

type BookingServiceImpl struct {
	repo            repository.AppointmentRepository
	slotRepo        repository.SlotRepository
	affiliationRepo repository.AffiliationRepository
	directoryRepo   repository.DirectoryRepository
	documents       *documentStore
	logger          *zap.Logger
}

func NewBookingService(
	repo repository.AppointmentRepository,
	slotRepo repository.SlotRepository,
	affiliationRepo repository.AffiliationRepository,
	directoryRepo repository.DirectoryRepository,
	documents *documentStore,
	logger *zap.Logger,
) *BookingServiceImpl {
	return &BookingServiceImpl{
		repo:            repo,
		slotRepo:        slotRepo,
		affiliationRepo: affiliationRepo,
		directoryRepo:   directoryRepo,
		documents:       documents,
		logger:          logger,
	}
}

func (s *BookingServiceImpl) Book(ctx context.Context, patientID string, dto domain.BookSlotDTO) (*domain.Appointment, error) {
	slot, err := s.slotRepo.GetByID(ctx, dto.SlotID)
	if err != nil {
		s.logger.Error("ошибка получения слота", zap.String("slot_id", dto.SlotID), zap.Error(err))
		return nil, fmt.Errorf("ошибка бронирования: %w", err)
	}
	if slot == nil {
		return nil, domain.NewNotFoundError("слот", dto.SlotID)
	}
	if slot.IsBooked {
		return nil, domain.ErrSlotUnavailable
	}

	affiliation, err := s.resolveAffiliation(ctx, *slot, dto.AffiliationID)
	if err != nil {
		return nil, err
	}

	doctorRevenue, hospitalRevenue := SplitRevenue(affiliation.ConsultationFee)
	now := time.Now()

	appointment, err := s.repo.BookSlot(ctx, domain.Appointment{
		ID:              uuid.New().String(),
		PatientID:       patientID,
		DoctorID:        slot.DoctorID,
		HospitalID:      slot.HospitalID,
		SlotID:          slot.ID,
		ScheduledAt:     slot.StartTime,
		FeePaid:         affiliation.ConsultationFee,
		DoctorRevenue:   doctorRevenue,
		HospitalRevenue: hospitalRevenue,
		Status:          domain.AppointmentStatusBooked,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrSlotUnavailable) || errors.Is(err, domain.ErrNotFound) {
			s.logger.Info("слот не удалось забронировать",
				zap.String("slot_id", slot.ID),
				zap.String("patient_id", patientID),
				zap.Error(err),
			)
			return nil, err
		}
		s.logger.Error("ошибка бронирования слота", zap.String("slot_id", slot.ID), zap.Error(err))
		return nil, fmt.Errorf("ошибка бронирования: %w", err)
	}

	s.logger.Info("слот забронирован",
		zap.String("appointment_id", appointment.ID),
		zap.String("slot_id", appointment.SlotID),
		zap.String("patient_id", patientID),
	)

	return appointment, nil
}

// resolveAffiliation picks the fee source for a slot: the affiliation the
// offering showed, or the doctor's first affiliation at the slot's hospital.
func (s *BookingServiceImpl) resolveAffiliation(ctx context.Context, slot domain.Slot, affiliationID string) (*domain.Affiliation, error) {
	if affiliationID != "" {
		affiliation, err := s.affiliationRepo.GetByID(ctx, affiliationID)
		if err != nil {
			s.logger.Error("ошибка получения аффилиации", zap.String("affiliation_id", affiliationID), zap.Error(err))
			return nil, fmt.Errorf("ошибка бронирования: %w", err)
		}
		if affiliation == nil {
			return nil, domain.NewNotFoundError("аффилиация", affiliationID)
		}
		if affiliation.DoctorID != slot.DoctorID || affiliation.HospitalID != slot.HospitalID {
			return nil, domain.NewValidationError("affiliation_id", "аффилиация не соответствует врачу и больнице слота")
		}
		return affiliation, nil
	}

	affiliations, err := s.affiliationRepo.List(ctx, domain.AffiliationFilter{
		DoctorID:   &slot.DoctorID,
		HospitalID: &slot.HospitalID,
	})
	if err != nil {
		s.logger.Error("ошибка получения аффилиаций", zap.String("doctor_id", slot.DoctorID), zap.Error(err))
		return nil, fmt.Errorf("ошибка бронирования: %w", err)
	}
	if len(affiliations) == 0 {
		return nil, domain.NewNotFoundError("аффилиация врача", slot.DoctorID)
	}

	return &affiliations[0], nil
}

func (s *BookingServiceImpl) GetByID(ctx context.Context, id string) (*domain.Appointment, error) {
	appointment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("ошибка получения записи", zap.String("appointment_id", id), zap.Error(err))
		return nil, fmt.Errorf("ошибка получения записи: %w", err)
	}
	if appointment == nil {
		return nil, domain.NewNotFoundError("запись", id)
	}
	return appointment, nil
}

func (s *BookingServiceImpl) Complete(ctx context.Context, id string) (*domain.Appointment, error) {
	appointment, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appointment.Status == domain.AppointmentStatusCompleted {
		return appointment, nil
	}

	updated, err := s.repo.UpdateStatus(ctx, id, domain.AppointmentStatusBooked, domain.AppointmentStatusCompleted)
	if err != nil {
		s.logger.Error("ошибка завершения записи", zap.String("appointment_id", id), zap.Error(err))
		return nil, fmt.Errorf("ошибка завершения записи: %w", err)
	}
	if !updated {
		return nil, domain.NewValidationError("status", fmt.Sprintf("запись в статусе %q нельзя завершить", appointment.Status))
	}

	return s.GetByID(ctx, id)
}

func (s *BookingServiceImpl) ListForPatient(ctx context.Context, patientID string) ([]domain.Appointment, error) {
	appointments, err := s.repo.List(ctx, domain.AppointmentFilter{PatientID: &patientID})
	if err != nil {
		s.logger.Error("ошибка получения записей пациента", zap.String("patient_id", patientID), zap.Error(err))
		return nil, fmt.Errorf("ошибка получения записей: %w", err)
	}
	return appointments, nil
}

func (s *BookingServiceImpl) Receipt(ctx context.Context, id string) (*domain.Document, error) {
	appointment, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	doctorName := appointment.DoctorID
	profile, err := s.directoryRepo.GetDoctorProfile(ctx, appointment.DoctorID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения профиля врача: %w", err)
	}
	if profile != nil {
		doctorName = profile.Name
	}

	hospitalName := domain.UnknownHospitalName
	hospital, err := s.directoryRepo.GetHospital(ctx, appointment.HospitalID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения больницы: %w", err)
	}
	if hospital != nil {
		hospitalName = hospital.Name
	}

	content, err := receipt.Render(receipt.Data{
		AppointmentID:   appointment.ID,
		PatientID:       appointment.PatientID,
		DoctorName:      doctorName,
		HospitalName:    hospitalName,
		ScheduledAt:     appointment.ScheduledAt,
		Status:          string(appointment.Status),
		FeePaid:         appointment.FeePaid,
		DoctorRevenue:   appointment.DoctorRevenue,
		HospitalRevenue: appointment.HospitalRevenue,
	})
	if err != nil {
		s.logger.Error("ошибка формирования квитанции", zap.String("appointment_id", id), zap.Error(err))
		return nil, fmt.Errorf("ошибка формирования квитанции: %w", err)
	}

	doc, err := s.documents.publish(ctx, "receipts", "appointment-"+appointment.ID+".pdf", "application/pdf", content)
	if err != nil {
		s.logger.Error("ошибка сохранения квитанции", zap.String("appointment_id", id), zap.Error(err))
		return nil, err
	}

	return doc, nil
}
