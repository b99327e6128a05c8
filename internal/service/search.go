package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"medslot/internal/domain"
	"medslot/internal/repository"
)

// DayWindow returns the first and last instant (23:59:59.999) of day's calendar
// date in loc. Both bounds are inclusive.
func DayWindow(day time.Time, loc *time.Location) (time.Time, time.Time) {
	y, m, d := day.Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, loc)
	to := from.AddDate(0, 0, 1).Add(-time.Millisecond)
	return from, to
}

// MatchesCriteria applies the profile filters of a search: exact specialization
// membership and a case-insensitive term against the name or any specialization.
func MatchesCriteria(profile domain.DoctorProfile, criteria domain.SearchCriteria) bool {
	if criteria.Specialization != "" && !profile.HasSpecialization(criteria.Specialization) {
		return false
	}

	term := strings.ToLower(strings.TrimSpace(criteria.Query))
	if term == "" {
		return true
	}

	if strings.Contains(strings.ToLower(profile.Name), term) {
		return true
	}
	for _, s := range profile.Specializations {
		if strings.Contains(strings.ToLower(s), term) {
			return true
		}
	}
	return false
}

type SearchServiceImpl struct {
	affiliationRepo repository.AffiliationRepository
	slotRepo        repository.SlotRepository
	directoryRepo   repository.DirectoryRepository
	location        *time.Location
	logger          *zap.Logger
}

func NewSearchService(
	affiliationRepo repository.AffiliationRepository,
	slotRepo repository.SlotRepository,
	directoryRepo repository.DirectoryRepository,
	location *time.Location,
	logger *zap.Logger,
) *SearchServiceImpl {
	if location == nil {
		location = time.Local
	}
	return &SearchServiceImpl{
		affiliationRepo: affiliationRepo,
		slotRepo:        slotRepo,
		directoryRepo:   directoryRepo,
		location:        location,
		logger:          logger,
	}
}

func (s *SearchServiceImpl) Search(ctx context.Context, criteria domain.SearchCriteria) ([]domain.DoctorOffering, error) {
	affiliations, err := s.affiliationRepo.List(ctx, domain.AffiliationFilter{HospitalID: criteria.HospitalID})
	if err != nil {
		s.logger.Error("ошибка получения аффилиаций для поиска", zap.Error(err))
		return nil, fmt.Errorf("ошибка поиска врачей: %w", err)
	}

	var doctorIDs []string
	byDoctor := make(map[string][]domain.Affiliation)
	for _, a := range affiliations {
		if _, seen := byDoctor[a.DoctorID]; !seen {
			doctorIDs = append(doctorIDs, a.DoctorID)
		}
		byDoctor[a.DoctorID] = append(byDoctor[a.DoctorID], a)
	}

	var startFrom, startTo *time.Time
	if criteria.Date != nil {
		from, to := DayWindow(*criteria.Date, s.location)
		startFrom, startTo = &from, &to
	}

	hospitalNames := make(map[string]string)
	offerings := []domain.DoctorOffering{}

	for _, doctorID := range doctorIDs {
		profile, err := s.directoryRepo.GetDoctorProfile(ctx, doctorID)
		if err != nil {
			s.logger.Error("ошибка получения профиля врача", zap.String("doctor_id", doctorID), zap.Error(err))
			return nil, fmt.Errorf("ошибка поиска врачей: %w", err)
		}
		if profile == nil || !MatchesCriteria(*profile, criteria) {
			continue
		}

		for _, a := range byDoctor[doctorID] {
			hospitalID := a.HospitalID
			slots, err := s.slotRepo.List(ctx, domain.SlotFilter{
				DoctorID:     &doctorID,
				HospitalID:   &hospitalID,
				OnlyUnbooked: true,
				StartFrom:    startFrom,
				StartTo:      startTo,
			})
			if err != nil {
				s.logger.Error("ошибка получения слотов врача", zap.String("doctor_id", doctorID), zap.Error(err))
				return nil, fmt.Errorf("ошибка поиска врачей: %w", err)
			}
			if len(slots) == 0 {
				continue
			}
			sort.SliceStable(slots, func(i, j int) bool {
				return slots[i].StartTime.Before(slots[j].StartTime)
			})

			name, ok := hospitalNames[hospitalID]
			if !ok {
				name, err = s.hospitalName(ctx, hospitalID)
				if err != nil {
					return nil, err
				}
				hospitalNames[hospitalID] = name
			}

			offerings = append(offerings, domain.DoctorOffering{
				DoctorID:          profile.ID,
				DoctorName:        profile.Name,
				Specializations:   profile.Specializations,
				YearsOfExperience: profile.YearsOfExperience,
				Qualifications:    profile.Qualifications,
				AffiliationID:     a.ID,
				HospitalID:        hospitalID,
				HospitalName:      name,
				DepartmentID:      a.DepartmentID,
				ConsultationFee:   a.ConsultationFee,
				AvailableSlots:    slots,
			})
		}
	}

	return offerings, nil
}

func (s *SearchServiceImpl) hospitalName(ctx context.Context, hospitalID string) (string, error) {
	hospital, err := s.directoryRepo.GetHospital(ctx, hospitalID)
	if err != nil {
		s.logger.Error("ошибка получения больницы", zap.String("hospital_id", hospitalID), zap.Error(err))
		return "", fmt.Errorf("ошибка поиска врачей: %w", err)
	}
	if hospital == nil {
		return domain.UnknownHospitalName, nil
	}
	return hospital.Name, nil
}
