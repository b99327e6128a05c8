package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"medslot/internal/domain"
	"medslot/internal/repository"
	"medslot/pkg/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AggregateRevenue sums the selected share of completed appointments. Department
// keys come from the first affiliation with the appointment's doctor and
// hospital; appointments without one count toward the total only.
func AggregateRevenue(appointments []domain.Appointment, affiliations []domain.Affiliation, scope domain.RevenueScope) domain.RevenueSummary {
	summary := domain.RevenueSummary{
		TotalRevenue: decimal.Zero,
		Breakdown:    make(map[string]decimal.Decimal),
	}

	departments := make(map[[2]string]string)
	for _, a := range affiliations {
		key := [2]string{a.DoctorID, a.HospitalID}
		if _, ok := departments[key]; !ok {
			departments[key] = a.DepartmentID
		}
	}

	for _, appointment := range appointments {
		if appointment.Status != domain.AppointmentStatusCompleted {
			continue
		}

		amount := scope.Share.Of(appointment)
		summary.TotalConsultations++
		summary.TotalRevenue = summary.TotalRevenue.Add(amount)

		var key string
		switch scope.GroupBy {
		case domain.RevenueGroupDoctor:
			key = appointment.DoctorID
		case domain.RevenueGroupHospital:
			key = appointment.HospitalID
		case domain.RevenueGroupDepartment:
			departmentID, ok := departments[[2]string{appointment.DoctorID, appointment.HospitalID}]
			if !ok {
				continue
			}
			key = departmentID
		default:
			continue
		}

		summary.Breakdown[key] = summary.Breakdown[key].Add(amount)
	}

	return summary
}

// FormatMoney is the single place where sums are rounded.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func revenueLines(summary domain.RevenueSummary, names map[string]string) []domain.RevenueLine {
	lines := make([]domain.RevenueLine, 0, len(summary.Breakdown))
	for _, key := range summary.Keys() {
		lines = append(lines, domain.RevenueLine{
			Key:     key,
			Name:    names[key],
			Revenue: FormatMoney(summary.Breakdown[key]),
		})
	}
	return lines
}

type RevenueServiceImpl struct {
	appointmentRepo repository.AppointmentRepository
	affiliationRepo repository.AffiliationRepository
	directoryRepo   repository.DirectoryRepository
	documents       *documentStore
	logger          *zap.Logger
}

func NewRevenueService(
	appointmentRepo repository.AppointmentRepository,
	affiliationRepo repository.AffiliationRepository,
	directoryRepo repository.DirectoryRepository,
	documents *documentStore,
	logger *zap.Logger,
) *RevenueServiceImpl {
	return &RevenueServiceImpl{
		appointmentRepo: appointmentRepo,
		affiliationRepo: affiliationRepo,
		directoryRepo:   directoryRepo,
		documents:       documents,
		logger:          logger,
	}
}

func (s *RevenueServiceImpl) DoctorEarnings(ctx context.Context, doctorID string) (*domain.RevenueReport, error) {
	appointments, err := s.appointmentRepo.List(ctx, domain.AppointmentFilter{
		DoctorID: &doctorID,
		Status:   PointerTo(domain.AppointmentStatusCompleted),
	})
	if err != nil {
		s.logger.Error("ошибка получения записей врача", zap.String("doctor_id", doctorID), zap.Error(err))
		return nil, fmt.Errorf("ошибка расчета дохода врача: %w", err)
	}

	summary := AggregateRevenue(appointments, nil, domain.RevenueScope{
		GroupBy: domain.RevenueGroupHospital,
		Share:   domain.RevenueShareDoctor,
	})

	names := make(map[string]string, len(summary.Breakdown))
	for hospitalID := range summary.Breakdown {
		hospital, err := s.directoryRepo.GetHospital(ctx, hospitalID)
		if err != nil {
			return nil, fmt.Errorf("ошибка получения больницы: %w", err)
		}
		names[hospitalID] = domain.UnknownHospitalName
		if hospital != nil {
			names[hospitalID] = hospital.Name
		}
	}

	return &domain.RevenueReport{
		TotalConsultations: summary.TotalConsultations,
		TotalRevenue:       FormatMoney(summary.TotalRevenue),
		Breakdown:          revenueLines(summary, names),
	}, nil
}

func (s *RevenueServiceImpl) HospitalStats(ctx context.Context, hospitalID string) (*domain.HospitalDashboard, error) {
	hospital, err := s.directoryRepo.GetHospital(ctx, hospitalID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения больницы: %w", err)
	}
	if hospital == nil {
		return nil, domain.NewNotFoundError("больница", hospitalID)
	}

	appointments, err := s.appointmentRepo.List(ctx, domain.AppointmentFilter{
		HospitalID: &hospitalID,
		Status:     PointerTo(domain.AppointmentStatusCompleted),
	})
	if err != nil {
		s.logger.Error("ошибка получения записей больницы", zap.String("hospital_id", hospitalID), zap.Error(err))
		return nil, fmt.Errorf("ошибка расчета дохода больницы: %w", err)
	}

	affiliations, err := s.affiliationRepo.List(ctx, domain.AffiliationFilter{HospitalID: &hospitalID})
	if err != nil {
		s.logger.Error("ошибка получения аффилиаций больницы", zap.String("hospital_id", hospitalID), zap.Error(err))
		return nil, fmt.Errorf("ошибка расчета дохода больницы: %w", err)
	}

	byDoctor := AggregateRevenue(appointments, affiliations, domain.RevenueScope{
		GroupBy: domain.RevenueGroupDoctor,
		Share:   domain.RevenueShareDoctor,
	})
	byDepartment := AggregateRevenue(appointments, affiliations, domain.RevenueScope{
		GroupBy: domain.RevenueGroupDepartment,
		Share:   domain.RevenueShareHospital,
	})

	doctorNames := make(map[string]string, len(byDoctor.Breakdown))
	for doctorID := range byDoctor.Breakdown {
		profile, err := s.directoryRepo.GetDoctorProfile(ctx, doctorID)
		if err != nil {
			return nil, fmt.Errorf("ошибка получения профиля врача: %w", err)
		}
		doctorNames[doctorID] = domain.UnknownDoctorName
		if profile != nil {
			doctorNames[doctorID] = profile.Name
		}
	}

	departmentNames := make(map[string]string, len(byDepartment.Breakdown))
	for departmentID := range byDepartment.Breakdown {
		department, err := s.directoryRepo.GetDepartment(ctx, departmentID)
		if err != nil {
			return nil, fmt.Errorf("ошибка получения отделения: %w", err)
		}
		departmentNames[departmentID] = domain.UnknownDepartmentName
		if department != nil {
			departmentNames[departmentID] = department.Name
		}
	}

	return &domain.HospitalDashboard{
		HospitalID:         hospital.ID,
		HospitalName:       hospital.Name,
		TotalConsultations: byDepartment.TotalConsultations,
		TotalRevenue:       FormatMoney(byDepartment.TotalRevenue),
		ByDoctor:           revenueLines(byDoctor, doctorNames),
		ByDepartment:       revenueLines(byDepartment, departmentNames),
	}, nil
}

func (s *RevenueServiceImpl) ExportHospitalStats(ctx context.Context, hospitalID string) (*domain.Document, error) {
	dashboard, err := s.HospitalStats(ctx, hospitalID)
	if err != nil {
		return nil, err
	}

	generatedAt := time.Now()
	content, err := report.HospitalRevenueWorkbook(*dashboard, generatedAt)
	if err != nil {
		s.logger.Error("ошибка формирования отчета", zap.String("hospital_id", hospitalID), zap.Error(err))
		return nil, fmt.Errorf("ошибка формирования отчета: %w", err)
	}

	fileName := fmt.Sprintf("hospital-%s-revenue-%s.xlsx", hospitalID, generatedAt.Format("20060102-150405"))
	doc, err := s.documents.publish(ctx, "reports", fileName, xlsxContentType, content)
	if err != nil {
		s.logger.Error("ошибка сохранения отчета", zap.String("hospital_id", hospitalID), zap.Error(err))
		return nil, err
	}

	return doc, nil
}
