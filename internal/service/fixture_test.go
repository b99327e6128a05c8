package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"medslot/internal/domain"
	"medslot/internal/repository"
)

var baseTime = time.Date(2030, time.March, 10, 9, 0, 0, 0, time.UTC)

type fixture struct {
	repos        *repository.Repositories
	directory    *DirectoryServiceImpl
	availability *AvailabilityServiceImpl
	affiliation  *AffiliationServiceImpl
	search       *SearchServiceImpl
	booking      *BookingServiceImpl
	revenue      *RevenueServiceImpl
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repos := repository.NewMemoryRepositories()
	logger := zap.NewNop()
	documents := newDocumentStore(nil, 0)

	return &fixture{
		repos:        repos,
		directory:    NewDirectoryService(repos.Directory, logger),
		availability: NewAvailabilityService(repos.Slot, repos.Directory, logger),
		affiliation:  NewAffiliationService(repos.Affiliation, repos.Directory, logger),
		search:       NewSearchService(repos.Affiliation, repos.Slot, repos.Directory, time.UTC, logger),
		booking:      NewBookingService(repos.Appointment, repos.Slot, repos.Affiliation, repos.Directory, documents, logger),
		revenue:      NewRevenueService(repos.Appointment, repos.Affiliation, repos.Directory, documents, logger),
	}
}

func (f *fixture) hospital(t *testing.T, name string) *domain.Hospital {
	t.Helper()
	h, err := f.directory.CreateHospital(context.Background(), domain.CreateHospitalDTO{Name: name, Location: "Москва"})
	require.NoError(t, err)
	return h
}

func (f *fixture) department(t *testing.T, hospitalID, name string) *domain.Department {
	t.Helper()
	d, err := f.directory.CreateDepartment(context.Background(), hospitalID, domain.CreateDepartmentDTO{Name: name})
	require.NoError(t, err)
	return d
}

func (f *fixture) doctor(t *testing.T, id, name, specializations string) *domain.DoctorProfile {
	t.Helper()
	p, err := f.directory.UpsertDoctorProfile(context.Background(), id, domain.UpsertDoctorProfileDTO{
		Name:              name,
		Specializations:   specializations,
		YearsOfExperience: 10,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) affiliate(t *testing.T, doctorID, hospitalID, departmentID, fee string) *domain.Affiliation {
	t.Helper()
	a, err := f.affiliation.Create(context.Background(), doctorID, domain.CreateAffiliationDTO{
		HospitalID:      hospitalID,
		DepartmentID:    departmentID,
		ConsultationFee: decimal.RequireFromString(fee),
	})
	require.NoError(t, err)
	return a
}

func (f *fixture) slot(t *testing.T, doctorID, hospitalID string, start time.Time, d time.Duration) *domain.Slot {
	t.Helper()
	s, err := f.availability.Register(context.Background(), doctorID, domain.RegisterSlotDTO{
		HospitalID: hospitalID,
		StartTime:  start,
		EndTime:    start.Add(d),
	})
	require.NoError(t, err)
	return s
}

// clinic seeds one hospital with a cardiology department and an affiliated doctor.
type clinic struct {
	hospital    *domain.Hospital
	department  *domain.Department
	doctor      *domain.DoctorProfile
	affiliation *domain.Affiliation
}

func (f *fixture) clinic(t *testing.T, fee string) clinic {
	t.Helper()
	h := f.hospital(t, "Городская больница №1")
	d := f.department(t, h.ID, "Cardiology")
	doc := f.doctor(t, "doctor-1", "Иван Петров", "Cardiology, Therapy")
	a := f.affiliate(t, doc.ID, h.ID, d.ID, fee)
	return clinic{hospital: h, department: d, doctor: doc, affiliation: a}
}
