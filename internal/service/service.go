package service

import (
	"context"

	"go.uber.org/zap"

	"medslot/config"
	"medslot/internal/domain"
	"medslot/internal/repository"
	"medslot/internal/storage"
)

type Deps struct {
	Repos       *repository.Repositories
	Logger      *zap.Logger
	Config      *config.Config
	FileStorage storage.FileStorage
}

type Services struct {
	Auth         AuthService
	Directory    DirectoryService
	Availability AvailabilityService
	Affiliation  AffiliationService
	Search       SearchService
	Booking      BookingService
	Revenue      RevenueService
}

func NewServices(deps Deps) *Services {
	documents := newDocumentStore(deps.FileStorage, deps.Config.S3.PresignTTL)

	return &Services{
		Auth:         NewAuthService(deps.Config.JWT, deps.Logger),
		Directory:    NewDirectoryService(deps.Repos.Directory, deps.Logger),
		Availability: NewAvailabilityService(deps.Repos.Slot, deps.Repos.Directory, deps.Logger),
		Affiliation:  NewAffiliationService(deps.Repos.Affiliation, deps.Repos.Directory, deps.Logger),
		Search:       NewSearchService(deps.Repos.Affiliation, deps.Repos.Slot, deps.Repos.Directory, deps.Config.Location(), deps.Logger),
		Booking:      NewBookingService(deps.Repos.Appointment, deps.Repos.Slot, deps.Repos.Affiliation, deps.Repos.Directory, documents, deps.Logger),
		Revenue:      NewRevenueService(deps.Repos.Appointment, deps.Repos.Affiliation, deps.Repos.Directory, documents, deps.Logger),
	}
}

type AuthService interface {
	IssueAccessToken(userID string, role domain.UserRole) (*domain.Tokens, error)
	ParseToken(ctx context.Context, token string) (*domain.Caller, error)
}

type DirectoryService interface {
	CreateHospital(ctx context.Context, dto domain.CreateHospitalDTO) (*domain.Hospital, error)
	GetHospital(ctx context.Context, id string) (*domain.Hospital, error)
	ListHospitals(ctx context.Context) ([]domain.Hospital, error)
	CreateDepartment(ctx context.Context, hospitalID string, dto domain.CreateDepartmentDTO) (*domain.Department, error)
	ListDepartments(ctx context.Context, hospitalID string) ([]domain.Department, error)
	UpsertDoctorProfile(ctx context.Context, doctorID string, dto domain.UpsertDoctorProfileDTO) (*domain.DoctorProfile, error)
	GetDoctorProfile(ctx context.Context, doctorID string) (*domain.DoctorProfile, error)
}

type AvailabilityService interface {
	Register(ctx context.Context, doctorID string, dto domain.RegisterSlotDTO) (*domain.Slot, error)
	ListByDoctor(ctx context.Context, doctorID string) ([]domain.SlotView, error)
}

type AffiliationService interface {
	Create(ctx context.Context, doctorID string, dto domain.CreateAffiliationDTO) (*domain.Affiliation, error)
	List(ctx context.Context, filter domain.AffiliationFilter) ([]domain.Affiliation, error)
}

type SearchService interface {
	Search(ctx context.Context, criteria domain.SearchCriteria) ([]domain.DoctorOffering, error)
}

type BookingService interface {
	Book(ctx context.Context, patientID string, dto domain.BookSlotDTO) (*domain.Appointment, error)
	GetByID(ctx context.Context, id string) (*domain.Appointment, error)
	Complete(ctx context.Context, id string) (*domain.Appointment, error)
	ListForPatient(ctx context.Context, patientID string) ([]domain.Appointment, error)
	Receipt(ctx context.Context, id string) (*domain.Document, error)
}

type RevenueService interface {
	DoctorEarnings(ctx context.Context, doctorID string) (*domain.RevenueReport, error)
	HospitalStats(ctx context.Context, hospitalID string) (*domain.HospitalDashboard, error)
	ExportHospitalStats(ctx context.Context, hospitalID string) (*domain.Document, error)
}

func PointerTo[T any](v T) *T {
	return &v
}
