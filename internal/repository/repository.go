package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.mongodb.org/mongo-driver/mongo"

	"medslot/internal/domain"
)

// PgxPool is the subset of *pgxpool.Pool used by the Postgres repositories.
type PgxPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repositories struct {
	Slot        SlotRepository
	Affiliation AffiliationRepository
	Appointment AppointmentRepository
	Directory   DirectoryRepository
}

func NewRepositories(db PgxPool) *Repositories {
	return &Repositories{
		Slot:        NewSlotRepository(db),
		Affiliation: NewAffiliationRepository(db),
		Appointment: NewAppointmentRepository(db),
		Directory:   NewDirectoryRepository(db),
	}
}

func NewMongoRepositories(db *mongo.Database) *Repositories {
	return &Repositories{
		Slot:        NewSlotMongoRepository(db),
		Affiliation: NewAffiliationMongoRepository(db),
		Appointment: NewAppointmentMongoRepository(db),
		Directory:   NewDirectoryMongoRepository(db),
	}
}

func NewMemoryRepositories() *Repositories {
	store := newMemoryStore()
	return &Repositories{
		Slot:        &SlotMemoryRepo{store: store},
		Affiliation: &AffiliationMemoryRepo{store: store},
		Appointment: &AppointmentMemoryRepo{store: store},
		Directory:   &DirectoryMemoryRepo{store: store},
	}
}

// SlotBuilder derives a new slot from the doctor's current unbooked slots.
type SlotBuilder func(existing []domain.Slot) (domain.Slot, error)

type SlotRepository interface {
	// CreateExclusive serializes registrations per doctor: build sees every
	// unbooked slot of the doctor and its slot is stored only if it returns no error.
	CreateExclusive(ctx context.Context, doctorID string, build SlotBuilder) (*domain.Slot, error)
	GetByID(ctx context.Context, id string) (*domain.Slot, error)
	ListUnbookedByDoctor(ctx context.Context, doctorID string) ([]domain.Slot, error)
	List(ctx context.Context, filter domain.SlotFilter) ([]domain.Slot, error)
}

type AffiliationRepository interface {
	Create(ctx context.Context, affiliation domain.Affiliation) error
	GetByID(ctx context.Context, id string) (*domain.Affiliation, error)
	List(ctx context.Context, filter domain.AffiliationFilter) ([]domain.Affiliation, error)
}

type AppointmentRepository interface {
	// BookSlot claims appointment.SlotID for appointment.PatientID and stores the
	// appointment in one atomic unit. A slot that is already booked yields
	// domain.ErrSlotUnavailable; an unknown slot yields a *domain.NotFoundError.
	BookSlot(ctx context.Context, appointment domain.Appointment) (*domain.Appointment, error)
	GetByID(ctx context.Context, id string) (*domain.Appointment, error)
	List(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, error)
	UpdateStatus(ctx context.Context, id string, from, to domain.AppointmentStatus) (bool, error)
}

type DirectoryRepository interface {
	UpsertDoctorProfile(ctx context.Context, profile domain.DoctorProfile) error
	GetDoctorProfile(ctx context.Context, id string) (*domain.DoctorProfile, error)

	CreateHospital(ctx context.Context, hospital domain.Hospital) error
	GetHospital(ctx context.Context, id string) (*domain.Hospital, error)
	ListHospitals(ctx context.Context) ([]domain.Hospital, error)

	CreateDepartment(ctx context.Context, department domain.Department) error
	GetDepartment(ctx context.Context, id string) (*domain.Department, error)
	ListDepartments(ctx context.Context, hospitalID string) ([]domain.Department, error)
}
