package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"medslot/internal/domain"
)

// memoryStore backs every in-memory repository with one lock, so a slot claim
// and the appointment it produces are applied together.
type memoryStore struct {
	mu sync.RWMutex

	slots        map[string]domain.Slot
	affiliations []domain.Affiliation
	appointments []domain.Appointment
	profiles     map[string]domain.DoctorProfile
	hospitals    map[string]domain.Hospital
	departments  map[string]domain.Department
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		slots:       make(map[string]domain.Slot),
		profiles:    make(map[string]domain.DoctorProfile),
		hospitals:   make(map[string]domain.Hospital),
		departments: make(map[string]domain.Department),
	}
}

type SlotMemoryRepo struct {
	store *memoryStore
}

func (r *SlotMemoryRepo) CreateExclusive(ctx context.Context, doctorID string, build SlotBuilder) (*domain.Slot, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing := r.store.filterSlots(domain.SlotFilter{DoctorID: &doctorID, OnlyUnbooked: true})
	slot, err := build(existing)
	if err != nil {
		return nil, err
	}

	r.store.slots[slot.ID] = slot
	return &slot, nil
}

func (r *SlotMemoryRepo) GetByID(ctx context.Context, id string) (*domain.Slot, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	slot, ok := r.store.slots[id]
	if !ok {
		return nil, nil
	}
	return &slot, nil
}

func (r *SlotMemoryRepo) ListUnbookedByDoctor(ctx context.Context, doctorID string) ([]domain.Slot, error) {
	return r.List(ctx, domain.SlotFilter{DoctorID: &doctorID, OnlyUnbooked: true})
}

func (r *SlotMemoryRepo) List(ctx context.Context, filter domain.SlotFilter) ([]domain.Slot, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.store.filterSlots(filter), nil
}

func (s *memoryStore) filterSlots(filter domain.SlotFilter) []domain.Slot {
	slots := []domain.Slot{}
	for _, slot := range s.slots {
		if filter.DoctorID != nil && slot.DoctorID != *filter.DoctorID {
			continue
		}
		if filter.HospitalID != nil && slot.HospitalID != *filter.HospitalID {
			continue
		}
		if filter.OnlyUnbooked && slot.IsBooked {
			continue
		}
		if filter.StartFrom != nil && slot.StartTime.Before(*filter.StartFrom) {
			continue
		}
		if filter.StartTo != nil && slot.StartTime.After(*filter.StartTo) {
			continue
		}
		slots = append(slots, slot)
	}

	sort.Slice(slots, func(i, j int) bool {
		return slots[i].StartTime.Before(slots[j].StartTime)
	})
	return slots
}

type AffiliationMemoryRepo struct {
	store *memoryStore
}

func (r *AffiliationMemoryRepo) Create(ctx context.Context, affiliation domain.Affiliation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.affiliations = append(r.store.affiliations, affiliation)
	return nil
}

func (r *AffiliationMemoryRepo) GetByID(ctx context.Context, id string) (*domain.Affiliation, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, a := range r.store.affiliations {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, nil
}

func (r *AffiliationMemoryRepo) List(ctx context.Context, filter domain.AffiliationFilter) ([]domain.Affiliation, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	affiliations := []domain.Affiliation{}
	for _, a := range r.store.affiliations {
		if filter.DoctorID != nil && a.DoctorID != *filter.DoctorID {
			continue
		}
		if filter.HospitalID != nil && a.HospitalID != *filter.HospitalID {
			continue
		}
		affiliations = append(affiliations, a)
	}
	return affiliations, nil
}

type AppointmentMemoryRepo struct {
	store *memoryStore
}

func (r *AppointmentMemoryRepo) BookSlot(ctx context.Context, appointment domain.Appointment) (*domain.Appointment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	slot, ok := r.store.slots[appointment.SlotID]
	if !ok {
		return nil, domain.NewNotFoundError("слот", appointment.SlotID)
	}
	if slot.IsBooked {
		return nil, domain.ErrSlotUnavailable
	}

	patientID := appointment.PatientID
	slot.IsBooked = true
	slot.BookedByPatientID = &patientID
	slot.UpdatedAt = appointment.CreatedAt
	r.store.slots[slot.ID] = slot

	appointment.ScheduledAt = slot.StartTime
	appointment.UpdatedAt = appointment.CreatedAt
	r.store.appointments = append(r.store.appointments, appointment)

	return &appointment, nil
}

func (r *AppointmentMemoryRepo) GetByID(ctx context.Context, id string) (*domain.Appointment, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, a := range r.store.appointments {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, nil
}

func (r *AppointmentMemoryRepo) List(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	appointments := []domain.Appointment{}
	for _, a := range r.store.appointments {
		if filter.PatientID != nil && a.PatientID != *filter.PatientID {
			continue
		}
		if filter.DoctorID != nil && a.DoctorID != *filter.DoctorID {
			continue
		}
		if filter.HospitalID != nil && a.HospitalID != *filter.HospitalID {
			continue
		}
		if filter.Status != nil && a.Status != *filter.Status {
			continue
		}
		appointments = append(appointments, a)
	}

	sort.SliceStable(appointments, func(i, j int) bool {
		return appointments[i].ScheduledAt.After(appointments[j].ScheduledAt)
	})
	return appointments, nil
}

func (r *AppointmentMemoryRepo) UpdateStatus(ctx context.Context, id string, from, to domain.AppointmentStatus) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for i, a := range r.store.appointments {
		if a.ID == id && a.Status == from {
			r.store.appointments[i].Status = to
			r.store.appointments[i].UpdatedAt = time.Now()
			return true, nil
		}
	}
	return false, nil
}

type DirectoryMemoryRepo struct {
	store *memoryStore
}

func (r *DirectoryMemoryRepo) UpsertDoctorProfile(ctx context.Context, profile domain.DoctorProfile) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	profile.Specializations = append([]string(nil), profile.Specializations...)
	r.store.profiles[profile.ID] = profile
	return nil
}

func (r *DirectoryMemoryRepo) GetDoctorProfile(ctx context.Context, id string) (*domain.DoctorProfile, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	p, ok := r.store.profiles[id]
	if !ok {
		return nil, nil
	}
	p.Specializations = append([]string(nil), p.Specializations...)
	return &p, nil
}

func (r *DirectoryMemoryRepo) CreateHospital(ctx context.Context, hospital domain.Hospital) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.hospitals[hospital.ID] = hospital
	return nil
}

func (r *DirectoryMemoryRepo) GetHospital(ctx context.Context, id string) (*domain.Hospital, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	h, ok := r.store.hospitals[id]
	if !ok {
		return nil, nil
	}
	return &h, nil
}

func (r *DirectoryMemoryRepo) ListHospitals(ctx context.Context) ([]domain.Hospital, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	hospitals := make([]domain.Hospital, 0, len(r.store.hospitals))
	for _, h := range r.store.hospitals {
		hospitals = append(hospitals, h)
	}
	sort.Slice(hospitals, func(i, j int) bool { return hospitals[i].Name < hospitals[j].Name })
	return hospitals, nil
}

func (r *DirectoryMemoryRepo) CreateDepartment(ctx context.Context, department domain.Department) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.departments[department.ID] = department
	return nil
}

func (r *DirectoryMemoryRepo) GetDepartment(ctx context.Context, id string) (*domain.Department, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	d, ok := r.store.departments[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (r *DirectoryMemoryRepo) ListDepartments(ctx context.Context, hospitalID string) ([]domain.Department, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	departments := []domain.Department{}
	for _, d := range r.store.departments {
		if d.HospitalID == hospitalID {
			departments = append(departments, d)
		}
	}
	sort.Slice(departments, func(i, j int) bool { return departments[i].Name < departments[j].Name })
	return departments, nil
}
