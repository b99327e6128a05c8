package domain

import (
	"time"
)

// Slot is a doctor's availability window at one hospital. Once booked it is never released.
type Slot struct {
	ID                string    `json:"id"`
	DoctorID          string    `json:"doctor_id"`
	HospitalID        string    `json:"hospital_id"`
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	IsBooked          bool      `json:"is_booked"`
	BookedByPatientID *string   `json:"booked_by_patient_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Overlaps reports whether the half-open intervals [start, end) and the slot intersect.
// Touching boundaries do not overlap.
func (s Slot) Overlaps(start, end time.Time) bool {
	return start.Before(s.EndTime) && end.After(s.StartTime)
}

type SlotView struct {
	Slot
	HospitalName string `json:"hospital_name,omitempty"`
}

type RegisterSlotDTO struct {
	HospitalID string    `json:"hospital_id" binding:"required"`
	StartTime  time.Time `json:"start_time" binding:"required"`
	EndTime    time.Time `json:"end_time" binding:"required"`
}

type SlotFilter struct {
	DoctorID     *string    `json:"doctor_id"`
	HospitalID   *string    `json:"hospital_id"`
	OnlyUnbooked bool       `json:"only_unbooked"`
	StartFrom    *time.Time `json:"start_from"`
	StartTo      *time.Time `json:"start_to"`
}
