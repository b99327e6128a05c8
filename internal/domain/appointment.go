package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type AppointmentStatus string

const (
	AppointmentStatusBooked    AppointmentStatus = "booked"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	// Reserved; nothing transitions into it yet.
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

type Appointment struct {
	ID              string            `json:"id"`
	PatientID       string            `json:"patient_id"`
	DoctorID        string            `json:"doctor_id"`
	HospitalID      string            `json:"hospital_id"`
	SlotID          string            `json:"slot_id"`
	ScheduledAt     time.Time         `json:"scheduled_at"`
	FeePaid         decimal.Decimal   `json:"fee_paid"`
	DoctorRevenue   decimal.Decimal   `json:"doctor_revenue"`
	HospitalRevenue decimal.Decimal   `json:"hospital_revenue"`
	Status          AppointmentStatus `json:"status"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

type BookSlotDTO struct {
	SlotID        string `json:"slot_id" binding:"required"`
	AffiliationID string `json:"affiliation_id"`
}

type AppointmentFilter struct {
	PatientID  *string            `json:"patient_id"`
	DoctorID   *string            `json:"doctor_id"`
	HospitalID *string            `json:"hospital_id"`
	Status     *AppointmentStatus `json:"status"`
}
