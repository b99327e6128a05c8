package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Affiliation binds a doctor to a department of a hospital with a consultation fee.
type Affiliation struct {
	ID              string          `json:"id"`
	DoctorID        string          `json:"doctor_id"`
	HospitalID      string          `json:"hospital_id"`
	DepartmentID    string          `json:"department_id"`
	ConsultationFee decimal.Decimal `json:"consultation_fee"`
	CreatedAt       time.Time       `json:"created_at"`
}

type CreateAffiliationDTO struct {
	HospitalID      string          `json:"hospital_id"`
	DepartmentID    string          `json:"department_id"`
	ConsultationFee decimal.Decimal `json:"consultation_fee"`
}

type AffiliationFilter struct {
	DoctorID   *string `json:"doctor_id"`
	HospitalID *string `json:"hospital_id"`
}

// DoctorOffering is one bookable doctor/hospital/fee combination returned by search.
type DoctorOffering struct {
	DoctorID          string          `json:"doctor_id"`
	DoctorName        string          `json:"doctor_name"`
	Specializations   []string        `json:"specializations"`
	YearsOfExperience int             `json:"years_of_experience"`
	Qualifications    string          `json:"qualifications"`
	AffiliationID     string          `json:"affiliation_id"`
	HospitalID        string          `json:"hospital_id"`
	HospitalName      string          `json:"hospital_name"`
	DepartmentID      string          `json:"department_id"`
	ConsultationFee   decimal.Decimal `json:"consultation_fee"`
	AvailableSlots    []Slot          `json:"available_slots"`
}

type SearchCriteria struct {
	HospitalID     *string    `json:"hospital_id"`
	Specialization string     `json:"specialization"`
	Query          string     `json:"query"`
	Date           *time.Time `json:"date"`
}
