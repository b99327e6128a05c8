package domain

import (
	"time"
)

type DoctorProfile struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Specializations   []string  `json:"specializations"`
	YearsOfExperience int       `json:"years_of_experience"`
	Qualifications    string    `json:"qualifications"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// HasSpecialization is an exact, case-sensitive membership test.
func (p DoctorProfile) HasSpecialization(name string) bool {
	for _, s := range p.Specializations {
		if s == name {
			return true
		}
	}
	return false
}

type UpsertDoctorProfileDTO struct {
	Name              string `json:"name" binding:"required"`
	Specializations   string `json:"specializations" binding:"required"`
	YearsOfExperience int    `json:"years_of_experience" binding:"gte=0"`
	Qualifications    string `json:"qualifications"`
}

// Names shown for directory entries that cannot be resolved.
const (
	UnknownHospitalName   = "Неизвестная больница"
	UnknownDoctorName     = "Неизвестный врач"
	UnknownDepartmentName = "Неизвестное отделение"
)

type Hospital struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateHospitalDTO struct {
	Name     string `json:"name" binding:"required"`
	Location string `json:"location"`
}

type Department struct {
	ID         string    `json:"id"`
	HospitalID string    `json:"hospital_id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
}

type CreateDepartmentDTO struct {
	Name string `json:"name" binding:"required"`
}
