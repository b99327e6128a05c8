package domain

type UserRole string

const (
	UserRolePatient       UserRole = "patient"
	UserRoleDoctor        UserRole = "doctor"
	UserRoleHospitalAdmin UserRole = "hospital_admin"
)

func (r UserRole) IsValid() bool {
	return r == UserRolePatient || r == UserRoleDoctor || r == UserRoleHospitalAdmin
}
