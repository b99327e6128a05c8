package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

type RevenueGroup string

const (
	RevenueGroupDoctor     RevenueGroup = "doctor"
	RevenueGroupDepartment RevenueGroup = "department"
	RevenueGroupHospital   RevenueGroup = "hospital"
)

// RevenueShare selects which amount of an appointment is summed.
type RevenueShare string

const (
	RevenueShareFee      RevenueShare = "fee"
	RevenueShareDoctor   RevenueShare = "doctor"
	RevenueShareHospital RevenueShare = "hospital"
)

func (s RevenueShare) Of(a Appointment) decimal.Decimal {
	switch s {
	case RevenueShareDoctor:
		return a.DoctorRevenue
	case RevenueShareHospital:
		return a.HospitalRevenue
	default:
		return a.FeePaid
	}
}

type RevenueScope struct {
	GroupBy RevenueGroup
	Share   RevenueShare
}

// RevenueSummary holds exact, unrounded sums.
type RevenueSummary struct {
	TotalConsultations int
	TotalRevenue       decimal.Decimal
	Breakdown          map[string]decimal.Decimal
}

// Keys returns breakdown keys in a stable order.
func (s RevenueSummary) Keys() []string {
	keys := make([]string, 0, len(s.Breakdown))
	for k := range s.Breakdown {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type RevenueLine struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	Revenue string `json:"revenue"`
}

type RevenueReport struct {
	TotalConsultations int           `json:"total_consultations"`
	TotalRevenue       string        `json:"total_revenue"`
	Breakdown          []RevenueLine `json:"breakdown"`
}

type HospitalDashboard struct {
	HospitalID         string        `json:"hospital_id"`
	HospitalName       string        `json:"hospital_name"`
	TotalConsultations int           `json:"total_consultations"`
	TotalRevenue       string        `json:"total_revenue"`
	ByDoctor           []RevenueLine `json:"by_doctor"`
	ByDepartment       []RevenueLine `json:"by_department"`
}

// Document is a generated file, kept in object storage when one is configured.
type Document struct {
	FileName string `json:"file_name"`
	URL      string `json:"url,omitempty"`
	Content  []byte `json:"-"`
}
