package models

// RoleType defines the role carried in an access token
type RoleType string

const (
	RoleAdmin    RoleType = "admin"
	RoleOperator RoleType = "operator"
)

// Gender is the binary gender code used on admission forms
type Gender string

const (
	GenderMale   Gender = "L" // laki-laki
	GenderFemale Gender = "P" // perempuan
)

// IsValid reports whether g is one of the known gender codes
func (g Gender) IsValid() bool {
	return g == GenderMale || g == GenderFemale
}

// AdmissionStatus is the selection outcome of a candidate
type AdmissionStatus string

const (
	StatusPending  AdmissionStatus = "pending"
	StatusAccepted AdmissionStatus = "accepted"
	StatusRejected AdmissionStatus = "rejected"
)

// IsValid reports whether s is one of the known admission statuses
func (s AdmissionStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected:
		return true
	}
	return false
}
