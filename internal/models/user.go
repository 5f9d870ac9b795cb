package models

import "strings"

// Role distinguishes the two record kinds. Every operation that touches a
// user record carries the role explicitly instead of probing collections.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
)

func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RolePatient:
		return RolePatient, true
	case RoleDoctor:
		return RoleDoctor, true
	}
	return "", false
}

// NormalizeEmail case-normalizes the identity key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HealthDetails is the patient's health-metric snapshot. Zone is derived by
// an external classifier and only stored here.
type HealthDetails struct {
	Zone               string  `bson:"zone" json:"zone"`
	BloodGlucoseLevels float64 `bson:"bloodGlucoseLevels" json:"bloodGlucoseLevels"`
	BMI                float64 `bson:"bmi" json:"bmi"`
	BloodPressure      string  `bson:"bloodPressure" json:"bloodPressure"`
	InsulinDosage      float64 `bson:"insulinDosage" json:"insulinDosage"`
}

type Patient struct {
	Email         string        `bson:"email" json:"email"`
	Name          string        `bson:"name" json:"name"`
	DOB           string        `bson:"dob" json:"dob"`
	Gender        string        `bson:"gender" json:"gender"`
	PasswordHash  string        `bson:"password" json:"-"`
	Pincode       int           `bson:"pincode" json:"pincode"`
	Appointments  []Appointment `bson:"appointments" json:"appointments"`
	HealthDetails HealthDetails `bson:"health_details" json:"health_details"`
}

// PatientLink is the membership fact recorded on a doctor the first time a
// patient books with them. Keyed by email; appending is idempotent.
type PatientLink struct {
	Email string `bson:"email" json:"email"`
	Name  string `bson:"name" json:"name"`
}

type Doctor struct {
	Email        string        `bson:"email" json:"email"`
	Name         string        `bson:"name" json:"name"`
	DOB          string        `bson:"dob" json:"dob"`
	Gender       string        `bson:"gender" json:"gender"`
	PasswordHash string        `bson:"password" json:"-"`
	Pincode      int           `bson:"pincode" json:"pincode"`
	Experience   int           `bson:"experience" json:"experience"`
	LicenseKey   string        `bson:"medical_certificate_key" json:"-"`
	Patients     []PatientLink `bson:"patients" json:"patients"`
	Appointments []Appointment `bson:"appointments" json:"appointments"`
}

// PublicProfile strips credential material before the patient leaves the
// service boundary.
func (p *Patient) PublicProfile() Patient {
	out := *p
	out.PasswordHash = ""
	return out
}

// PublicProfile strips the password hash and the license artifact reference,
// matching the "-password -medicalCertificate" projection of the portal.
func (d *Doctor) PublicProfile() Doctor {
	out := *d
	out.PasswordHash = ""
	out.LicenseKey = ""
	return out
}
