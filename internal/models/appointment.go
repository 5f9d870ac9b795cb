package models

// AppointmentStatus is the lifecycle state of an appointment.
// Cancelled is terminal: a cancelled appointment is removed from both owner
// records, never kept as a struck-through entry.
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "Pending"
	StatusConfirmed AppointmentStatus = "Confirmed"
	StatusCancelled AppointmentStatus = "Cancelled"
)

// Appointment is embedded, denormalized, under both the patient's and the
// doctor's record. The two copies must be identical at rest; AppointmentID
// is the join key between them.
type Appointment struct {
	AppointmentID string            `bson:"appointment_id" json:"appointment_id"`
	PatientEmail  string            `bson:"patient_email" json:"patient_email"`
	PatientName   string            `bson:"patient_name" json:"patient_name"`
	DoctorEmail   string            `bson:"doctor_email" json:"doctor_email"`
	DoctorName    string            `bson:"doctor_name" json:"doctor_name"`
	Date          string            `bson:"appointment_date" json:"appointment_date"`
	Time          string            `bson:"appointment_time" json:"appointment_time"`
	Status        AppointmentStatus `bson:"status" json:"status"`
}
