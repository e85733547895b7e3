package models

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending  AppointmentStatus = "pending"
	StatusApproved AppointmentStatus = "approved"
	StatusCanceled AppointmentStatus = "canceled"
)

// ValidStatus reports whether s is one of the known appointment statuses.
func ValidStatus(s AppointmentStatus) bool {
	switch s {
	case StatusPending, StatusApproved, StatusCanceled:
		return true
	}
	return false
}

// Appointment represents a booked slot with a doctor. Date carries no time
// component ("YYYY-MM-DD") and Time is a zero-padded 24h "HH:MM" string; the
// pair plus DoctorID identifies a slot, which may hold at most one
// non-canceled appointment.
type Appointment struct {
	BaseModel
	PatientID     string            `gorm:"size:36;index" json:"patientId"`
	DoctorID      string            `gorm:"size:36;index:idx_slot" json:"doctorId"`
	ServiceID     string            `gorm:"size:36;index" json:"serviceId"`
	Date          string            `gorm:"size:10;index:idx_slot" json:"date"`
	Time          string            `gorm:"size:5;index:idx_slot" json:"time"`
	Status        AppointmentStatus `gorm:"size:20;default:'pending'" json:"status"`
	SeenByPatient bool              `gorm:"default:false" json:"seenByPatient"`
	Attended      bool              `gorm:"default:false" json:"attended"`
	IsPresent     bool              `gorm:"default:false" json:"isPresent"`

	// Relations
	Patient   User       `gorm:"foreignKey:PatientID" json:"-"`
	Doctor    User       `gorm:"foreignKey:DoctorID" json:"-"`
	Service   Service    `gorm:"foreignKey:ServiceID" json:"-"`
	Documents []Document `gorm:"foreignKey:AppointmentID" json:"documents,omitempty"`
}
