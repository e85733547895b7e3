package models

// VisitReport is the treating doctor's write-up of a completed appointment.
// Created once per appointment.
type VisitReport struct {
	BaseModel
	AppointmentID  string `gorm:"size:36;index" json:"appointmentId"`
	DoctorID       string `gorm:"size:36;index" json:"doctorId"`
	PatientID      string `gorm:"size:36;index" json:"patientId"`
	Diagnosis      string `gorm:"type:text" json:"diagnosis"`
	Recommendation string `gorm:"type:text" json:"recommendation"`
	Temperature    string `gorm:"size:20" json:"temperature"`
	BloodPressure  string `gorm:"size:20" json:"bloodPressure"`
	Symptoms       string `gorm:"type:text" json:"symptoms"`

	// Relations
	Appointment Appointment `gorm:"foreignKey:AppointmentID" json:"-"`
	Doctor      User        `gorm:"foreignKey:DoctorID" json:"-"`
	Patient     User        `gorm:"foreignKey:PatientID" json:"-"`
}
