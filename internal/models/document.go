package models

// Document is an uploaded patient file. It may be attached to at most one
// appointment, or exist unattached as a general upload.
type Document struct {
	BaseModel
	Title         string `gorm:"size:255;not null" json:"title"`
	FileURL       string `gorm:"size:512;not null" json:"fileUrl"`
	PatientID     string `gorm:"size:36;index" json:"patientId"`
	DoctorID      string `gorm:"size:36;index" json:"doctorId,omitempty"`
	AppointmentID string `gorm:"size:36;index" json:"appointmentId,omitempty"`
}
