package models

// Department groups a clinic's services and doctors
type Department struct {
	BaseModel
	Name     string `gorm:"size:100;not null" json:"name"`
	ClinicID string `gorm:"size:36;index" json:"clinicId"`

	// Relations
	Clinic   User      `gorm:"foreignKey:ClinicID" json:"-"`
	Services []Service `gorm:"foreignKey:DepartmentID" json:"services,omitempty"`
}
