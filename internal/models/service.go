package models

// Service is a bookable medical service offered within a department.
// Immutable reference data during booking.
type Service struct {
	BaseModel
	Name         string  `gorm:"size:100;not null" json:"name"`
	Price        float64 `json:"price"`
	DepartmentID string  `gorm:"size:36;index" json:"departmentId"`

	// Relations
	Department Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
}
