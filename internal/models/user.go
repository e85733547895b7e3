package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role enum
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RoleClinic  Role = "clinic"
	RolePatient Role = "patient"
)

// TimeRange is a single day's working window, both ends as zero-padded
// 24h "HH:MM" strings.
type TimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// WorkingHours maps lowercase full English weekday names ("monday" ...
// "sunday") to that day's working window. A missing key means a day off.
type WorkingHours map[string]TimeRange

// Value serializes the schedule into a JSON column. An empty schedule is
// stored as NULL so "no hours configured" survives the round trip.
func (w WorkingHours) Value() (driver.Value, error) {
	if len(w) == 0 {
		return nil, nil
	}
	return json.Marshal(w)
}

// Scan implements sql.Scanner for the JSON column.
func (w *WorkingHours) Scan(value interface{}) error {
	if value == nil {
		*w = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, w)
	case string:
		return json.Unmarshal([]byte(v), w)
	default:
		return fmt.Errorf("unsupported type for WorkingHours: %T", value)
	}
}

// User represents a user in the system
type User struct {
	BaseModel
	Name             string       `gorm:"size:100;not null" json:"name"`
	Email            string       `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password         string       `gorm:"size:255;not null" json:"-"` // Never send password in JSON
	Role             Role         `gorm:"size:20;default:'patient'" json:"role"`
	DateOfBirth      *time.Time   `json:"dateOfBirth,omitempty"`
	ClinicID         string       `gorm:"size:36;index" json:"clinicId,omitempty"`     // owning clinic for doctors
	DepartmentID     string       `gorm:"size:36;index" json:"departmentId,omitempty"` // doctor's department
	DoctorCode       string       `gorm:"size:20;index" json:"doctorCode,omitempty"`   // login code issued to doctors
	WorkingHours     WorkingHours `gorm:"type:json" json:"workingHours,omitempty"`
	IsVerified       bool         `gorm:"default:false" json:"isVerified"`
	VerificationCode string       `gorm:"size:20" json:"-"`

	// Relations (not always preloaded)
	DoctorAppointments  []Appointment `gorm:"foreignKey:DoctorID" json:"-"`
	PatientAppointments []Appointment `gorm:"foreignKey:PatientID" json:"-"`
	Documents           []Document    `gorm:"foreignKey:PatientID" json:"-"`
}

// UserSanitized represents the user data that is safe to send in API responses.
type UserSanitized struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	Role         Role         `json:"role"`
	DateOfBirth  *time.Time   `json:"dateOfBirth,omitempty"`
	ClinicID     string       `json:"clinicId,omitempty"`
	DepartmentID string       `json:"departmentId,omitempty"`
	DoctorCode   string       `json:"doctorCode,omitempty"`
	WorkingHours WorkingHours `json:"workingHours,omitempty"`
	IsVerified   bool         `json:"isVerified"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// SetPassword hashes a password and sets it on the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the user's hashed password
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// Sanitize creates a UserSanitized struct from a User model, excluding sensitive data.
func (u *User) Sanitize() UserSanitized {
	return UserSanitized{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         u.Role,
		DateOfBirth:  u.DateOfBirth,
		ClinicID:     u.ClinicID,
		DepartmentID: u.DepartmentID,
		DoctorCode:   u.DoctorCode,
		WorkingHours: u.WorkingHours,
		IsVerified:   u.IsVerified,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
