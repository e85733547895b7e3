package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Gentaaaa/MedPal/internal/booking"
	"github.com/Gentaaaa/MedPal/internal/models"
)

// Store is the GORM-backed implementation of the booking engine's
// Directory, AppointmentStore and DocumentStore collaborators.
type Store struct {
	db *gorm.DB
}

// New creates a Store on top of an open database handle.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// UserByID returns the user or (nil, nil) when absent.
func (s *Store) UserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ServiceByID returns the service or (nil, nil) when absent.
func (s *Store) ServiceByID(ctx context.Context, id string) (*models.Service, error) {
	var service models.Service
	err := s.db.WithContext(ctx).First(&service, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &service, nil
}

// ActiveBySlot returns the non-canceled appointment occupying a slot, or
// (nil, nil) when the slot is free.
func (s *Store) ActiveBySlot(ctx context.Context, doctorID, date, slotTime string) (*models.Appointment, error) {
	var appt models.Appointment
	err := s.db.WithContext(ctx).
		Where("doctor_id = ? AND date = ? AND time = ? AND status <> ?",
			doctorID, date, slotTime, models.StatusCanceled).
		First(&appt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

// Create inserts a new appointment. The occupancy probe and the insert run
// in one transaction with the probed rows locked, so two concurrent requests
// for the same slot cannot both pass; the loser gets booking.ErrSlotTaken.
func (s *Store) Create(ctx context.Context, appt *models.Appointment) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		err := tx.Model(&models.Appointment{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("doctor_id = ? AND date = ? AND time = ? AND status <> ?",
				appt.DoctorID, appt.Date, appt.Time, models.StatusCanceled).
			Count(&taken).Error
		if err != nil {
			return err
		}
		if taken > 0 {
			return booking.ErrSlotTaken
		}
		return tx.Create(appt).Error
	})
}

// ByID returns the appointment or (nil, nil) when absent.
func (s *Store) ByID(ctx context.Context, id string) (*models.Appointment, error) {
	var appt models.Appointment
	err := s.db.WithContext(ctx).First(&appt, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

// Save persists changes to an existing appointment.
func (s *Store) Save(ctx context.Context, appt *models.Appointment) error {
	return s.db.WithContext(ctx).Save(appt).Error
}

// Delete removes an appointment by id. Documents are not cascaded.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Delete(&models.Appointment{}, "id = ?", id).Error
}

// ActiveTimes lists the times of non-canceled appointments for a doctor on a
// date, ordered for stable output.
func (s *Store) ActiveTimes(ctx context.Context, doctorID, date string) ([]string, error) {
	var times []string
	err := s.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("doctor_id = ? AND date = ? AND status <> ?", doctorID, date, models.StatusCanceled).
		Order("time asc").
		Pluck("time", &times).Error
	if err != nil {
		return nil, err
	}
	return times, nil
}

// MarkSeen flips seenByPatient on all of a patient's appointments.
func (s *Store) MarkSeen(ctx context.Context, patientID string) (int64, error) {
	result := s.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("patient_id = ? AND seen_by_patient = ?", patientID, false).
		Update("seen_by_patient", true)
	return result.RowsAffected, result.Error
}

// CountUnseen counts approved or canceled appointments the patient has not
// seen yet.
func (s *Store) CountUnseen(ctx context.Context, patientID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("patient_id = ? AND seen_by_patient = ? AND status IN ?",
			patientID, false, []models.AppointmentStatus{models.StatusApproved, models.StatusCanceled}).
		Count(&count).Error
	return count, err
}

// ByPatient lists a patient's uploaded documents.
func (s *Store) ByPatient(ctx context.Context, patientID string) ([]models.Document, error) {
	var documents []models.Document
	err := s.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("created_at asc").
		Find(&documents).Error
	if err != nil {
		return nil, err
	}
	return documents, nil
}
