package booking

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Gentaaaa/MedPal/internal/cache"
	"github.com/Gentaaaa/MedPal/internal/models"
)

// Directory resolves users and services. Lookups return (nil, nil) when the
// entity does not exist.
type Directory interface {
	UserByID(ctx context.Context, id string) (*models.User, error)
	ServiceByID(ctx context.Context, id string) (*models.Service, error)
}

// AppointmentStore persists appointments. Create must reject a second active
// appointment for the same (doctorID, date, time) slot with ErrSlotTaken.
type AppointmentStore interface {
	ActiveBySlot(ctx context.Context, doctorID, date, slotTime string) (*models.Appointment, error)
	Create(ctx context.Context, appt *models.Appointment) error
	ByID(ctx context.Context, id string) (*models.Appointment, error)
	Save(ctx context.Context, appt *models.Appointment) error
	Delete(ctx context.Context, id string) error
	ActiveTimes(ctx context.Context, doctorID, date string) ([]string, error)
	MarkSeen(ctx context.Context, patientID string) (int64, error)
	CountUnseen(ctx context.Context, patientID string) (int64, error)
}

// DocumentStore lists a patient's uploaded documents, consumed only to
// enumerate attachment links inside notification bodies.
type DocumentStore interface {
	ByPatient(ctx context.Context, patientID string) ([]models.Document, error)
}

// Notifier delivers a single email. Sends are fire-and-forget: the engine
// never propagates a Notifier failure to its caller.
type Notifier interface {
	Send(to, subject, htmlBody string) error
}

// Actor identifies the authenticated caller of a mutating operation.
type Actor struct {
	ID   string
	Role models.Role
}

// Engine validates booking requests against a doctor's schedule and existing
// bookings, creates appointments, and drives status transitions with their
// notification side effects.
type Engine struct {
	users        Directory
	appointments AppointmentStore
	documents    DocumentStore
	notifier     Notifier
	slots        *cache.SlotCache
	appURL       string
	log          zerolog.Logger

	wg sync.WaitGroup
}

// NewEngine creates a booking engine. slots may be nil to disable the
// taken-slot cache; appURL prefixes document links in notification bodies.
func NewEngine(users Directory, appointments AppointmentStore, documents DocumentStore, notifier Notifier, slots *cache.SlotCache, appURL string, log zerolog.Logger) *Engine {
	return &Engine{
		users:        users,
		appointments: appointments,
		documents:    documents,
		notifier:     notifier,
		slots:        slots,
		appURL:       appURL,
		log:          log,
	}
}

// Wait blocks until all in-flight notification sends have finished. Used for
// graceful shutdown and by tests.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// BookingInput is a booking request. PatientID comes from the authenticated
// caller; the remaining fields from the request payload.
type BookingInput struct {
	PatientID string
	DoctorID  string
	ServiceID string
	Date      string
	Time      string
}

// CreateBooking validates the request against the doctor's schedule and
// existing bookings, persists a pending appointment, and notifies the
// patient, the doctor, and the doctor's owning clinic if any. Nothing is
// persisted when any validation step fails.
func (e *Engine) CreateBooking(ctx context.Context, in BookingInput) (*models.Appointment, error) {
	if in.DoctorID == "" || in.ServiceID == "" || in.Date == "" || in.Time == "" {
		return nil, validationf("doctorId, serviceId, date and time are required")
	}

	doctor, err := e.users.UserByID(ctx, in.DoctorID)
	if err != nil {
		return nil, err
	}
	if doctor == nil || doctor.Role != models.RoleDoctor {
		return nil, notFoundf("doctor not found")
	}

	service, err := e.users.ServiceByID(ctx, in.ServiceID)
	if err != nil {
		return nil, err
	}
	if service == nil {
		return nil, notFoundf("service not found")
	}

	patient, err := e.users.UserByID(ctx, in.PatientID)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, notFoundf("patient not found")
	}

	if err := checkSchedule(doctor.WorkingHours, in.Date, in.Time); err != nil {
		return nil, err
	}

	existing, err := e.appointments.ActiveBySlot(ctx, in.DoctorID, in.Date, in.Time)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, conflictf("this slot is already booked for this doctor")
	}

	appt := &models.Appointment{
		PatientID: in.PatientID,
		DoctorID:  in.DoctorID,
		ServiceID: in.ServiceID,
		Date:      in.Date,
		Time:      in.Time,
		Status:    models.StatusPending,
	}
	if err := e.appointments.Create(ctx, appt); err != nil {
		// The store re-checks the slot inside its own transaction; a
		// concurrent winner surfaces here.
		if errors.Is(err, ErrSlotTaken) {
			return nil, conflictf("this slot is already booked for this doctor")
		}
		return nil, err
	}

	e.invalidateSlots(in.DoctorID, in.Date)

	documents, err := e.documents.ByPatient(ctx, in.PatientID)
	if err != nil {
		// The appointment is committed; treat the document listing like a
		// notification failure and send the emails without links.
		e.log.Warn().Err(err).Str("patientId", in.PatientID).Msg("listing documents for notification failed")
		documents = nil
	}

	e.notifyAsync(patient.Email, bookedPatientSubject, bookedPatientBody(patient, doctor, service, appt))
	e.notifyAsync(doctor.Email, bookedDoctorSubject(patient), bookedStaffBody(patient, service, appt, documents, e.appURL))

	if doctor.ClinicID != "" {
		clinic, err := e.users.UserByID(ctx, doctor.ClinicID)
		if err != nil {
			e.log.Warn().Err(err).Str("clinicId", doctor.ClinicID).Msg("clinic lookup for notification failed")
		} else if clinic != nil {
			e.notifyAsync(clinic.Email, bookedClinicSubject(doctor), bookedStaffBody(patient, service, appt, documents, e.appURL))
		}
	}

	return appt, nil
}

// SetStatus transitions an appointment between pending, approved and
// canceled. Clinic-only. A transition to approved re-validates the stored
// time against the doctor's current schedule; approved and canceled each
// trigger one notification to the patient.
func (e *Engine) SetStatus(ctx context.Context, appointmentID string, newStatus models.AppointmentStatus, acting Actor) (*models.Appointment, error) {
	if acting.Role != models.RoleClinic {
		return nil, forbiddenf("only the clinic can change appointment status")
	}

	if !models.ValidStatus(newStatus) {
		return nil, validationf("invalid status %q", newStatus)
	}

	appt, err := e.appointments.ByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appt == nil {
		return nil, notFoundf("appointment not found")
	}

	doctor, err := e.users.UserByID(ctx, appt.DoctorID)
	if err != nil {
		return nil, err
	}

	if newStatus == models.StatusApproved {
		if doctor == nil || len(doctor.WorkingHours) == 0 {
			return nil, validationf("the doctor's schedule data is missing")
		}
		if err := checkSchedule(doctor.WorkingHours, appt.Date, appt.Time); err != nil {
			return nil, err
		}
	}

	appt.Status = newStatus
	if err := e.appointments.Save(ctx, appt); err != nil {
		return nil, err
	}

	e.invalidateSlots(appt.DoctorID, appt.Date)

	if newStatus == models.StatusApproved || newStatus == models.StatusCanceled {
		patient, err := e.users.UserByID(ctx, appt.PatientID)
		if err != nil || patient == nil {
			e.log.Warn().Err(err).Str("patientId", appt.PatientID).Msg("patient lookup for notification failed")
		} else {
			e.notifyAsync(patient.Email, statusSubject(newStatus), statusBody(doctor, appt, newStatus))
		}
	}

	return appt, nil
}

// SetAttendance marks an appointment as attended. Permitted for the doctor
// the appointment is assigned to, or the clinic that owns that doctor.
func (e *Engine) SetAttendance(ctx context.Context, appointmentID string, acting Actor) (*models.Appointment, error) {
	appt, err := e.manageableAppointment(ctx, appointmentID, acting)
	if err != nil {
		return nil, err
	}

	appt.Attended = true
	if err := e.appointments.Save(ctx, appt); err != nil {
		return nil, err
	}
	return appt, nil
}

// SetPresence records whether the patient showed up. Same policy as
// SetAttendance: the assigned doctor or the owning clinic.
func (e *Engine) SetPresence(ctx context.Context, appointmentID string, isPresent bool, acting Actor) (*models.Appointment, error) {
	appt, err := e.manageableAppointment(ctx, appointmentID, acting)
	if err != nil {
		return nil, err
	}

	appt.IsPresent = isPresent
	if err := e.appointments.Save(ctx, appt); err != nil {
		return nil, err
	}
	return appt, nil
}

// manageableAppointment loads an appointment and checks the doctor/clinic
// management policy shared by SetAttendance and SetPresence.
func (e *Engine) manageableAppointment(ctx context.Context, appointmentID string, acting Actor) (*models.Appointment, error) {
	appt, err := e.appointments.ByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appt == nil {
		return nil, notFoundf("appointment not found")
	}

	switch acting.Role {
	case models.RoleDoctor:
		if acting.ID != appt.DoctorID {
			return nil, forbiddenf("you are not the doctor assigned to this appointment")
		}
	case models.RoleClinic:
		doctor, err := e.users.UserByID(ctx, appt.DoctorID)
		if err != nil {
			return nil, err
		}
		if doctor == nil || doctor.ClinicID != acting.ID {
			return nil, forbiddenf("this appointment does not belong to your clinic")
		}
	default:
		return nil, forbiddenf("you are not authorized for this action")
	}

	return appt, nil
}

// DeleteAppointment removes an appointment. Permitted for the patient who
// booked it, the doctor assigned to it, or any clinic or admin user.
// Associated documents are left in place.
func (e *Engine) DeleteAppointment(ctx context.Context, appointmentID string, acting Actor) error {
	appt, err := e.appointments.ByID(ctx, appointmentID)
	if err != nil {
		return err
	}
	if appt == nil {
		return notFoundf("appointment not found")
	}

	allowed := false
	switch acting.Role {
	case models.RolePatient:
		allowed = acting.ID == appt.PatientID
	case models.RoleDoctor:
		allowed = acting.ID == appt.DoctorID
	case models.RoleClinic, models.RoleAdmin:
		allowed = true
	}
	if !allowed {
		return forbiddenf("you are not authorized to delete this appointment")
	}

	if err := e.appointments.Delete(ctx, appt.ID); err != nil {
		return err
	}

	e.invalidateSlots(appt.DoctorID, appt.Date)
	return nil
}

// ListTakenSlots returns the times already occupied by non-canceled
// appointments for a doctor on a date. Pure read; served through the slot
// cache when one is configured.
func (e *Engine) ListTakenSlots(ctx context.Context, doctorID, date string) ([]string, error) {
	if doctorID == "" || date == "" {
		return nil, validationf("doctorId and date are required")
	}

	if e.slots != nil {
		if times, ok := e.slots.Get(doctorID, date); ok {
			return times, nil
		}
	}

	times, err := e.appointments.ActiveTimes(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}

	if e.slots != nil {
		e.slots.Put(doctorID, date, times)
	}
	return times, nil
}

// MarkSeen flips seenByPatient on all of the patient's appointments and
// returns how many rows changed. Idempotent.
func (e *Engine) MarkSeen(ctx context.Context, patientID string) (int64, error) {
	return e.appointments.MarkSeen(ctx, patientID)
}

// CountUnseen counts the patient's approved or canceled appointments not yet
// seen, used to drive the notification badge.
func (e *Engine) CountUnseen(ctx context.Context, patientID string) (int64, error) {
	return e.appointments.CountUnseen(ctx, patientID)
}

func (e *Engine) invalidateSlots(doctorID, date string) {
	if e.slots != nil {
		e.slots.Invalidate(doctorID, date)
	}
}

// notifyAsync dispatches one email as a detached task. Failures are logged
// and never reach the caller.
func (e *Engine) notifyAsync(to, subject, htmlBody string) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		if err := e.notifier.Send(to, subject, htmlBody); err != nil {
			e.log.Warn().Err(err).Str("to", to).Str("subject", subject).Msg("notification send failed")
		}
	}()
}
