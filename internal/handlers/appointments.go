package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Gentaaaa/MedPal/internal/booking"
	"github.com/Gentaaaa/MedPal/internal/middleware"
	"github.com/Gentaaaa/MedPal/internal/models"
	"github.com/Gentaaaa/MedPal/internal/report"
	"github.com/Gentaaaa/MedPal/internal/utils"
)

// AppointmentHandler handles appointment related requests.
type AppointmentHandler struct {
	DB     *gorm.DB
	Engine *booking.Engine
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(db *gorm.DB, engine *booking.Engine) *AppointmentHandler {
	return &AppointmentHandler{DB: db, Engine: engine}
}

// CreateAppointmentRequest represents the request body for booking an appointment.
type CreateAppointmentRequest struct {
	DoctorID  string `json:"doctorId" binding:"required"`
	ServiceID string `json:"serviceId" binding:"required"`
	Date      string `json:"date" binding:"required"`
	Time      string `json:"time" binding:"required"`
}

// CreateAppointment books a slot for the authenticated patient.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var req CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	patientID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	appt, err := h.Engine.CreateBooking(c.Request.Context(), booking.BookingInput{
		PatientID: patientID,
		DoctorID:  req.DoctorID,
		ServiceID: req.ServiceID,
		Date:      req.Date,
		Time:      req.Time,
	})
	if err != nil {
		utils.EngineError(c, err)
		return
	}

	utils.Created(c, "Appointment booked successfully", appt)
}

// UpdateStatusRequest represents the request body for a status transition.
type UpdateStatusRequest struct {
	Status models.AppointmentStatus `json:"status" binding:"required"`
}

// UpdateAppointmentStatus transitions an appointment's status. Clinic only;
// the engine enforces the role and re-validates the schedule on approval.
func (h *AppointmentHandler) UpdateAppointmentStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	actor, exists := middleware.GetActorFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	appt, err := h.Engine.SetStatus(c.Request.Context(), c.Param("id"), req.Status, actor)
	if err != nil {
		utils.EngineError(c, err)
		return
	}

	utils.Success(c, "Appointment status updated successfully", appt)
}

// GetMyAppointments lists the authenticated patient's appointments.
func (h *AppointmentHandler) GetMyAppointments(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var appointments []models.Appointment
	err := h.DB.Preload("Doctor").Preload("Service").
		Where("patient_id = ?", userID).
		Order("date desc, time desc").
		Find(&appointments).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments")
		return
	}

	utils.Success(c, "Appointments fetched successfully", appointmentViews(appointments))
}

// GetDoctorAppointments lists the authenticated doctor's non-canceled
// appointments with their attached documents.
func (h *AppointmentHandler) GetDoctorAppointments(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var appointments []models.Appointment
	err := h.DB.Preload("Patient").Preload("Service").Preload("Documents").
		Where("doctor_id = ? AND status <> ?", userID, models.StatusCanceled).
		Order("date desc, time desc").
		Find(&appointments).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments")
		return
	}

	utils.Success(c, "Appointments fetched successfully", appointmentViews(appointments))
}

// GetClinicAppointments lists every appointment of the clinic's doctors,
// each with the patient's stored documents.
func (h *AppointmentHandler) GetClinicAppointments(c *gin.Context) {
	clinicID, _ := middleware.GetUserIDFromContext(c)

	var doctorIDs []string
	err := h.DB.Model(&models.User{}).
		Where("role = ? AND clinic_id = ?", models.RoleDoctor, clinicID).
		Pluck("id", &doctorIDs).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch clinic doctors")
		return
	}

	var appointments []models.Appointment
	if len(doctorIDs) > 0 {
		err = h.DB.Preload("Patient").Preload("Doctor").Preload("Service").
			Where("doctor_id IN ?", doctorIDs).
			Order("date desc, time desc").
			Find(&appointments).Error
		if err != nil {
			utils.InternalServerError(c, "Failed to fetch appointments")
			return
		}
	}

	views := make([]AppointmentView, 0, len(appointments))
	for _, appt := range appointments {
		view := newAppointmentView(appt)
		var documents []models.Document
		if err := h.DB.Where("patient_id = ?", appt.PatientID).Find(&documents).Error; err == nil {
			view.PatientDocuments = documents
		}
		views = append(views, view)
	}

	utils.Success(c, "Appointments fetched successfully", views)
}

// GetTakenSlots returns the occupied times for a doctor on a date. Public;
// the UI uses it to gray out slots before submission.
func (h *AppointmentHandler) GetTakenSlots(c *gin.Context) {
	times, err := h.Engine.ListTakenSlots(c.Request.Context(), c.Query("doctorId"), c.Query("date"))
	if err != nil {
		utils.EngineError(c, err)
		return
	}
	if times == nil {
		times = []string{}
	}
	utils.Success(c, "Taken slots fetched successfully", times)
}

// MarkSeen flips seenByPatient on all of the caller's appointments.
func (h *AppointmentHandler) MarkSeen(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	if _, err := h.Engine.MarkSeen(c.Request.Context(), userID); err != nil {
		utils.EngineError(c, err)
		return
	}
	utils.Success(c, "All notifications marked as seen", nil)
}

// GetUnseenCount returns the caller's notification badge count.
func (h *AppointmentHandler) GetUnseenCount(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	count, err := h.Engine.CountUnseen(c.Request.Context(), userID)
	if err != nil {
		utils.EngineError(c, err)
		return
	}
	utils.Success(c, "Unseen count fetched successfully", gin.H{"count": count})
}

// DeleteAppointment removes an appointment, subject to the ownership policy.
func (h *AppointmentHandler) DeleteAppointment(c *gin.Context) {
	actor, exists := middleware.GetActorFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	if err := h.Engine.DeleteAppointment(c.Request.Context(), c.Param("id"), actor); err != nil {
		utils.EngineError(c, err)
		return
	}
	utils.Success(c, "Appointment deleted successfully", nil)
}

// MarkAttended marks an appointment as attended.
func (h *AppointmentHandler) MarkAttended(c *gin.Context) {
	actor, exists := middleware.GetActorFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	appt, err := h.Engine.SetAttendance(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		utils.EngineError(c, err)
		return
	}
	utils.Success(c, "Appointment marked as attended", appt)
}

// SetPresenceRequest represents the request body for the presence flag. The
// pointer keeps strict binding: a missing or non-boolean value is a 400.
type SetPresenceRequest struct {
	IsPresent *bool `json:"isPresent" binding:"required"`
}

// SetPresence records whether the patient showed up.
func (h *AppointmentHandler) SetPresence(c *gin.Context) {
	var req SetPresenceRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	actor, exists := middleware.GetActorFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	appt, err := h.Engine.SetPresence(c.Request.Context(), c.Param("id"), *req.IsPresent, actor)
	if err != nil {
		utils.EngineError(c, err)
		return
	}
	utils.Success(c, "Presence updated successfully", appt)
}

// GetAppointmentPDF streams a PDF summary of the appointment.
func (h *AppointmentHandler) GetAppointmentPDF(c *gin.Context) {
	var appt models.Appointment
	if err := h.DB.First(&appt, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error")
		}
		return
	}

	var doctor, patient models.User
	var service models.Service
	if err := h.DB.First(&doctor, "id = ?", appt.DoctorID).Error; err != nil {
		utils.InternalServerError(c, "Failed to load appointment details")
		return
	}
	if err := h.DB.First(&patient, "id = ?", appt.PatientID).Error; err != nil {
		utils.InternalServerError(c, "Failed to load appointment details")
		return
	}
	if err := h.DB.First(&service, "id = ?", appt.ServiceID).Error; err != nil {
		utils.InternalServerError(c, "Failed to load appointment details")
		return
	}

	pdf, err := report.AppointmentSummary(&appt, &doctor, &patient, &service)
	if err != nil {
		utils.InternalServerError(c, "Failed to generate report")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="report-`+appt.ID+`.pdf"`)
	c.Data(200, "application/pdf", pdf)
}

// AppointmentView is an appointment plus the sanitized related entities the
// UI lists alongside it.
type AppointmentView struct {
	models.Appointment
	Patient          *models.UserSanitized `json:"patient,omitempty"`
	Doctor           *models.UserSanitized `json:"doctor,omitempty"`
	ServiceName      string                `json:"serviceName,omitempty"`
	PatientDocuments []models.Document     `json:"patientDocuments,omitempty"`
}

func newAppointmentView(appt models.Appointment) AppointmentView {
	view := AppointmentView{Appointment: appt, ServiceName: appt.Service.Name}
	if appt.Patient.ID != "" {
		sanitized := appt.Patient.Sanitize()
		view.Patient = &sanitized
	}
	if appt.Doctor.ID != "" {
		sanitized := appt.Doctor.Sanitize()
		view.Doctor = &sanitized
	}
	return view
}

func appointmentViews(appointments []models.Appointment) []AppointmentView {
	views := make([]AppointmentView, 0, len(appointments))
	for _, appt := range appointments {
		views = append(views, newAppointmentView(appt))
	}
	return views
}
