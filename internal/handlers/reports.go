package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Gentaaaa/MedPal/internal/mailer"
	"github.com/Gentaaaa/MedPal/internal/middleware"
	"github.com/Gentaaaa/MedPal/internal/models"
	"github.com/Gentaaaa/MedPal/internal/report"
	"github.com/Gentaaaa/MedPal/internal/utils"
)

// ReportHandler handles visit report creation, listings and PDF export.
type ReportHandler struct {
	DB     *gorm.DB
	Mailer *mailer.Mailer
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(db *gorm.DB, m *mailer.Mailer) *ReportHandler {
	return &ReportHandler{DB: db, Mailer: m}
}

// CreateReportRequest represents the request body for a visit report.
type CreateReportRequest struct {
	AppointmentID  string `json:"appointmentId" binding:"required"`
	Diagnosis      string `json:"diagnosis"`
	Recommendation string `json:"recommendation"`
	Temperature    string `json:"temperature"`
	BloodPressure  string `json:"bloodPressure"`
	Symptoms       string `json:"symptoms"`
}

// CreateReport stores the treating doctor's visit report and notifies the
// patient and the doctor's clinic. Notification failures never fail the
// request.
func (h *ReportHandler) CreateReport(c *gin.Context) {
	var req CreateReportRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	doctorID, _ := middleware.GetUserIDFromContext(c)

	var appt models.Appointment
	if err := h.DB.First(&appt, "id = ?", req.AppointmentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error")
		}
		return
	}

	visitReport := models.VisitReport{
		AppointmentID:  req.AppointmentID,
		DoctorID:       doctorID,
		PatientID:      appt.PatientID,
		Diagnosis:      req.Diagnosis,
		Recommendation: req.Recommendation,
		Temperature:    req.Temperature,
		BloodPressure:  req.BloodPressure,
		Symptoms:       req.Symptoms,
	}
	if err := h.DB.Create(&visitReport).Error; err != nil {
		utils.InternalServerError(c, "Failed to save report")
		return
	}

	var patient, doctor models.User
	if err := h.DB.First(&patient, "id = ?", appt.PatientID).Error; err == nil && patient.Email != "" {
		h.Mailer.SendAsync(
			patient.Email,
			"Your visit report is ready",
			fmt.Sprintf("Hello %s,<br />Your doctor has completed the visit report for %s. You can view or download it in your account.", patient.Name, appt.Date),
		)
	}
	if err := h.DB.First(&doctor, "id = ?", doctorID).Error; err == nil && doctor.ClinicID != "" {
		var clinic models.User
		if err := h.DB.First(&clinic, "id = ?", doctor.ClinicID).Error; err == nil && clinic.Email != "" {
			h.Mailer.SendAsync(
				clinic.Email,
				"New visit report",
				fmt.Sprintf("Dr. %s has completed a new report for patient %s on %s.", doctor.Name, patient.Name, appt.Date),
			)
		}
	}

	utils.Created(c, "Report saved successfully", visitReport)
}

// GetMyReports lists the authenticated patient's visit reports.
func (h *ReportHandler) GetMyReports(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var reports []models.VisitReport
	err := h.DB.Preload("Doctor").Preload("Appointment").
		Where("patient_id = ?", userID).
		Order("created_at desc").
		Find(&reports).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch reports")
		return
	}

	utils.Success(c, "Reports fetched successfully", reports)
}

// GetDoctorReports lists the authenticated doctor's visit reports.
func (h *ReportHandler) GetDoctorReports(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var reports []models.VisitReport
	err := h.DB.Preload("Patient").Preload("Appointment").
		Where("doctor_id = ?", userID).
		Order("created_at desc").
		Find(&reports).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch reports")
		return
	}

	utils.Success(c, "Reports fetched successfully", reports)
}

// GetClinicReports lists reports across the clinic's doctors, optionally
// filtered by doctor and createdAt range (?from=...&to=...&doctorId=...).
func (h *ReportHandler) GetClinicReports(c *gin.Context) {
	clinicID, _ := middleware.GetUserIDFromContext(c)

	var doctorIDs []string
	if doctorID := c.Query("doctorId"); doctorID != "" {
		doctorIDs = []string{doctorID}
	} else {
		err := h.DB.Model(&models.User{}).
			Where("role = ? AND clinic_id = ?", models.RoleDoctor, clinicID).
			Pluck("id", &doctorIDs).Error
		if err != nil {
			utils.InternalServerError(c, "Failed to fetch clinic doctors")
			return
		}
	}

	reports := []models.VisitReport{}
	if len(doctorIDs) > 0 {
		query := h.DB.Preload("Doctor").Preload("Patient").Preload("Appointment").
			Where("doctor_id IN ?", doctorIDs)
		if from := c.Query("from"); from != "" {
			query = query.Where("created_at >= ?", from)
		}
		if to := c.Query("to"); to != "" {
			query = query.Where("created_at <= ?", to)
		}
		if err := query.Order("created_at desc").Find(&reports).Error; err != nil {
			utils.InternalServerError(c, "Failed to fetch reports")
			return
		}
	}

	utils.Success(c, "Reports fetched successfully", reports)
}

// GetReportPDF streams a visit report as PDF. Accessible to the patient it
// belongs to, the treating doctor, and clinic users.
func (h *ReportHandler) GetReportPDF(c *gin.Context) {
	var visitReport models.VisitReport
	if err := h.DB.First(&visitReport, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Report not found")
		} else {
			utils.InternalServerError(c, "Database error")
		}
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)
	if userRole != models.RoleClinic && userID != visitReport.PatientID && userID != visitReport.DoctorID {
		utils.Forbidden(c, "You do not have access to this report")
		return
	}

	var appt models.Appointment
	if err := h.DB.First(&appt, "id = ?", visitReport.AppointmentID).Error; err != nil {
		utils.InternalServerError(c, "Failed to load report details")
		return
	}
	var doctor, patient models.User
	if err := h.DB.First(&doctor, "id = ?", visitReport.DoctorID).Error; err != nil {
		utils.InternalServerError(c, "Failed to load report details")
		return
	}
	if err := h.DB.First(&patient, "id = ?", visitReport.PatientID).Error; err != nil {
		utils.InternalServerError(c, "Failed to load report details")
		return
	}

	pdf, err := report.VisitReport(&visitReport, &appt, &doctor, &patient)
	if err != nil {
		utils.InternalServerError(c, "Failed to generate report")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="report-`+visitReport.ID+`.pdf"`)
	c.Data(200, "application/pdf", pdf)
}
