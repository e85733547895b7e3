package handlers

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Gentaaaa/MedPal/internal/config"
	"github.com/Gentaaaa/MedPal/internal/middleware"
	"github.com/Gentaaaa/MedPal/internal/models"
	"github.com/Gentaaaa/MedPal/internal/utils"
)

// DocumentHandler handles patient document uploads and listings.
type DocumentHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(db *gorm.DB, cfg *config.Config) *DocumentHandler {
	return &DocumentHandler{DB: db, Cfg: cfg}
}

// GetMyDocuments lists the authenticated patient's documents.
func (h *DocumentHandler) GetMyDocuments(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var documents []models.Document
	if err := h.DB.Where("patient_id = ?", userID).Find(&documents).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch documents")
		return
	}

	utils.Success(c, "Documents fetched successfully", documents)
}

// UploadDocument stores a multipart file upload on disk and attaches the
// resulting document to an appointment. A doctor uploading on a patient's
// behalf passes the patientId form field.
func (h *DocumentHandler) UploadDocument(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)

	file, err := c.FormFile("file")
	if err != nil {
		utils.BadRequest(c, "A file is required")
		return
	}

	title := c.PostForm("title")
	if title == "" {
		title = file.Filename
	}

	// Timestamped filename mirrors the upload convention the web client
	// expects in fileUrl links.
	safeName := strings.ReplaceAll(file.Filename, " ", "_")
	storedName := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), safeName)
	if err := c.SaveUploadedFile(file, filepath.Join(h.Cfg.UploadDir, storedName)); err != nil {
		utils.InternalServerError(c, "Failed to store file")
		return
	}

	document := models.Document{
		Title:         title,
		FileURL:       "/uploads/" + storedName,
		PatientID:     userID,
		AppointmentID: c.Param("appointmentId"),
	}
	if userRole == models.RoleDoctor {
		document.PatientID = c.PostForm("patientId")
		document.DoctorID = userID
	}

	if err := h.DB.Create(&document).Error; err != nil {
		utils.InternalServerError(c, "Failed to save document")
		return
	}

	utils.Created(c, "Document uploaded successfully", document)
}
