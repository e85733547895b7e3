package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Gentaaaa/MedPal/internal/mailer"
	"github.com/Gentaaaa/MedPal/internal/middleware"
	"github.com/Gentaaaa/MedPal/internal/models"
	"github.com/Gentaaaa/MedPal/internal/utils"
)

// UserHandler handles user profile related requests.
type UserHandler struct {
	DB     *gorm.DB
	Mailer *mailer.Mailer
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(db *gorm.DB, m *mailer.Mailer) *UserHandler {
	return &UserHandler{DB: db, Mailer: m}
}

// GetMe returns the authenticated user's profile.
func (h *UserHandler) GetMe(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error")
		}
		return
	}

	utils.Success(c, "Profile fetched successfully", user.Sanitize())
}

// UpdateMeRequest represents the updatable profile fields.
type UpdateMeRequest struct {
	Name         string              `json:"name"`
	Email        string              `json:"email" binding:"omitempty,email"`
	DateOfBirth  *time.Time          `json:"dateOfBirth"`
	WorkingHours models.WorkingHours `json:"workingHours"`
}

// UpdateMe updates the authenticated user's profile.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req UpdateMeRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.NotFound(c, "User not found")
		return
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.DateOfBirth != nil {
		user.DateOfBirth = req.DateOfBirth
	}
	if req.WorkingHours != nil {
		user.WorkingHours = req.WorkingHours
	}

	if err := h.DB.Save(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to update profile")
		return
	}

	utils.Success(c, "Profile updated successfully", user.Sanitize())
}

// ChangePasswordRequest represents the request body for a password change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

// ChangePassword changes the authenticated user's password.
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.NotFound(c, "User not found")
		return
	}

	if !user.CheckPassword(req.CurrentPassword) {
		utils.Unauthorized(c, "Current password is incorrect")
		return
	}

	if err := user.SetPassword(req.NewPassword); err != nil {
		utils.InternalServerError(c, "Failed to hash password")
		return
	}
	if err := h.DB.Save(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to update password")
		return
	}

	utils.Success(c, "Password changed successfully", nil)
}

// DeleteMe deletes the authenticated user's account.
func (h *UserHandler) DeleteMe(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	if err := h.DB.Delete(&models.User{}, "id = ?", userID).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete account")
		return
	}

	utils.Success(c, "Account deleted successfully", nil)
}

// RegisterDoctorRequest represents the request body the clinic submits to
// add a doctor.
type RegisterDoctorRequest struct {
	Name         string              `json:"name" binding:"required"`
	Email        string              `json:"email" binding:"required,email"`
	Password     string              `json:"password" binding:"required,min=8"`
	DepartmentID string              `json:"departmentId" binding:"required"`
	WorkingHours models.WorkingHours `json:"workingHours"`
}

// RegisterDoctor creates a doctor account owned by the clinic and emails the
// generated login code.
func (h *UserHandler) RegisterDoctor(c *gin.Context) {
	var req RegisterDoctorRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	clinicID, _ := middleware.GetUserIDFromContext(c)

	var existing models.User
	if err := h.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		utils.BadRequest(c, "Email is already in use")
		return
	} else if err != gorm.ErrRecordNotFound {
		utils.InternalServerError(c, "Database error")
		return
	}

	doctorCode, err := generateDoctorCode()
	if err != nil {
		utils.InternalServerError(c, "Failed to generate doctor code")
		return
	}

	doctor := models.User{
		Name:         req.Name,
		Email:        req.Email,
		Role:         models.RoleDoctor,
		ClinicID:     clinicID,
		DepartmentID: req.DepartmentID,
		DoctorCode:   doctorCode,
		WorkingHours: req.WorkingHours,
		IsVerified:   true,
	}
	if err := doctor.SetPassword(req.Password); err != nil {
		utils.InternalServerError(c, "Failed to hash password")
		return
	}

	if err := h.DB.Create(&doctor).Error; err != nil {
		utils.InternalServerError(c, "Failed to create doctor")
		return
	}

	if err := h.Mailer.SendDoctorWelcome(doctor.Email, doctorCode); err != nil {
		// Account exists either way; the clinic sees the code in the
		// response.
		utils.Success(c, "Doctor registered, but the welcome email failed", doctor.Sanitize())
		return
	}

	utils.Created(c, "Doctor registered successfully", doctor.Sanitize())
}

func generateDoctorCode() (string, error) {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "DR" + strings.ToUpper(hex.EncodeToString(buf)), nil
}
