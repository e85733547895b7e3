package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Gentaaaa/MedPal/internal/config"
	"github.com/Gentaaaa/MedPal/internal/mailer"
	"github.com/Gentaaaa/MedPal/internal/models"
	"github.com/Gentaaaa/MedPal/internal/store"
	"github.com/Gentaaaa/MedPal/internal/utils"
)

// AuthHandler handles authentication-related requests.
type AuthHandler struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Mailer *mailer.Mailer
	Codes  *store.CodeStore
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config, m *mailer.Mailer, codes *store.CodeStore) *AuthHandler {
	return &AuthHandler{DB: db, Cfg: cfg, Mailer: m, Codes: codes}
}

// RegisterRequest represents the request body for user registration.
// Patients verify by emailed code; clinics need a pre-shared clinic code.
type RegisterRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
	Role       string `json:"role" binding:"required,oneof=patient clinic"`
	ClinicCode string `json:"clinicCode"`
}

// Register handles user registration.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var existingUser models.User
	if err := h.DB.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		utils.BadRequest(c, "User with this email already exists")
		return
	} else if err != gorm.ErrRecordNotFound {
		utils.InternalServerError(c, "Database error")
		return
	}

	user := models.User{
		Name:  req.Name,
		Email: req.Email,
		Role:  models.Role(req.Role),
	}
	if err := user.SetPassword(req.Password); err != nil {
		utils.InternalServerError(c, "Failed to hash password")
		return
	}

	switch user.Role {
	case models.RolePatient:
		code, err := store.GenerateCode()
		if err != nil {
			utils.InternalServerError(c, "Failed to generate verification code")
			return
		}
		user.IsVerified = false

		if err := h.DB.Create(&user).Error; err != nil {
			utils.InternalServerError(c, "Failed to create user")
			return
		}
		if err := h.Codes.Set(c.Request.Context(), store.PurposeVerify, user.Email, code); err != nil {
			utils.InternalServerError(c, "Failed to store verification code")
			return
		}
		if err := h.Mailer.SendVerificationCode(user.Email, code, false); err != nil {
			utils.InternalServerError(c, "Failed to send verification email")
			return
		}
		utils.Created(c, "Check your email for the verification code", user.Sanitize())

	case models.RoleClinic:
		if !h.validClinicCode(req.ClinicCode) {
			utils.BadRequest(c, "Invalid clinic code")
			return
		}
		user.IsVerified = true
		if err := h.DB.Create(&user).Error; err != nil {
			utils.InternalServerError(c, "Failed to create user")
			return
		}
		utils.Created(c, "Clinic registered successfully", user.Sanitize())

	default:
		utils.Forbidden(c, "This role cannot self-register")
	}
}

func (h *AuthHandler) validClinicCode(code string) bool {
	for _, allowed := range h.Cfg.ClinicCodes {
		if code != "" && code == allowed {
			return true
		}
	}
	return false
}

// VerifyEmailRequest represents the request body for email verification.
type VerifyEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

// VerifyEmail confirms a patient's email with the code they received.
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req VerifyEmailRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	ok, err := h.Codes.Check(c.Request.Context(), store.PurposeVerify, req.Email, req.Code)
	if err != nil {
		utils.InternalServerError(c, "Failed to check verification code")
		return
	}
	if !ok {
		utils.BadRequest(c, "Invalid verification code")
		return
	}

	if err := h.DB.Model(&models.User{}).Where("email = ?", req.Email).
		Update("is_verified", true).Error; err != nil {
		utils.InternalServerError(c, "Failed to verify user")
		return
	}
	_ = h.Codes.Clear(c.Request.Context(), store.PurposeVerify, req.Email)

	utils.Success(c, "Email verified successfully", nil)
}

// LoginRequest represents the request body for user login. The client states
// which role it expects; admins additionally present the admin secret.
type LoginRequest struct {
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required"`
	ExpectedRole string `json:"expectedRole" binding:"required,oneof=patient clinic admin"`
	AdminSecret  string `json:"adminSecret"`
}

// LoginResponse represents the response body for successful login.
type LoginResponse struct {
	Token string               `json:"token"`
	User  models.UserSanitized `json:"user"`
}

// Login handles user login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Email does not exist")
		} else {
			utils.InternalServerError(c, "Database error")
		}
		return
	}

	if string(user.Role) != req.ExpectedRole {
		utils.Forbidden(c, "Role does not match")
		return
	}
	if user.Role == models.RolePatient && !user.IsVerified {
		utils.Unauthorized(c, "Verify your email first")
		return
	}
	if user.Role == models.RoleAdmin && req.AdminSecret != h.Cfg.AdminSecret {
		utils.Forbidden(c, "Invalid admin secret")
		return
	}
	if !user.CheckPassword(req.Password) {
		utils.Unauthorized(c, "Invalid email or password")
		return
	}

	token, err := utils.GenerateToken(&user, h.Cfg)
	if err != nil {
		utils.InternalServerError(c, "Failed to generate token")
		return
	}

	utils.Success(c, "Logged in successfully", LoginResponse{Token: token, User: user.Sanitize()})
}

// LoginDoctorRequest represents the request body for doctor login by code.
type LoginDoctorRequest struct {
	DoctorCode string `json:"doctorCode" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// LoginDoctor handles doctor login with the code issued at registration.
func (h *AuthHandler) LoginDoctor(c *gin.Context) {
	var req LoginDoctorRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var doctor models.User
	err := h.DB.Where("doctor_code = ? AND role = ?", req.DoctorCode, models.RoleDoctor).
		First(&doctor).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Invalid doctor code")
		} else {
			utils.InternalServerError(c, "Database error")
		}
		return
	}

	if !doctor.CheckPassword(req.Password) {
		utils.Unauthorized(c, "Invalid password")
		return
	}

	token, err := utils.GenerateToken(&doctor, h.Cfg)
	if err != nil {
		utils.InternalServerError(c, "Failed to generate token")
		return
	}

	utils.Success(c, "Logged in successfully", LoginResponse{Token: token, User: doctor.Sanitize()})
}

// ForgotPasswordRequest represents the request body for a reset code.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required"`
}

// ForgotPassword emails a password reset code.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var user models.User
	err := h.DB.Where("email = ? AND role = ?", req.Email, req.Role).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Email does not exist for this role")
		} else {
			utils.InternalServerError(c, "Database error")
		}
		return
	}

	code, err := store.GenerateCode()
	if err != nil {
		utils.InternalServerError(c, "Failed to generate reset code")
		return
	}
	if err := h.Codes.Set(c.Request.Context(), store.PurposeReset, user.Email, code); err != nil {
		utils.InternalServerError(c, "Failed to store reset code")
		return
	}
	if err := h.Mailer.SendVerificationCode(user.Email, code, true); err != nil {
		utils.InternalServerError(c, "Failed to send reset email")
		return
	}

	utils.Success(c, "Password reset code sent", nil)
}

// ResetPasswordRequest represents the request body for completing a reset.
type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Role        string `json:"role" binding:"required"`
	Code        string `json:"code" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

// ResetPassword sets a new password after checking the emailed code.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var user models.User
	err := h.DB.Where("email = ? AND role = ?", req.Email, req.Role).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Email does not exist for this role")
		} else {
			utils.InternalServerError(c, "Database error")
		}
		return
	}

	ok, err := h.Codes.Check(c.Request.Context(), store.PurposeReset, user.Email, req.Code)
	if err != nil {
		utils.InternalServerError(c, "Failed to check reset code")
		return
	}
	if !ok {
		utils.BadRequest(c, "Invalid reset code")
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
	_ = h.Codes.Clear(c.Request.Context(), store.PurposeReset, user.Email)

	utils.Success(c, "Password changed successfully", nil)
}
