package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Gentaaaa/MedPal/internal/middleware"
	"github.com/Gentaaaa/MedPal/internal/models"
	"github.com/Gentaaaa/MedPal/internal/utils"
)

// ClinicHandler handles clinic management: departments, services, doctors
// and the clinic's own profile.
type ClinicHandler struct {
	DB *gorm.DB
}

// NewClinicHandler creates a new ClinicHandler.
func NewClinicHandler(db *gorm.DB) *ClinicHandler {
	return &ClinicHandler{DB: db}
}

// CreateDepartmentRequest represents the request body for adding a department.
type CreateDepartmentRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateDepartment adds a department to the clinic.
func (h *ClinicHandler) CreateDepartment(c *gin.Context) {
	var req CreateDepartmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	clinicID, _ := middleware.GetUserIDFromContext(c)

	department := models.Department{Name: req.Name, ClinicID: clinicID}
	if err := h.DB.Create(&department).Error; err != nil {
		utils.InternalServerError(c, "Failed to create department")
		return
	}

	utils.Created(c, "Department created successfully", department)
}

// GetDepartments lists the clinic's departments.
func (h *ClinicHandler) GetDepartments(c *gin.Context) {
	clinicID, _ := middleware.GetUserIDFromContext(c)

	var departments []models.Department
	if err := h.DB.Where("clinic_id = ?", clinicID).Find(&departments).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch departments")
		return
	}

	utils.Success(c, "Departments fetched successfully", departments)
}

// DeleteDepartment removes one of the clinic's own departments.
func (h *ClinicHandler) DeleteDepartment(c *gin.Context) {
	clinicID, _ := middleware.GetUserIDFromContext(c)

	err := h.DB.Delete(&models.Department{}, "id = ? AND clinic_id = ?", c.Param("id"), clinicID).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to delete department")
		return
	}

	utils.Success(c, "Department deleted successfully", nil)
}

// ServiceRequest represents the request body for creating or updating a
// service.
type ServiceRequest struct {
	Name         string  `json:"name" binding:"required"`
	DepartmentID string  `json:"departmentId" binding:"required"`
	Price        float64 `json:"price"`
}

// CreateService adds a service under one of the clinic's departments.
func (h *ClinicHandler) CreateService(c *gin.Context) {
	var req ServiceRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	service := models.Service{Name: req.Name, DepartmentID: req.DepartmentID, Price: req.Price}
	if err := h.DB.Create(&service).Error; err != nil {
		utils.InternalServerError(c, "Failed to create service")
		return
	}

	utils.Created(c, "Service created successfully", service)
}

// GetServices lists the services of the clinic's departments.
func (h *ClinicHandler) GetServices(c *gin.Context) {
	clinicID, _ := middleware.GetUserIDFromContext(c)

	var departmentIDs []string
	err := h.DB.Model(&models.Department{}).
		Where("clinic_id = ?", clinicID).
		Pluck("id", &departmentIDs).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch departments")
		return
	}

	services := []models.Service{}
	if len(departmentIDs) > 0 {
		err = h.DB.Preload("Department").
			Where("department_id IN ?", departmentIDs).
			Find(&services).Error
		if err != nil {
			utils.InternalServerError(c, "Failed to fetch services")
			return
		}
	}

	utils.Success(c, "Services fetched successfully", services)
}

// GetPublicServices lists all services for the booking UI. Unauthenticated.
func (h *ClinicHandler) GetPublicServices(c *gin.Context) {
	var services []models.Service
	if err := h.DB.Preload("Department").Find(&services).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch services")
		return
	}

	utils.Success(c, "Services fetched successfully", services)
}

// UpdateService updates a service's name, price or department.
func (h *ClinicHandler) UpdateService(c *gin.Context) {
	var req ServiceRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var service models.Service
	if err := h.DB.First(&service, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Service not found")
		} else {
			utils.InternalServerError(c, "Database error")
		}
		return
	}

	service.Name = req.Name
	service.DepartmentID = req.DepartmentID
	service.Price = req.Price
	if err := h.DB.Save(&service).Error; err != nil {
		utils.InternalServerError(c, "Failed to update service")
		return
	}

	utils.Success(c, "Service updated successfully", service)
}

// DeleteService removes a service.
func (h *ClinicHandler) DeleteService(c *gin.Context) {
	if err := h.DB.Delete(&models.Service{}, "id = ?", c.Param("id")).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete service")
		return
	}

	utils.Success(c, "Service deleted successfully", nil)
}

// GetDoctors lists the clinic's doctors.
func (h *ClinicHandler) GetDoctors(c *gin.Context) {
	clinicID, _ := middleware.GetUserIDFromContext(c)

	var doctors []models.User
	err := h.DB.Where("role = ? AND clinic_id = ?", models.RoleDoctor, clinicID).
		Find(&doctors).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch doctors")
		return
	}

	sanitized := make([]models.UserSanitized, 0, len(doctors))
	for _, d := range doctors {
		sanitized = append(sanitized, d.Sanitize())
	}

	utils.Success(c, "Doctors fetched successfully", sanitized)
}

// UpdateDoctorRequest represents the clinic's editable doctor fields.
type UpdateDoctorRequest struct {
	Name         string              `json:"name"`
	Email        string              `json:"email" binding:"omitempty,email"`
	DepartmentID string              `json:"departmentId"`
	WorkingHours models.WorkingHours `json:"workingHours"`
}

// UpdateDoctor updates one of the clinic's doctors.
func (h *ClinicHandler) UpdateDoctor(c *gin.Context) {
	var req UpdateDoctorRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	clinicID, _ := middleware.GetUserIDFromContext(c)

	var doctor models.User
	err := h.DB.Where("id = ? AND role = ? AND clinic_id = ?",
		c.Param("id"), models.RoleDoctor, clinicID).First(&doctor).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error")
		}
		return
	}

	if req.Name != "" {
		doctor.Name = req.Name
	}
	if req.Email != "" {
		doctor.Email = req.Email
	}
	if req.DepartmentID != "" {
		doctor.DepartmentID = req.DepartmentID
	}
	if req.WorkingHours != nil {
		doctor.WorkingHours = req.WorkingHours
	}

	if err := h.DB.Save(&doctor).Error; err != nil {
		utils.InternalServerError(c, "Failed to update doctor")
		return
	}

	utils.Success(c, "Doctor updated successfully", doctor.Sanitize())
}

// DeleteDoctor removes one of the clinic's doctors.
func (h *ClinicHandler) DeleteDoctor(c *gin.Context) {
	clinicID, _ := middleware.GetUserIDFromContext(c)

	err := h.DB.Delete(&models.User{},
		"id = ? AND role = ? AND clinic_id = ?", c.Param("id"), models.RoleDoctor, clinicID).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to delete doctor")
		return
	}

	utils.Success(c, "Doctor deleted successfully", nil)
}

// UpdateClinicRequest represents the clinic's own editable profile fields.
type UpdateClinicRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password" binding:"omitempty,min=8"`
}

// UpdateClinic updates the clinic's own profile.
func (h *ClinicHandler) UpdateClinic(c *gin.Context) {
	var req UpdateClinicRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	clinicID, _ := middleware.GetUserIDFromContext(c)

	var clinic models.User
	if err := h.DB.First(&clinic, "id = ?", clinicID).Error; err != nil {
		utils.NotFound(c, "Clinic not found")
		return
	}

	if req.Name != "" {
		clinic.Name = req.Name
	}
	if req.Email != "" {
		clinic.Email = req.Email
	}
	if req.Password != "" {
		if err := clinic.SetPassword(req.Password); err != nil {
			utils.InternalServerError(c, "Failed to hash password")
			return
		}
	}

	if err := h.DB.Save(&clinic).Error; err != nil {
		utils.InternalServerError(c, "Failed to update clinic")
		return
	}

	utils.Success(c, "Profile updated successfully", clinic.Sanitize())
}
