package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Gentaaaa/MedPal/internal/booking"
	"github.com/Gentaaaa/MedPal/internal/config"
	"github.com/Gentaaaa/MedPal/internal/handlers"
	"github.com/Gentaaaa/MedPal/internal/mailer"
	"github.com/Gentaaaa/MedPal/internal/middleware"
	"github.com/Gentaaaa/MedPal/internal/models"
	"github.com/Gentaaaa/MedPal/internal/store"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, engine *booking.Engine, m *mailer.Mailer, codes *store.CodeStore) {
	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg, m, codes)
	userHandler := handlers.NewUserHandler(db, m)
	clinicHandler := handlers.NewClinicHandler(db)
	appointmentHandler := handlers.NewAppointmentHandler(db, engine)
	documentHandler := handlers.NewDocumentHandler(db, cfg)
	reportHandler := handlers.NewReportHandler(db, m)

	// Public routes (no authentication required)
	public := router.Group("/api")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/verify-email", authHandler.VerifyEmail)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/login-doctor", authHandler.LoginDoctor)
			authRoutes.POST("/forgot-password", authHandler.ForgotPassword)
			authRoutes.POST("/reset-password", authHandler.ResetPassword)
		}

		// The booking UI grays out occupied slots before the patient logs in
		public.GET("/appointments/taken", appointmentHandler.GetTakenSlots)
		public.GET("/clinic/services/public", clinicHandler.GetPublicServices)
	}

	// Uploaded patient documents are linked from notification emails
	router.Static("/uploads", cfg.UploadDir)

	// Authenticated routes
	private := router.Group("/api")
	private.Use(middleware.AuthMiddleware(cfg)) // Apply JWT authentication middleware
	{
		// Profile
		userRoutes := private.Group("/users")
		{
			userRoutes.GET("/me", userHandler.GetMe)
			userRoutes.PUT("/me", userHandler.UpdateMe)
			userRoutes.PUT("/me/password", userHandler.ChangePassword)
			userRoutes.DELETE("/me", userHandler.DeleteMe)
			userRoutes.POST("/register-doctor", middleware.RoleAuthMiddleware(models.RoleClinic), userHandler.RegisterDoctor)
		}

		// Appointment routes
		appointmentRoutes := private.Group("/appointments")
		{
			appointmentRoutes.POST("", middleware.RoleAuthMiddleware(models.RolePatient), appointmentHandler.CreateAppointment)
			appointmentRoutes.GET("/mine", appointmentHandler.GetMyAppointments)
			appointmentRoutes.GET("/doctor", middleware.RoleAuthMiddleware(models.RoleDoctor), appointmentHandler.GetDoctorAppointments)
			appointmentRoutes.GET("/all", middleware.RoleAuthMiddleware(models.RoleClinic), appointmentHandler.GetClinicAppointments)
			appointmentRoutes.PUT("/mark-seen", appointmentHandler.MarkSeen)
			appointmentRoutes.GET("/unseen-count", appointmentHandler.GetUnseenCount)
			appointmentRoutes.GET("/:id/pdf", appointmentHandler.GetAppointmentPDF)

			// Status, attendance, presence and delete authorize inside the engine
			appointmentRoutes.PUT("/:id/status", appointmentHandler.UpdateAppointmentStatus)
			appointmentRoutes.PUT("/:id/attended", appointmentHandler.MarkAttended)
			appointmentRoutes.PUT("/:id/present", appointmentHandler.SetPresence)
			appointmentRoutes.DELETE("/:id", appointmentHandler.DeleteAppointment)
		}

		// Clinic management routes
		clinicRoutes := private.Group("/clinic")
		clinicRoutes.Use(middleware.RoleAuthMiddleware(models.RoleClinic))
		{
			clinicRoutes.POST("/departments", clinicHandler.CreateDepartment)
			clinicRoutes.GET("/departments", clinicHandler.GetDepartments)
			clinicRoutes.DELETE("/departments/:id", clinicHandler.DeleteDepartment)

			clinicRoutes.POST("/services", clinicHandler.CreateService)
			clinicRoutes.GET("/services", clinicHandler.GetServices)
			clinicRoutes.PUT("/services/:id", clinicHandler.UpdateService)
			clinicRoutes.DELETE("/services/:id", clinicHandler.DeleteService)

			clinicRoutes.GET("/doctors", clinicHandler.GetDoctors)
			clinicRoutes.PUT("/doctors/:id", clinicHandler.UpdateDoctor)
			clinicRoutes.DELETE("/doctors/:id", clinicHandler.DeleteDoctor)

			clinicRoutes.PUT("/update", clinicHandler.UpdateClinic)
		}

		// Document routes
		documentRoutes := private.Group("/documents")
		{
			documentRoutes.GET("/mine", documentHandler.GetMyDocuments)
			documentRoutes.POST("/upload/:appointmentId", documentHandler.UploadDocument)
		}

		// Visit report routes
		reportRoutes := private.Group("/reports")
		{
			reportRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleDoctor), reportHandler.CreateReport)
			reportRoutes.GET("/me", middleware.RoleAuthMiddleware(models.RolePatient), reportHandler.GetMyReports)
			reportRoutes.GET("/doctor", middleware.RoleAuthMiddleware(models.RoleDoctor), reportHandler.GetDoctorReports)
			reportRoutes.GET("/clinic", middleware.RoleAuthMiddleware(models.RoleClinic), reportHandler.GetClinicReports)
			reportRoutes.GET("/:id/pdf", reportHandler.GetReportPDF)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
