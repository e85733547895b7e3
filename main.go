package main

import (
	"fmt"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/Gentaaaa/MedPal/internal/booking"
	"github.com/Gentaaaa/MedPal/internal/cache"
	"github.com/Gentaaaa/MedPal/internal/config"
	"github.com/Gentaaaa/MedPal/internal/mailer"
	"github.com/Gentaaaa/MedPal/internal/models"
	"github.com/Gentaaaa/MedPal/internal/routes"
	"github.com/Gentaaaa/MedPal/internal/store"
)

// slotCacheSize bounds the number of (doctor, date) taken-slot entries kept
// in memory.
const slotCacheSize = 512

func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	// Load environment variables; a missing .env is fine in production
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Fatal().Err(err).Msg("error loading .env file")
	}

	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error loading config")
	}

	// Initialize database connection
	db, err := models.InitDB(models.DatabaseConfig{DSN: cfg.Database.DSN})
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting to database")
	}

	// Verification and reset codes live in Redis with a TTL
	codes, err := store.NewCodeStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
		time.Duration(cfg.CodeTTLMinutes)*time.Minute)
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting to redis")
	}

	slots, err := cache.NewSlotCache(slotCacheSize)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating slot cache")
	}

	m := mailer.New(cfg.Mailer, log)
	st := store.New(db)
	engine := booking.NewEngine(st, st, st, m, slots, cfg.AppURL, log)

	// Initialize Gin router
	router := gin.Default()

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Set up routes
	routes.SetupRoutes(router, db, cfg, engine, m, codes)

	// Start server
	serverAddr := fmt.Sprintf(":%s", cfg.Port)
	log.Info().Str("port", cfg.Port).Msg("server running")
	if err := router.Run(serverAddr); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
