package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration for our application
type Config struct {
	Port               string
	Origin             string
	Environment        string
	JWTSecret          string
	AdminSecret        string
	ClinicCodes        []string
	Database           DatabaseConfig
	Mailer             MailerConfig
	Redis              RedisConfig
	JWTExpirationHours int
	CodeTTLMinutes     int
	UploadDir          string
	AppURL             string
}

// DatabaseConfig holds database connection details
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	DSN      string
}

// MailerConfig holds email service configuration
type MailerConfig struct {
	SMTPHost string
	SMTPPort int
	Username string
	Password string
	From     string
}

// RedisConfig holds connection details for the verification-code store
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load database configuration
	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "3306"),
		Username: getEnv("DB_USERNAME", "root"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "medpal"),
	}

	// Build DSN (Data Source Name) for MySQL connection
	dbConfig.DSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		dbConfig.Username, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name)

	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	mailerConfig := MailerConfig{
		SMTPHost: getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort: smtpPort,
		Username: getEnv("SMTP_USERNAME", ""),
		Password: getEnv("SMTP_PASSWORD", ""),
		From:     getEnv("MAILER_DEFAULT_FROM", "no-reply@medpal.local"),
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	redisConfig := RedisConfig{
		Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       redisDB,
	}

	jwtExpHours, err := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "24"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION_HOURS: %w", err)
	}

	codeTTLMinutes, err := strconv.Atoi(getEnv("CODE_TTL_MINUTES", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid CODE_TTL_MINUTES: %w", err)
	}

	var clinicCodes []string
	for _, code := range strings.Split(getEnv("CLINIC_CODES", ""), ",") {
		if code = strings.TrimSpace(code); code != "" {
			clinicCodes = append(clinicCodes, code)
		}
	}

	// Return complete configuration
	return &Config{
		Port:               getEnv("PORT", "5000"),
		Origin:             getEnv("ORIGIN", "http://localhost:5173"),
		Environment:        getEnv("APP_ENV", "development"),
		JWTSecret:          getEnv("JWT_SECRET", "default_jwt_secret"),
		AdminSecret:        getEnv("ADMIN_SECRET", ""),
		ClinicCodes:        clinicCodes,
		Database:           dbConfig,
		Mailer:             mailerConfig,
		Redis:              redisConfig,
		JWTExpirationHours: jwtExpHours,
		CodeTTLMinutes:     codeTTLMinutes,
		UploadDir:          getEnv("UPLOAD_DIR", "uploads"),
		AppURL:             getEnv("APP_URL", "http://localhost:5000"),
	}, nil
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
