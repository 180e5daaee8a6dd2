package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Supported database drivers
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
	DriverTurso  = "turso"
)

type Config struct {
	ServerPort  string
	Environment string
	UploadDir   string
	// Database
	DBDriver   string
	DBPath     string
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	// AutoMigrate creates the entity tables on startup (development/SQLite)
	AutoMigrate bool
	// AuditLog records every mutation in audit_logs
	AuditLog bool
	// Turso (remote libsql)
	TursoDatabaseURL string
	TursoAuthToken   string
	// Cloudflare R2 Storage (crop photos)
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicURL       string
	// Presentation
	Theme          Theme
	DefaultLocale  string
	AllowedOrigins []string
	// InUseMarkers are lowercase fragments of stored procedure SIGNAL messages
	// that mean a delete was rejected by dependent rows.
	InUseMarkers []string
}

func Load() *Config {
	// Load .env file (ignore error if not present - use system env vars)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	driver := strings.ToLower(getEnv("DB_DRIVER", DriverSQLite))
	switch driver {
	case DriverSQLite, DriverMySQL, DriverTurso:
	default:
		log.Printf("[WARNING] Unknown DB_DRIVER %q, falling back to %s", driver, DriverSQLite)
		driver = DriverSQLite
	}

	autoMigrate := getEnvBool("DB_AUTO_MIGRATE", driver != DriverMySQL)

	return &Config{
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		Environment:       getEnv("ENVIRONMENT", "development"),
		UploadDir:         getEnv("UPLOAD_DIR", "static/uploads"),
		DBDriver:          driver,
		DBPath:            getEnv("DB_PATH", "db/agrocontrol.db"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "3306"),
		DBName:            getEnv("DB_NAME", "agrocontrol_sas_db"),
		DBUser:            getEnv("DB_USER", "root"),
		DBPassword:        os.Getenv("DB_PASSWORD"),
		AutoMigrate:       autoMigrate,
		AuditLog:          getEnvBool("AUDIT_LOG", autoMigrate),
		TursoDatabaseURL:  getEnv("TURSO_DATABASE_URL", ""),
		TursoAuthToken:    os.Getenv("TURSO_AUTH_TOKEN"),
		R2AccountID:       getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      getEnv("R2_BUCKET_NAME", ""),
		R2PublicURL:       getEnv("R2_PUBLIC_URL", ""),
		Theme:             ThemeByName(getEnv("THEME", ThemeLight)),
		DefaultLocale:     getEnv("DEFAULT_LOCALE", "es"),
		AllowedOrigins:    strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		InUseMarkers:      splitList(getEnv("DB_IN_USE_MARKERS", "asociad,foreign key,referenced")),
	}
}

// IsProduction reports whether the app runs with production settings
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Printf("Using default value for %s: %s", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	// Accept common boolean representations
	switch strings.ToLower(value) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return defaultValue
	}
}

// splitList splits a comma separated value, dropping blanks and lowercasing
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
