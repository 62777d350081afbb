package config

import (
	"log"
	"os"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Env             string
	Port            string
	DatabaseURL     string
	StorageBackend  string
	TokenFile       string
	DriveClientID   string
	DriveSecret     string
	FolderPath      []string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SMSGatewayURL   string
	PollInterval    time.Duration
	SweepInterval   time.Duration
	RetentionWindow time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	return Config{
		Env:             env,
		Port:            getEnv("PORT", "8081"),
		DatabaseURL:     dbURL,
		StorageBackend:  normalizeBackend(getEnv("STORAGE_BACKEND", "drive")),
		TokenFile:       getEnv("TOKEN_FILE", "token.json"),
		DriveClientID:   getEnv("DRIVE_CLIENT_ID", ""),
		DriveSecret:     getEnv("DRIVE_CLIENT_SECRET", ""),
		FolderPath:      splitPath(getEnv("STORAGE_FOLDER_PATH", "Invoices/Outgoing")),
		AWSRegion:       getEnv("AWS_REGION", ""),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Prefix:        getEnv("S3_PREFIX", ""),
		SMSGatewayURL:   getEnv("SMS_GATEWAY_URL", ""),
		PollInterval:    getEnvDuration("POLL_INTERVAL", 30*time.Second),
		SweepInterval:   getEnvDuration("SWEEP_INTERVAL", 24*time.Hour),
		RetentionWindow: getEnvDuration("RETENTION_WINDOW", 7*24*time.Hour),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("config env %s invalid duration: %v", key, err)
		return def
	}
	return val
}

// splitPath breaks a slash-separated folder path into ordered segments.
func splitPath(raw string) []string {
	parts := strings.Split(raw, "/")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeBackend(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "drive"
	}
}
