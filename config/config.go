package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the application.
type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int

	CORSAllowedOrigins []string

	// Cloudflare R2 (S3-compatible) storage for uploaded scorecard images.
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string

	// External weather lookup (Open-Meteo archive + geocoding APIs).
	WeatherAPIBaseURL   string
	GeocodingAPIBaseURL string

	// Image-understanding service used for scorecard extraction.
	VisionAPIBaseURL string
	VisionAPIKey     string

	// When true, a missing profile row does not block access to protected
	// routes. This is the historical permissive default; set to false to
	// fail closed.
	AccessGateFailOpen bool
}

// Load reads configuration from the environment. A .env file is loaded if
// present; its absence is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	portStr := os.Getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	origins := []string{"*"}
	if raw := os.Getenv("CORS_ALLOWED_ORIGINS"); raw != "" {
		origins = origins[:0]
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	failOpen := true
	if raw := os.Getenv("ACCESS_GATE_FAIL_OPEN"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid ACCESS_GATE_FAIL_OPEN environment variable: %w", err)
		}
		failOpen = parsed
	}

	cfg := &Config{
		DatabaseURL:        dbURL,
		JWTSecretKey:       jwtKey,
		ServerPort:         port,
		CORSAllowedOrigins: origins,

		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),

		WeatherAPIBaseURL:   getEnvOrDefault("WEATHER_API_BASE_URL", "https://archive-api.open-meteo.com"),
		GeocodingAPIBaseURL: getEnvOrDefault("GEOCODING_API_BASE_URL", "https://geocoding-api.open-meteo.com"),

		VisionAPIBaseURL: getEnvOrDefault("VISION_API_BASE_URL", "https://generativelanguage.googleapis.com"),
		VisionAPIKey:     os.Getenv("VISION_API_KEY"),

		AccessGateFailOpen: failOpen,
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
