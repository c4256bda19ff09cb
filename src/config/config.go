package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/LinhLe223/GMV-MAX/src/models"
)

type AppConfig struct {
	JWTSecret          string
	Port               string
	DatabasePath       string
	LogLevel           string
	AccessTokenExpiry  time.Duration
	MaxUploadSizeBytes int64
	AllowedOrigins     []string

	// Operator login. An empty hash disables authentication entirely.
	OperatorUsername     string
	OperatorPasswordHash string

	CostStructurePath string

	HeaderScanRows        int
	UnmappedThreshold     float64
	AdCacheRowLimit       int
	SourceCacheQuotaBytes int64
	ResultCacheTTL        time.Duration
}

var Cfg *AppConfig

const defaultJWTSecret = "change-me-this-is-a-default-jwt-secret-of-32-bytes"

func LoadConfig() {
	errEnv := godotenv.Load()
	if errEnv != nil {
		log.Println("Info: No .env file found or error loading .env file. Relying on OS environment variables and defaults. Error (if any):", errEnv)
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	jwtSecret := getEnv("JWT_SECRET", defaultJWTSecret)
	if jwtSecret == defaultJWTSecret {
		log.Println("WARNING: Using default insecure JWT_SECRET. Set JWT_SECRET environment variable for production.")
	}

	Cfg = &AppConfig{
		JWTSecret:          jwtSecret,
		Port:               getEnv("PORT", "8080"),
		DatabasePath:       getEnv("DATABASE_PATH", "./gmvmax.db"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		AccessTokenExpiry:  getEnvAsDuration("ACCESS_TOKEN_EXPIRY", 60*time.Minute),
		MaxUploadSizeBytes: getEnvAsInt64("MAX_UPLOAD_SIZE_BYTES", 10*1024*1024),
		AllowedOrigins:     splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),

		OperatorUsername:     getEnv("OPERATOR_USERNAME", "admin"),
		OperatorPasswordHash: getEnv("OPERATOR_PASSWORD_HASH", ""),

		CostStructurePath: getEnv("COST_STRUCTURE_PATH", "config/cost_structure.yaml"),

		HeaderScanRows:        getEnvAsInt("HEADER_SCAN_ROWS", 20),
		UnmappedThreshold:     getEnvAsFloat("UNMAPPED_THRESHOLD", 0.005),
		AdCacheRowLimit:       getEnvAsInt("AD_CACHE_ROW_LIMIT", 1000),
		SourceCacheQuotaBytes: getEnvAsInt64("SOURCE_CACHE_QUOTA_BYTES", 5*1024*1024),
		ResultCacheTTL:        getEnvAsDuration("RESULT_CACHE_TTL", 15*time.Minute),
	}

	if Cfg.OperatorPasswordHash == "" {
		log.Println("WARNING: OPERATOR_PASSWORD_HASH not set. API authentication is disabled.")
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DBPath=%s, CostStructure=%s",
		Cfg.Port, Cfg.LogLevel, Cfg.DatabasePath, Cfg.CostStructurePath)
}

// Default returns a configuration populated with defaults only, for tests and tools.
func Default() *AppConfig {
	return &AppConfig{
		JWTSecret:             defaultJWTSecret,
		Port:                  "8080",
		DatabasePath:          ":memory:",
		LogLevel:              "info",
		AccessTokenExpiry:     60 * time.Minute,
		MaxUploadSizeBytes:    10 * 1024 * 1024,
		AllowedOrigins:        []string{"http://localhost:3000"},
		OperatorUsername:      "admin",
		HeaderScanRows:        20,
		UnmappedThreshold:     0.005,
		AdCacheRowLimit:       1000,
		SourceCacheQuotaBytes: 5 * 1024 * 1024,
		ResultCacheTTL:        15 * time.Minute,
	}
}

// LoadCostStructure reads the fee configuration from a YAML file.
// A missing file is not an error and yields the zero-fee structure.
func LoadCostStructure(path string) (models.CostStructure, error) {
	cs := models.DefaultCostStructure()
	if path == "" {
		return cs, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("Cost structure file %s not found, using zero fees", path)
		return cs, nil
	}
	if err != nil {
		return cs, fmt.Errorf("reading cost structure %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cs); err != nil {
		return models.DefaultCostStructure(), fmt.Errorf("%w: parsing %s: %v", models.ErrInvalidCostStructure, path, err)
	}
	if cs.OperatingFee.Type == "" {
		cs.OperatingFee.Type = models.FeeFixed
	}
	if cs.OtherCosts == nil {
		cs.OtherCosts = []models.OtherCost{}
	}
	if err := cs.Validate(); err != nil {
		return models.DefaultCostStructure(), err
	}
	return cs, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Environment variable %s not set, using default: %s", key, fallback)
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		log.Printf("Integer value for %s not set or empty, using default: %d", key, fallback)
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

func getEnvAsInt64(key string, fallback int64) int64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	log.Printf("Invalid float value for %s ('%s'), using default: %g", key, valueStr, fallback)
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		log.Printf("Duration value for %s not set or empty, using default: %s", key, fallback.String())
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}
