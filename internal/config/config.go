package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
)

const (
	defaultCloudinaryFolder   = "dining-reviews"
	defaultUploadMaxBytes     = 5 << 20
	defaultFoodItemCacheTTL   = 30 * time.Second
	defaultFoodItemCacheSweep = time.Minute

	defaultIngestCapacity      = 1024
	defaultIngestBatchSize     = 25
	defaultIngestFlushInterval = 250 * time.Millisecond
	defaultIngestFlushTimeout  = 5 * time.Second
	defaultIngestWaitTimeout   = 10 * time.Second
	defaultIngestDirectRate    = 50
	defaultIngestDirectBurst   = 10
)

// JWTConfig defines issuer/secret pair for auth verification.
type JWTConfig struct {
	Issuer string
	Secret []byte
}

// IngestConfig tunes the review write buffer.
type IngestConfig struct {
	Capacity      int
	BatchSize     int
	FlushInterval time.Duration
	FlushTimeout  time.Duration
	WaitTimeout   time.Duration
	DirectRate    rate.Limit
	DirectBurst   int
}

// Config holds runtime configuration shared across the application.
type Config struct {
	Env                    string
	Addr                   string
	LogLevel               string
	MongoURI               string
	MongoDatabase          string
	Timeout                time.Duration
	ReviewCollection       string
	StationCollection      string
	FailedReviewCollection string
	PingCollection         string
	AllowedOrigins         []string
	JWT                    JWTConfig
	JWTAudience            string
	CloudinaryURL          string
	CloudinaryFolder       string
	UploadMaxBytes         int
	FoodItemCacheTTL       time.Duration
	FoodItemCacheSweep     time.Duration
	Ingest                 IngestConfig
}

// IsDevelopment reports whether development-only routes may be enabled.
func (c Config) IsDevelopment() bool {
	return IsDevelopmentEnv(c.Env)
}

// IsDevelopmentEnv reports whether env names a development environment.
func IsDevelopmentEnv(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "development", "dev", "local":
		return true
	}
	return false
}

// LoadDotEnv reads .env into the process environment when present. Existing variables win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

// Load reads environment variables and returns a fully populated Config.
func Load() (Config, error) {
	secret := strings.TrimSpace(os.Getenv("AUTH_JWT_SECRET"))
	if secret == "" {
		return Config{}, errors.New("AUTH_JWT_SECRET must be configured")
	}

	cfg := Config{
		Env:                    envOrDefault("APP_ENV", "production"),
		Addr:                   envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:               envOrDefault("LOG_LEVEL", "info"),
		MongoURI:               envOrDefault("MONGO_URI", "mongodb://mongo:27017"),
		MongoDatabase:          envOrDefault("MONGO_DB", "dining"),
		Timeout:                parseDuration("MONGO_CONNECT_TIMEOUT", 10*time.Second),
		ReviewCollection:       envOrDefault("REVIEW_COLLECTION", "reviews"),
		StationCollection:      envOrDefault("STATION_COLLECTION", "stations"),
		FailedReviewCollection: envOrDefault("FAILED_REVIEW_COLLECTION", "failed_reviews"),
		PingCollection:         envOrDefault("PING_COLLECTION", "pings"),
		AllowedOrigins:         parseList("API_ALLOWED_ORIGINS", []string{"*"}),
		JWT: JWTConfig{
			Issuer: envOrDefault("AUTH_JWT_ISSUER", "dining-auth"),
			Secret: []byte(secret),
		},
		JWTAudience:        strings.TrimSpace(os.Getenv("AUTH_JWT_AUDIENCE")),
		CloudinaryURL:      strings.TrimSpace(os.Getenv("CLOUDINARY_URL")),
		CloudinaryFolder:   envOrDefault("CLOUDINARY_FOLDER", defaultCloudinaryFolder),
		UploadMaxBytes:     parseInt("UPLOAD_MAX_BYTES", defaultUploadMaxBytes),
		FoodItemCacheTTL:   parseDuration("FOOD_ITEM_CACHE_TTL", defaultFoodItemCacheTTL),
		FoodItemCacheSweep: parseDuration("FOOD_ITEM_CACHE_SWEEP", defaultFoodItemCacheSweep),
		Ingest: IngestConfig{
			Capacity:      parseInt("INGEST_BUFFER_CAPACITY", defaultIngestCapacity),
			BatchSize:     parseInt("INGEST_BATCH_SIZE", defaultIngestBatchSize),
			FlushInterval: parseDuration("INGEST_FLUSH_INTERVAL", defaultIngestFlushInterval),
			FlushTimeout:  parseDuration("INGEST_FLUSH_TIMEOUT", defaultIngestFlushTimeout),
			WaitTimeout:   parseDuration("INGEST_WAIT_TIMEOUT", defaultIngestWaitTimeout),
			DirectRate:    rate.Limit(parseFloat("INGEST_DIRECT_RATE", defaultIngestDirectRate)),
			DirectBurst:   parseInt("INGEST_DIRECT_BURST", defaultIngestDirectBurst),
		},
	}
	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseList(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			values = append(values, part)
		}
	}

	if len(values) == 0 {
		return fallback
	}
	return values
}

func parseDuration(key string, fallback time.Duration) time.Duration {
	if raw := strings.TrimSpace(os.Getenv(key)); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}

func parseInt(key string, fallback int) int {
	if raw := strings.TrimSpace(os.Getenv(key)); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}

// parseFloat accepts negative values so INGEST_DIRECT_RATE=-1 can force buffering.
func parseFloat(key string, fallback float64) float64 {
	if raw := strings.TrimSpace(os.Getenv(key)); raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil && parsed != 0 {
			return parsed
		}
	}
	return fallback
}
