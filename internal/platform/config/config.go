package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	strutil "slfcert/pkg/platform/strings"
)

const (
	// CacheTTL is the fixed lifetime of cached inspections and templates.
	CacheTTL = 5 * time.Minute

	defaultGeotagTimeout      = 15 * time.Second
	defaultBatchConcurrency   = 8
	defaultNotificationTopic  = "slf.notifications"
	defaultDevelopmentSigning = "dev-secret-key-change-in-production"
	defaultAddr               = ":8080"
	defaultRedisPoolSize      = 10
	defaultRedisMinIdleConns  = 2
	defaultRedisDialTimeout   = 5 * time.Second
	defaultRedisReadTimeout   = 3 * time.Second
	defaultRedisWriteTimeout  = 3 * time.Second
)

// Server captures process level configuration.
type Server struct {
	Addr             string
	DatabaseURL      string
	JWTSigningKey    string
	JWTIssuer        string
	JWTAudience      string
	ChecklistPath    string
	GeotagTimeout    time.Duration
	BatchConcurrency int
	Redis            RedisConfig
	Kafka            KafkaConfig
}

// RedisConfig configures the shared inspection cache.
// An empty URL selects the in-process cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the notification event publisher.
// No brokers disables publishing.
type KafkaConfig struct {
	Brokers           []string
	NotificationTopic string
}

// Load reads a .env file when present and then builds the config from the
// environment. Variables already set in the environment win over .env.
func Load(envFiles ...string) (Server, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return Server{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	geotagTimeout, err := durationEnv("GEOTAG_TIMEOUT", defaultGeotagTimeout)
	if err != nil {
		return Server{}, err
	}
	concurrency, err := intEnv("BATCH_UPDATE_CONCURRENCY", defaultBatchConcurrency)
	if err != nil {
		return Server{}, err
	}
	if concurrency < 1 {
		return Server{}, fmt.Errorf("BATCH_UPDATE_CONCURRENCY must be positive, got %d", concurrency)
	}

	signingKey := os.Getenv("JWT_SIGNING_KEY")
	if signingKey == "" {
		// Development default; production deployments set JWT_SIGNING_KEY.
		signingKey = defaultDevelopmentSigning
	}

	return Server{
		Addr:             stringEnv("SLF_ADDR", defaultAddr),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		JWTSigningKey:    signingKey,
		JWTIssuer:        stringEnv("JWT_ISSUER", "slf-auth"),
		JWTAudience:      stringEnv("JWT_AUDIENCE", "slf-api"),
		ChecklistPath:    os.Getenv("CHECKLIST_CONFIG_PATH"),
		GeotagTimeout:    geotagTimeout,
		BatchConcurrency: concurrency,
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     defaultRedisPoolSize,
			MinIdleConns: defaultRedisMinIdleConns,
			DialTimeout:  defaultRedisDialTimeout,
			ReadTimeout:  defaultRedisReadTimeout,
			WriteTimeout: defaultRedisWriteTimeout,
		},
		Kafka: KafkaConfig{
			Brokers:           strutil.DedupeAndTrim(strings.Split(os.Getenv("KAFKA_BROKERS"), ",")),
			NotificationTopic: stringEnv("KAFKA_NOTIFICATION_TOPIC", defaultNotificationTopic),
		},
	}, nil
}

func stringEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}

func intEnv(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}
