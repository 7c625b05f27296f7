package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds application configuration
type Config struct {
	Port        string
	CorsOrigins string

	DBDriver       string // postgres, mysql, sqlite
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBSSLMode      string
	DBMaxOpenConns int
	DBMaxIdleConns int

	JWTKey    string
	JWTTTL    time.Duration
	SaltRound int

	LogLevel  string
	LogFormat string

	RedisURL         string
	ContactRateLimit int // requests per minute per IP on public forms
	LoginRateLimit   int

	SendgridAPIKey  string
	EmailSender     string
	EmailSenderName string
	NotifyWebhook   string

	NotificationStore string // sql, mongo
	MongoURI          string
	MongoDB           string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	UploadDir      string

	ReminderCron   string
	MetricsEnabled bool
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

const defaultJWTKey = "defaultSecret"

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:        getEnv("PORT", "3000"),
		CorsOrigins: getEnv("CORS_ORIGINS", "*"),

		DBDriver:       strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", "postgres"),
		DBName:         getEnv("DB_NAME", "learnhub"),
		DBSSLMode:      getEnv("DB_SSLMODE", "disable"),
		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 10),
		DBMaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),

		JWTKey:    getEnv("JWT_SECRET_KEY", defaultJWTKey),
		JWTTTL:    getEnvDuration("JWT_TTL", 24*time.Hour),
		SaltRound: getEnvInt("SALT_ROUND", 10),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		RedisURL:         getEnv("REDIS_URL", ""),
		ContactRateLimit: getEnvInt("CONTACT_RATE_LIMIT", 5),
		LoginRateLimit:   getEnvInt("LOGIN_RATE_LIMIT", 10),

		SendgridAPIKey:  getEnv("SENDGRID_API_KEY", ""),
		EmailSender:     getEnv("EMAIL_SENDER", "no-reply@learnhub.local"),
		EmailSenderName: getEnv("EMAIL_SENDER_NAME", "LearnHub"),
		NotifyWebhook:   getEnv("NOTIFY_WEBHOOK_URL", ""),

		NotificationStore: strings.ToLower(getEnv("NOTIFICATION_STORE", "sql")),
		MongoURI:          getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:           getEnv("MONGO_DB", "learnhub"),

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", ""),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getEnv("MINIO_BUCKET", "learnhub"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),
		UploadDir:      getEnv("UPLOAD_DIR", "./uploads"),

		ReminderCron:   getEnv("REMINDER_CRON", "0 * * * *"),
		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == defaultJWTKey {
		log.Warn().Msg("Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.SaltRound < 4 || AppConfig.SaltRound > 31 {
		log.Warn().Int("salt_round", AppConfig.SaltRound).Msg("SALT_ROUND out of bcrypt range, using 10")
		AppConfig.SaltRound = 10
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Error converting environment variable to int")
		return defaultValue
	}
	return intValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Error converting environment variable to bool")
		return defaultValue
	}
	return b
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Error converting environment variable to duration")
		return defaultValue
	}
	return d
}
