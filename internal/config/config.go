package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	ServerPort string
	// TrustProxy honours X-Forwarded-For and X-Real-IP for the client address
	TrustProxy bool

	SecretKey     string
	SessionMaxAge int
	SessionSecure bool

	RedisURL string

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicURL       string

	LogLevel  string
	LogFormat string

	LoginRatePerMinute int
}

// StorageEnabled reports whether profile image uploads can be stored.
func (c *Config) StorageEnabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" &&
		c.R2BucketName != "" && c.R2PublicURL != ""
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading it, relying on environment variables")
	}

	sessionMaxAge, err := strconv.Atoi(os.Getenv("SESSION_MAX_AGE"))
	if err != nil || sessionMaxAge <= 0 {
		sessionMaxAge = 7 * 24 * 3600
	}

	sessionSecure, _ := strconv.ParseBool(os.Getenv("SESSION_SECURE"))
	trustProxy, _ := strconv.ParseBool(os.Getenv("TRUST_PROXY"))

	loginRate, err := strconv.Atoi(os.Getenv("LOGIN_RATE_PER_MINUTE"))
	if err != nil || loginRate <= 0 {
		loginRate = 20
	}

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	secretKey := os.Getenv("SECRET_KEY")
	if secretKey == "" {
		log.Println("SECRET_KEY is not set, using an insecure development key")
		secretKey = "it's a secret"
	}

	sslMode := os.Getenv("DB_SSLMODE")
	if sslMode == "" {
		sslMode = "disable"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	return &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBHost:      os.Getenv("DB_HOST"),
		DBPort:      os.Getenv("DB_PORT"),
		DBUser:      os.Getenv("DB_USER"),
		DBPassword:  os.Getenv("DB_PASSWORD"),
		DBName:      os.Getenv("DB_NAME"),
		DBSSLMode:   sslMode,

		ServerPort: serverPort,
		TrustProxy: trustProxy,

		SecretKey:     secretKey,
		SessionMaxAge: sessionMaxAge,
		SessionSecure: sessionSecure,

		RedisURL: os.Getenv("REDIS_URL"),

		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicURL:       os.Getenv("R2_PUBLIC_URL"),

		LogLevel:  logLevel,
		LogFormat: os.Getenv("LOG_FORMAT"),

		LoginRatePerMinute: loginRate,
	}, nil
}
