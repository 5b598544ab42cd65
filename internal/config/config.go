package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds the application settings
type Config struct {
	ServerAddr string // HTTP listen address
	LogLevel   string // logrus level

	DBDriver   string // postgres or sqlite
	DBHost     string // Database host
	DBPort     string // Database port
	DBUser     string // Database user
	DBPassword string // Database password
	DBName     string // Database name
	DBPath     string // SQLite file

	JWTSecret   string        // JWT signing secret
	TokenExpiry time.Duration // Token lifetime
	HMACSecret  string        // HMAC key for identifier lookup
	PGPKeyPath  string        // PGP key encrypting identifiers

	GeminiAPIKey   string // empty: formula only
	GeminiModel    string
	GeminiTimeout  time.Duration
	FallbackDelay  time.Duration // simulated analysis time without AI
	RiskParamsPath string        // YAML overrides for the formula

	OTPDemoCode   string
	OTPTTL        time.Duration
	OTPMaxAttempt int

	KCCInterestRate    float64 // annual rate, %
	KCCTermMonths      int
	AutoPayDay         int
	InsurancePremium   float64
	EmergencyRelief    float64
	EmergencyScanDelay time.Duration
	WorkflowTTL        time.Duration

	ReminderSchedule string          // cron spec
	WelcomeDelays    []time.Duration // welcome message offsets

	SMTP SMTPConfig
}

// SMTPConfig - outgoing mail settings
type SMTPConfig struct {
	Enabled            bool
	Host               string
	Port               int
	User               string
	Password           string
	InsecureSkipVerify bool
}

// LoadConfig loads the configuration from .env and the environment
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Warn(".env file not found, using environment")
	}

	config := &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "loan4farm"),
		DBPath:     getEnv("DB_PATH", "loan4farm.db"),

		JWTSecret:   getEnv("JWT_SECRET", "default-secret-key"),
		TokenExpiry: getDuration("TOKEN_EXPIRY", 24*time.Hour),
		HMACSecret:  os.Getenv("HMAC_SECRET"),
		PGPKeyPath:  getEnv("PGP_KEY_PATH", "config/pgp-key.asc"),

		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiTimeout:  getDuration("GEMINI_TIMEOUT", 20*time.Second),
		FallbackDelay:  getDuration("FALLBACK_DELAY", time.Second),
		RiskParamsPath: os.Getenv("RISK_PARAMS_PATH"),

		OTPDemoCode:   getEnv("OTP_DEMO_CODE", "123456"),
		OTPTTL:        getDuration("OTP_TTL", 60*time.Second),
		OTPMaxAttempt: getInt("OTP_MAX_ATTEMPTS", 5),

		KCCInterestRate:    getFloat("KCC_INTEREST_RATE", 7.0),
		KCCTermMonths:      getInt("KCC_TERM_MONTHS", 12),
		AutoPayDay:         getInt("AUTOPAY_DAY", 5),
		InsurancePremium:   getFloat("INSURANCE_PREMIUM", 187),
		EmergencyRelief:    getFloat("EMERGENCY_RELIEF_AMOUNT", 10000),
		EmergencyScanDelay: getDuration("EMERGENCY_SCAN_DELAY", 4*time.Second),
		WorkflowTTL:        getDuration("WORKFLOW_TTL", 30*time.Minute),

		ReminderSchedule: getEnv("REMINDER_SCHEDULE", "0 8 5 * *"),
		WelcomeDelays:    getDurations("WELCOME_DELAYS", []time.Duration{2 * time.Second, 6 * time.Second, 10 * time.Second}),

		SMTP: SMTPConfig{
			Enabled:            os.Getenv("EMAIL_SENDER_ENABLED") == "true",
			Host:               os.Getenv("SMTP_HOST"),
			Port:               getInt("SMTP_PORT", 587),
			User:               os.Getenv("SMTP_USER"),
			Password:           os.Getenv("SMTP_PASS"),
			InsecureSkipVerify: os.Getenv("INSECURE_SKIP_VERIFY") == "true",
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks settings that would fail later at runtime
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if len(c.HMACSecret) < 32 {
		return fmt.Errorf("HMAC_SECRET must be at least 32 bytes")
	}
	if c.KCCTermMonths <= 0 {
		return fmt.Errorf("KCC_TERM_MONTHS must be positive")
	}
	if c.AutoPayDay < 1 || c.AutoPayDay > 28 {
		return fmt.Errorf("AUTOPAY_DAY must be between 1 and 28")
	}
	if c.OTPMaxAttempt <= 0 {
		return fmt.Errorf("OTP_MAX_ATTEMPTS must be positive")
	}
	return nil
}

// DSN returns the connection string for the configured driver
func (c *Config) DSN() string {
	if c.DBDriver == "sqlite" {
		return c.DBPath
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName,
	)
}

// getEnv returns the variable or the default when unset
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return d
}

func getInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func getFloat(key string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultValue
	}
	return v
}

// getDurations parses a comma separated list, e.g. "2s,6s,10s"
func getDurations(key string, defaultValue []time.Duration) []time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	var out []time.Duration
	for _, part := range strings.Split(raw, ",") {
		d, err := time.ParseDuration(strings.TrimSpace(part))
		if err != nil {
			return defaultValue
		}
		out = append(out, d)
	}
	return out
}
