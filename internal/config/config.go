package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the configuration settings for the earthquake alerting
// service. It includes the environment, server ports, scheduler timings,
// Firebase credentials, and database configuration.
//
// Fields:
// - Env: The current environment (e.g., local, dev, prod).
// - APIPort: The port for the public HTTP API.
// - HealthPort: The port for the monitoring (healthz/metrics) server.
// - Interval: The duration between alert scheduler passes.
// - EndpointTimeout: The deadline for processing a single registration or request.
// - FirebaseCredentials: Path to the Firebase service account file.
// - Database: Configuration settings for the PostgreSQL database.
type Config struct {
	Env                 string         `yaml:"env"`              // Env is the current environment: local, dev, prod.
	APIPort             int            `yaml:"api.port"`         // APIPort is the public API server port.
	HealthPort          int            `yaml:"health.port"`      // HealthPort is the monitoring server port.
	Interval            time.Duration  `yaml:"alerts.interval"`  // The duration between alert passes.
	EndpointTimeout     time.Duration  `yaml:"alerts.timeout"`   // Deadline for one registration or request.
	FirebaseCredentials string         `yaml:"firebase.credentials"` // Path to the Firebase service account file.
	Database            PostgresConfig `yaml:"postgres"`         // Database holds the postgres database configuration
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string `yaml:"host"`                        // Host is the database server address.
	Port     string `yaml:"port"     env-default:"5432"` // Port is the database server port.
	User     string `yaml:"user"`                        // User is the database user.
	Password string `yaml:"password"`                    // Password is the database user's password.
	Name     string `yaml:"db_name"`                     // Name is the name of the database.
}

// MustLoad loads the configuration from environment variables and returns a Config struct.
func MustLoad() *Config {
	_ = godotenv.Load()

	interval, err := time.ParseDuration(setDefaultEnv("TREMOR_INTERVAL", "5m"))
	if err != nil {
		panic("failed to parse interval from configuration")
	}

	endpointTimeout, err := time.ParseDuration(setDefaultEnv("TREMOR_ENDPOINT_TIMEOUT", "30s"))
	if err != nil {
		panic("failed to parse endpoint timeout from configuration")
	}

	apiPort, err := strconv.Atoi(setDefaultEnv("TREMOR_API_PORT", "5000"))
	if err != nil {
		panic("failed to parse port for API server from configuration")
	}

	healthPort, err := strconv.Atoi(setDefaultEnv("TREMOR_HEALTH_PORT", "8080"))
	if err != nil {
		panic("failed to parse port for monitoring server from configuration")
	}

	return &Config{
		Env:                 setDefaultEnv("TREMOR_ENV", "production"),
		APIPort:             apiPort,
		HealthPort:          healthPort,
		Interval:            interval,
		EndpointTimeout:     endpointTimeout,
		FirebaseCredentials: os.Getenv("TREMOR_FIREBASE_CREDENTIALS"),
		Database: PostgresConfig{
			Host:     os.Getenv("DB_HOST"),
			Port:     os.Getenv("DB_PORT"),
			User:     os.Getenv("DB_USERNAME"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
		},
	}
}

func setDefaultEnv(key, override string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		value = override
	}

	return value
}
