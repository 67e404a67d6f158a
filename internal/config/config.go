package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost           string
	DBPort           string
	DBUser           string
	DBPassword       string
	DBName           string
	DBSSLMode        string
	ServerPort       string
	CountryCodesPath string
	BinTablePath     string
	ArchiveEnabled   string
}

// New loads configuration from environment variables (a .env file is
// honored when present). The decision archive is optional: if
// TXNPROC_ARCHIVE_ENABLED != "true" the service runs compute-only and no
// database connection is made.
func New() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:           getEnv("TXNPROC_POSTGRES_HOST", "localhost"),
		DBPort:           getEnv("TXNPROC_POSTGRES_PORT", "5432"),
		DBUser:           getEnv("TXNPROC_POSTGRES_USER", "postgres"),
		DBPassword:       getEnv("TXNPROC_POSTGRES_PASSWORD", "password"),
		DBName:           getEnv("TXNPROC_POSTGRES_DB", "txnproc"),
		DBSSLMode:        getEnv("TXNPROC_POSTGRES_SSLMODE", "disable"),
		ServerPort:       getEnv("TXNPROC_SERVER_PORT", "8080"),
		CountryCodesPath: getEnv("TXNPROC_COUNTRY_CODES_PATH", "country_codes.txt"),
		BinTablePath:     getEnv("TXNPROC_BIN_TABLE_PATH", "bins.csv"),
		ArchiveEnabled:   os.Getenv("TXNPROC_ARCHIVE_ENABLED"),
	}

	if cfg.ArchiveEnabled == "true" {
		if cfg.DBUser == "" || cfg.DBHost == "" || cfg.DBName == "" {
			return nil, fmt.Errorf("missing required env for archive database: TXNPROC_POSTGRES_USER/HOST/DB")
		}
	}

	return cfg, nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

func (c *Config) Addr() string {
	return ":" + c.ServerPort
}

// ArchiveOn reports whether the Postgres decision archive should be
// connected and used.
func (c *Config) ArchiveOn() bool {
	return c.ArchiveEnabled == "true"
}

// getEnv fetches environment variable or returns default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
