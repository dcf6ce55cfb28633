package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/tair/shop-inventory/pkg/database"
	"github.com/tair/shop-inventory/pkg/tracing"
)

type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Database database.Config
	Tracing  tracing.Config
	Policy   PolicyConfig
	Sales    SalesConfig
	Reports  ReportsConfig
}

type AppConfig struct {
	Name string
	Env  string
}

type LoggerConfig struct {
	Level string
}

type PolicyConfig struct {
	AssemblyBuffer       int
	HighPriorityStoreMax int
	AssemblyDestination  string
	AutoReconcile        bool
}

type SalesConfig struct {
	TaxRate float64
}

type ReportsConfig struct {
	// ExportDir receives CSV reports after a run. Empty disables export.
	ExportDir string
}

// IsDevelopment reports whether the console log writer should be used.
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development" || c.App.Env == "dev"
}

// Load reads an optional .env file and then the process environment.
func Load() *Config {
	// Missing .env is fine; the environment still applies.
	_ = godotenv.Load(".env")
	return FromEnv()
}

// FromEnv builds the configuration from the process environment only.
func FromEnv() *Config {
	appName := getEnv("APP_NAME", "shop-inventory")

	return &Config{
		App: AppConfig{
			Name: appName,
			Env:  getEnv("APP_ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Database: database.Config{
			Driver:          getEnv("DB_DRIVER", database.DriverSQLite),
			Path:            getEnv("DB_PATH", "inventory.db"),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			DBName:          getEnv("DB_NAME", "inventory"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: time.Duration(getEnvInt("DB_CONN_MAX_LIFETIME", 300)) * time.Second,
			LogLevel:        getEnv("DB_LOG_LEVEL", "warn"),
		},
		Tracing: tracing.Config{
			Enabled:        getEnvBool("TRACING_ENABLED", false),
			ServiceName:    appName,
			JaegerEndpoint: getEnv("JAEGER_ENDPOINT", ""),
		},
		Policy: PolicyConfig{
			AssemblyBuffer:       getEnvInt("POLICY_ASSEMBLY_BUFFER", 5),
			HighPriorityStoreMax: getEnvInt("POLICY_HIGH_PRIORITY_STORE_MAX", 2),
			AssemblyDestination:  getEnv("POLICY_ASSEMBLY_DESTINATION", "warehouse"),
			AutoReconcile:        getEnvBool("POLICY_AUTO_RECONCILE", true),
		},
		Sales: SalesConfig{
			TaxRate: getEnvFloat("SALES_TAX_RATE", 0.18),
		},
		Reports: ReportsConfig{
			ExportDir: getEnv("REPORT_EXPORT_DIR", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}
