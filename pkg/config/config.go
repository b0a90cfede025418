package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	ModeDebug   = "debug"
	ModeRelease = "release"

	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

var ErrMissingJWTSecret = errors.New("JWT_SECRET is required in release mode")

// Config adalah seluruh konfigurasi runtime yang dikenali aplikasi.
type Config struct {
	Port string
	Mode string

	DBDriver    string
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string

	JWTSecret string
	JWTTTL    time.Duration

	// NodeID dipakai generator snowflake untuk trx_id
	NodeID int64

	// akun kepala_gudang awal
	AdminEmail    string
	AdminPassword string

	// bearer untuk scrape /metrics, kosong = endpoint mati
	MetricsToken string
}

// Load membaca .env (jika ada) lalu environment variable.
func Load() (*Config, error) {
	// .env opsional, di production env datang dari sistem
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv membaca konfigurasi hanya dari environment variable.
func FromEnv() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "3000")
	v.SetDefault("APP_MODE", ModeRelease)
	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("NODE_ID", 1)
	v.SetDefault("ADMIN_EMAIL", "admin@example.com")
	v.SetDefault("ADMIN_PASSWORD", "admin123")

	cfg := &Config{
		Port:        v.GetString("PORT"),
		Mode:        v.GetString("APP_MODE"),
		DBDriver:    v.GetString("DB_DRIVER"),
		DatabaseURL: v.GetString("DATABASE_URL"),
		DBHost:      v.GetString("DB_HOST"),
		DBPort:      v.GetString("DB_PORT"),
		DBUser:      v.GetString("DB_USER"),
		DBPassword:  v.GetString("DB_PASSWORD"),
		DBName:      v.GetString("DB_NAME"),
		JWTSecret:   v.GetString("JWT_SECRET"),
		JWTTTL:      v.GetDuration("JWT_TTL"),
		NodeID:      v.GetInt64("NODE_ID"),

		AdminEmail:    v.GetString("ADMIN_EMAIL"),
		AdminPassword: v.GetString("ADMIN_PASSWORD"),

		MetricsToken: v.GetString("METRICS_TOKEN"),
	}

	if cfg.DBDriver != DriverPostgres && cfg.DBDriver != DriverMySQL {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if cfg.JWTTTL <= 0 {
		cfg.JWTTTL = 24 * time.Hour
	}
	if cfg.JWTSecret == "" {
		if cfg.Mode != ModeDebug {
			return nil, ErrMissingJWTSecret
		}
		cfg.JWTSecret = "tabung-dev-secret-change-me"
	}

	return cfg, nil
}

func (c *Config) IsDebug() bool {
	return c.Mode == ModeDebug
}
