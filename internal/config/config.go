package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/maxviazov/cricket-tournament-service/internal/logger"
)

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	App      AppConfig           `mapstructure:"app"`
	Logger   logger.LoggerConfig `mapstructure:"logger"`
	Storage  StorageConfig       `mapstructure:"storage"`
	Postgres PostgresConfig      `mapstructure:"postgres"`
	HTTP     HTTPConfig          `mapstructure:"http"`
}

type AppConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
	Env     string `mapstructure:"env"`
	Port    int    `mapstructure:"port" validate:"min=1,max=65535"`
}

type StorageConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=postgres memory"`
}

// PostgresConfig durations are in seconds, matching the YAML layout.
type PostgresConfig struct {
	Host              string `mapstructure:"host" validate:"required"`
	Port              int    `mapstructure:"port" validate:"min=1,max=65535"`
	User              string `mapstructure:"user" validate:"required"`
	Password          string `mapstructure:"password" validate:"required"`
	DBName            string `mapstructure:"db" validate:"required"`
	SSLMode           string `mapstructure:"sslmode"`
	MaxConns          int32  `mapstructure:"max_conns" validate:"min=0"`
	MinConns          int32  `mapstructure:"min_conns" validate:"min=0"`
	MaxConnLifetime   int    `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   int    `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod int    `mapstructure:"health_check_period"`
	MigrateOnStart    bool   `mapstructure:"migrate_on_start"`
}

type HTTPConfig struct {
	ReadTimeout        time.Duration `mapstructure:"read_timeout"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout"`
	CORSAllowedOrigins []string      `mapstructure:"cors_allowed_origins"`
	// RateLimitRPS <= 0 disables the limiter.
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst" validate:"min=0"`
}

// DSN assembles a postgres URL; url.URL takes care of escaping credentials.
func (p PostgresConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", p.Host, p.Port),
		Path:   p.DBName,
	}
	if p.User != "" || p.Password != "" {
		u.User = url.UserPassword(p.User, p.Password)
	}
	q := u.Query()
	if p.SSLMode != "" {
		q.Set("sslmode", p.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Validate checks the loaded config. Logger settings are validated by logger.New after defaults apply;
// Postgres settings only matter for the postgres driver.
func (c *Config) Validate() error {
	v := validator.New()
	except := []string{"Logger"}
	if c.Storage.Driver == DriverMemory {
		except = append(except, "Postgres")
	}
	if err := v.StructExcept(c, except...); err != nil {
		return fmt.Errorf("config validation error: %w", err)
	}
	return nil
}
