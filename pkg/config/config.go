package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Reports      ReportsConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ATELIER_APP_ENV" required:"true"`
	Port         string `envconfig:"ATELIER_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"ATELIER_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ATELIER_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ATELIER_DB_DSN"`
	Driver string `envconfig:"ATELIER_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"ATELIER_DB_HOST"`
	Port     int    `envconfig:"ATELIER_DB_PORT" default:"5432"`
	User     string `envconfig:"ATELIER_DB_USER"`
	Password string `envconfig:"ATELIER_DB_PASSWORD"`
	Name     string `envconfig:"ATELIER_DB_NAME"`
	SSLMode  string `envconfig:"ATELIER_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ATELIER_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ATELIER_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ATELIER_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ATELIER_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// ensureDSN assembles a Postgres DSN from discrete parts when ATELIER_DB_DSN
// is not set. SQLite DSNs are file paths and must be provided directly.
func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.Driver == DriverSQLite {
		return fmt.Errorf("ATELIER_DB_DSN is required for the sqlite driver")
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("database config incomplete: need ATELIER_DB_DSN or host/user/name")
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Name,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	d.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"ATELIER_REDIS_URL"`
	Address      string        `envconfig:"ATELIER_REDIS_ADDR"`
	Password     string        `envconfig:"ATELIER_REDIS_PASSWORD"`
	DB           int           `envconfig:"ATELIER_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ATELIER_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ATELIER_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ATELIER_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ATELIER_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ATELIER_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint was configured at all. The report
// cache degrades to direct queries when it is absent.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type ReportsConfig struct {
	SummaryCacheTTL   time.Duration `envconfig:"ATELIER_REPORTS_SUMMARY_CACHE_TTL" default:"60s"`
	LowStockThreshold int           `envconfig:"ATELIER_REPORTS_LOW_STOCK_THRESHOLD" default:"10"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ATELIER_FEATURE_AUTO_MIGRATE" default:"false"`
}
