package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the complete runtime configuration of the cash and bank service.
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Ledger      LedgerConfig
	Idempotency IdempotencyConfig
	Log         LogConfig
}

type ServerConfig struct {
	Port           string
	RequestTimeout time.Duration
	AllowedOrigins []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func (c RedisConfig) Addr() string { return c.Host + ":" + c.Port }

type JWTConfig struct {
	SecretKey string
}

// LedgerConfig controls balance rules and reporting periods.
type LedgerConfig struct {
	AllowNegativeBalance bool
	FiscalYearStartMonth time.Month
	DefaultRange         string
	Currency             string
	Timezone             string
}

type IdempotencyConfig struct {
	TTL time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

var envBindings = map[string]string{
	"server.port":                    "PORT",
	"server.request_timeout":         "SERVER_REQUEST_TIMEOUT",
	"server.allowed_origins":         "ALLOWED_ORIGINS",
	"database.host":                  "DATABASE_HOST",
	"database.port":                  "DATABASE_PORT",
	"database.user":                  "DATABASE_USER",
	"database.password":              "DATABASE_PASSWORD",
	"database.name":                  "DATABASE_NAME",
	"database.ssl_mode":              "DATABASE_SSL_MODE",
	"database.max_open_conns":        "DATABASE_MAX_OPEN_CONNS",
	"database.max_idle_conns":        "DATABASE_MAX_IDLE_CONNS",
	"database.conn_max_lifetime":     "DATABASE_CONN_MAX_LIFETIME",
	"database.auto_migrate":          "DATABASE_AUTO_MIGRATE",
	"redis.host":                     "REDIS_HOST",
	"redis.port":                     "REDIS_PORT",
	"redis.password":                 "REDIS_PASSWORD",
	"redis.db":                       "REDIS_DB",
	"jwt.secret_key":                 "JWT_SECRET_KEY",
	"ledger.allow_negative_balance":  "LEDGER_ALLOW_NEGATIVE_BALANCE",
	"ledger.fiscal_year_start_month": "LEDGER_FISCAL_YEAR_START_MONTH",
	"ledger.default_range":           "LEDGER_DEFAULT_RANGE",
	"ledger.currency":                "LEDGER_CURRENCY",
	"ledger.timezone":                "LEDGER_TIMEZONE",
	"idempotency.ttl":                "IDEMPOTENCY_TTL",
	"log.level":                      "LOG_LEVEL",
	"log.format":                     "LOG_FORMAT",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.request_timeout", 60*time.Second)
	v.SetDefault("server.allowed_origins", "*")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.name", "cashbank")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Minute*5)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("ledger.allow_negative_balance", false)
	v.SetDefault("ledger.fiscal_year_start_month", 4)
	v.SetDefault("ledger.default_range", "Last 30 Days")
	v.SetDefault("ledger.currency", "INR")
	v.SetDefault("ledger.timezone", "Asia/Kolkata")

	v.SetDefault("idempotency.ttl", 24*time.Hour)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Load reads configuration from the optional env file at path and from the
// process environment. Environment variables win over the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, err
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		// env files use variable names, not dotted keys
		for key, env := range envBindings {
			if fileKey := strings.ToLower(env); v.InConfig(fileKey) {
				v.SetDefault(key, v.Get(fileKey))
			}
		}
	}

	month := v.GetInt("ledger.fiscal_year_start_month")
	if month < 1 || month > 12 {
		month = 4
	}

	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("server.port"),
			RequestTimeout: v.GetDuration("server.request_timeout"),
			AllowedOrigins: splitList(v.GetString("server.allowed_origins")),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetString("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			Name:            v.GetString("database.name"),
			SSLMode:         v.GetString("database.ssl_mode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
			AutoMigrate:     v.GetBool("database.auto_migrate"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetString("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			SecretKey: v.GetString("jwt.secret_key"),
		},
		Ledger: LedgerConfig{
			AllowNegativeBalance: v.GetBool("ledger.allow_negative_balance"),
			FiscalYearStartMonth: time.Month(month),
			DefaultRange:         v.GetString("ledger.default_range"),
			Currency:             strings.ToUpper(v.GetString("ledger.currency")),
			Timezone:             v.GetString("ledger.timezone"),
		},
		Idempotency: IdempotencyConfig{
			TTL: v.GetDuration("idempotency.ttl"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}, nil
}

// Location returns the ledger timezone, falling back to UTC when the name
// is unknown.
func (c LedgerConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
