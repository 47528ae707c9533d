package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const devJWTSecret = "default_super_secret_key"

type Config struct {
	Port    string
	GinMode string

	DBDriver   string // postgres or sqlite
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBPath     string // sqlite file, ":memory:" allowed
	DBURL      string
	DBLogSQL   bool

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	RedisAddr string
	RedisDB   int

	CORSOrigins []string
	LogLevel    slog.Level
	SeedDemo    bool
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getbool(k string) bool {
	b, _ := strconv.ParseBool(os.Getenv(k))
	return b
}

func getduration(k string, d time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return d
}

// Load reads configs/.env when present, then the process environment.
func Load() *Config {
	if err := godotenv.Load("configs/.env"); err != nil {
		slog.Debug("no configs/.env file loaded", "error", err)
	}

	c := &Config{
		Port:    getenv("PORT", "8080"),
		GinMode: getenv("GIN_MODE", "debug"),

		DBDriver:   getenv("DB_DRIVER", "postgres"),
		DBHost:     getenv("DB_HOST", "localhost"),
		DBPort:     getenv("DB_PORT", "5432"),
		DBUser:     getenv("DB_USER", "postgres"),
		DBPassword: getenv("DB_PASSWORD", "postgres"),
		DBName:     getenv("DB_NAME", "solarflow"),
		DBSSLMode:  getenv("DB_SSLMODE", "disable"),
		DBPath:     getenv("DB_PATH", "solarflow.db"),
		DBURL:      os.Getenv("DATABASE_URL"),
		DBLogSQL:   getbool("DB_LOG_SQL"),

		JWTSecret:       os.Getenv("JWT_SECRET"),
		AccessTokenTTL:  getduration("ACCESS_TOKEN_TTL", 24*time.Hour),
		RefreshTokenTTL: getduration("REFRESH_TOKEN_TTL", 7*24*time.Hour),

		RedisAddr: os.Getenv("REDIS_ADDR"),

		CORSOrigins: []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5000"},
		LogLevel:    slog.LevelInfo,
		SeedDemo:    getbool("SEED_DEMO"),
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RedisDB = n
		}
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(v)); err == nil {
			c.LogLevel = lvl
		}
	}
	if c.JWTSecret == "" && !c.IsRelease() {
		c.JWTSecret = devJWTSecret // development fallback only
	}
	return c
}

func (c *Config) IsRelease() bool { return c.GinMode == "release" }

func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("missing PORT")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("invalid PORT %q: %w", c.Port, err)
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required in release mode")
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return errors.New("token TTLs must be positive")
	}
	switch c.DBDriver {
	case "postgres":
		if c.DBURL == "" && (c.DBHost == "" || c.DBName == "" || c.DBUser == "") {
			return errors.New("missing database config (DB_HOST/DB_NAME/DB_USER or DATABASE_URL)")
		}
	case "sqlite":
		if c.DBPath == "" {
			return errors.New("missing DB_PATH for sqlite driver")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	return nil
}

// PostgresDSN prefers DATABASE_URL and otherwise assembles a URL from the DB_* parts.
func (c *Config) PostgresDSN() string {
	if c.DBURL != "" {
		return c.DBURL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.DBSSLMode),
	}
	return u.String()
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
