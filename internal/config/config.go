package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	// Server
	Port        string
	GRPCPort    string
	Environment string
	LogLevel    string
	// AllowedOrigins are extra browser origins accepted on draft websockets
	AllowedOrigins []string

	// Snapshot storage
	DBDriver    string
	SQLiteFile  string
	DatabaseURL string

	// Events
	NATSURL     string
	NATSSubject string

	// Pick analytics
	ClickHouseAddr     string
	ClickHouseDB       string
	ClickHouseUser     string
	ClickHousePassword string

	// Authentik
	AuthentikBaseURL      string
	AuthentikClientID     string
	AuthentikClientSecret string
	AuthentikRedirectURL  string

	// Draft
	PlayersFile      string
	PlayersSync      bool
	MaxRounds        int
	DefaultFormation string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "3000"),
		GRPCPort:    getEnv("GRPC_PORT", "50051"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		AllowedOrigins: getEnvList("ALLOWED_ORIGINS"),

		DBDriver:    strings.ToLower(getEnv("DB_DRIVER", "memory")),
		SQLiteFile:  getEnv("SQLITE_FILE", "dev.sqlite"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		NATSURL:     getEnv("NATS_URL", "nats://localhost:4222"),
		NATSSubject: getEnv("NATS_SUBJECT", "draft.events"),

		ClickHouseAddr:     getEnv("CLICKHOUSE_ADDR", "localhost:9000"),
		ClickHouseDB:       getEnv("CLICKHOUSE_DB", "default"),
		ClickHouseUser:     getEnv("CLICKHOUSE_USER", "default"),
		ClickHousePassword: getEnv("CLICKHOUSE_PASSWORD", ""),

		AuthentikBaseURL:      getEnv("AUTHENTIK_BASE_URL", ""),
		AuthentikClientID:     getEnv("AUTHENTIK_CLIENT_ID", ""),
		AuthentikClientSecret: getEnv("AUTHENTIK_CLIENT_SECRET", ""),
		AuthentikRedirectURL:  getEnv("AUTHENTIK_REDIRECT_URL", "http://localhost:3000/auth/callback"),

		PlayersFile:      getEnv("PLAYERS_FILE", ""),
		PlayersSync:      getEnvBool("PLAYERS_SYNC", false),
		MaxRounds:        getEnvInt("MAX_ROUNDS", 18),
		DefaultFormation: getEnv("DEFAULT_FORMATION", "4-3-3 Flat"),
	}

	switch cfg.DBDriver {
	case "memory", "sqlite":
	case "postgres":
		if cfg.DatabaseURL == "" && !cfg.IsDevelopment() {
			return nil, fmt.Errorf("DATABASE_URL environment variable is required for postgres driver")
		}
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q (valid: memory, sqlite, postgres)", cfg.DBDriver)
	}

	if cfg.MaxRounds < 1 {
		return nil, fmt.Errorf("MAX_ROUNDS must be at least 1, got %d", cfg.MaxRounds)
	}

	if !cfg.IsDevelopment() {
		if cfg.AuthentikBaseURL == "" || cfg.AuthentikClientID == "" || cfg.AuthentikClientSecret == "" {
			return nil, fmt.Errorf("AUTHENTIK_BASE_URL, AUTHENTIK_CLIENT_ID, and AUTHENTIK_CLIENT_SECRET are required outside development")
		}
	}

	return cfg, nil
}

// IsDevelopment reports whether the in-process stand-ins (embedded NATS,
// mock auth, in-memory analytics) should be used.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "" || c.Environment == "development"
}

// UseMockPostgres reports whether the postgres driver should be served by the
// SQLite stand-in because no DATABASE_URL is set in development
func (c *Config) UseMockPostgres() bool {
	return c.DBDriver == "postgres" && c.DatabaseURL == "" && c.IsDevelopment()
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
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

func getEnvList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
