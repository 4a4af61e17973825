package config // package config loads application configuration from environment variables

import (
	"log" // log is used to report configuration errors and halt execution
	"os"  // os provides access to environment variables
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
	Env        string        // application environment (e.g. "dev", "prod")
	Port       string        // HTTP port to listen on
	DBDriver   string        // "mysql" or "sqlite"
	DBUser     string        // database username (mysql)
	DBPass     string        // database password (optional)
	DBHost     string        // database host address (mysql)
	DBPort     string        // database port number (mysql)
	DBName     string        // database name (mysql)
	SQLitePath string        // database file (sqlite)
	JWTSecret  string        // secret used to sign session tokens
	SessionTTL time.Duration // session token lifetime
	BcryptCost int           // bcrypt cost for password hashing
}

// LoadDotEnv reads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set.  A missing file is
// not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}

// Load reads configuration values from environment variables and returns a
// Config.  JWT_SECRET is required; everything else has a development
// default.  MySQL connection variables become required when DB_DRIVER is
// mysql.
func Load() Config {
	cfg := Config{
		Env:        envStr("APP_ENV", "dev"),
		Port:       envStr("APP_PORT", "8080"),
		DBDriver:   envStr("DB_DRIVER", "sqlite"),
		DBPass:     os.Getenv("DB_PASS"),
		SQLitePath: envStr("SQLITE_PATH", "club.db"),
		JWTSecret:  must("JWT_SECRET"),
		SessionTTL: time.Duration(envInt("SESSION_TTL_HOURS", 24)) * time.Hour,
		BcryptCost: envInt("BCRYPT_COST", 10),
	}
	switch cfg.DBDriver {
	case "mysql":
		cfg.DBUser = must("DB_USER")
		cfg.DBHost = must("DB_HOST")
		cfg.DBPort = envStr("DB_PORT", "3306")
		cfg.DBName = must("DB_NAME")
	case "sqlite":
	default:
		log.Fatalf("unsupported DB_DRIVER: %q", cfg.DBDriver)
	}
	return cfg
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
