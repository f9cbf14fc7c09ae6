package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable.
type Config struct {
	Env          string // application environment; "production" hides stacks
	Port         string // HTTP port to listen on
	MongoURI     string // MongoDB connection string
	MongoDB      string // database name
	JWTSecret    string // secret used to sign JWTs
	AccessTTLMin int    // access token time-to-live in minutes
	BcryptCost   int    // bcrypt cost for password hashing
	LogLevel     string // debug, info, warn or error
	SentryDSN    string // error reporting is off when empty
	TrustProxy   bool   // take the client address from X-Forwarded-For
}

// Load reads configuration values from environment variables. Required
// variables are enforced by must() and missing values cause the program to
// exit with a fatal log message.
func Load() Config {
	return Config{
		Env:          envStr("APP_ENV", "development"),
		Port:         envStr("APP_PORT", "5000"),
		MongoURI:     must("MONGODB_URI"),
		MongoDB:      envStr("MONGODB_DATABASE", "crm"),
		JWTSecret:    must("JWT_SECRET"),
		AccessTTLMin: envInt("ACCESS_TOKEN_TTL_MIN", 30*24*60),
		BcryptCost:   envInt("BCRYPT_COST", 10),
		LogLevel:     envStr("LOG_LEVEL", "info"),
		SentryDSN:    os.Getenv("SENTRY_DSN"),
		TrustProxy:   envBool("TRUST_PROXY", false),
	}
}

// IsProduction reports whether the service runs in production mode.
func (c Config) IsProduction() bool { return c.Env == "production" }

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
