// Package config loads application configuration from environment variables.
package config

import (
	"log"
	"os"
	"strconv"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. Required variables are enforced by must() and a
// missing value aborts startup with a fatal log message.
type Config struct {
	Env       string // application environment (e.g. "dev", "prod")
	Port      string // HTTP port to listen on
	DBUser    string // database username
	DBPass    string // database password (optional)
	DBHost    string // database host address
	DBPort    string // database port number
	DBName    string // database name
	JWTSecret string // secret used to verify access tokens
	AMQPURL   string // broker URL for booking lifecycle events

	S3Region    string // object store region
	S3Endpoint  string // custom endpoint for MinIO-style deployments (optional)
	S3Bucket    string // bucket holding sealed documents
	S3AccessKey string // static access key
	S3SecretKey string // static secret key

	VaultMaxBytes int // upload ceiling for vault documents, in bytes
	PresignTTLMin int // lifetime of presigned document links, in minutes
}

// Load reads configuration values from environment variables and returns a
// Config. Optional values fall back to sensible defaults.
func Load() Config {
	return Config{
		Env:       must("APP_ENV"),
		Port:      must("APP_PORT"),
		DBUser:    must("DB_USER"),
		DBPass:    os.Getenv("DB_PASS"), // empty allowed
		DBHost:    must("DB_HOST"),
		DBPort:    must("DB_PORT"),
		DBName:    must("DB_NAME"),
		JWTSecret: must("JWT_SECRET"),
		AMQPURL:   must("RABBITMQ_URL"),

		S3Region:    must("S3_REGION"),
		S3Endpoint:  os.Getenv("S3_ENDPOINT"), // empty means real AWS
		S3Bucket:    must("S3_BUCKET"),
		S3AccessKey: must("S3_ACCESS_KEY"),
		S3SecretKey: must("S3_SECRET_KEY"),

		VaultMaxBytes: intOr("VAULT_MAX_BYTES", 10<<20),
		PresignTTLMin: intOr("PRESIGN_TTL_MIN", 15),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// intOr converts an optional environment variable into an integer, falling
// back to def when unset. An unparsable value is a startup error.
func intOr(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
