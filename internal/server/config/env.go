package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// lookupEnv is a seam for tests.
var lookupEnv = os.LookupEnv

// loadDotenv reads .env from the working directory if it exists. Variables
// already present in the process environment are not overridden.
var loadDotenv = func() { _ = godotenv.Load() }

// parseEnv overlays values from environment variables:
//
//	PORT / HTTP_ADDR      listen port or full bind address
//	DATABASE_URL          PostgreSQL DSN or "memory"
//	JWT_SECRET            token signing key
//	TOKEN_TTL             token lifetime, e.g. "168h"
//	NODE_ENV / APP_ENV    "development" or "production"
//	REVOKE_ON_LOGOUT      true/false
//	CORS_ORIGIN           comma-separated origins
//	S3_ACCESS_KEY, S3_SECRET_KEY, S3_BUCKET, S3_REGION, S3_ENDPOINT, S3_PUBLIC_URL
//	MAX_IMAGE_BYTES       upload limit in bytes
//	LOG_LEVEL             debug/info/warn/error
//
// Malformed numeric, boolean and duration values are ignored.
func parseEnv(c *Config) {
	loadDotenv()

	if v, ok := env("PORT"); ok {
		c.EndpointAddrHTTP = ":" + v
	}
	setString(&c.EndpointAddrHTTP, "HTTP_ADDR")
	setString(&c.DatabaseDSN, "DATABASE_URL")
	setString(&c.SecretKey, "JWT_SECRET")
	setString(&c.Environment, "NODE_ENV")
	setString(&c.Environment, "APP_ENV")
	setString(&c.S3RootUser, "S3_ACCESS_KEY")
	setString(&c.S3RootPassword, "S3_SECRET_KEY")
	setString(&c.S3Bucket, "S3_BUCKET")
	setString(&c.S3Region, "S3_REGION")
	setString(&c.S3BaseEndpoint, "S3_ENDPOINT")
	setString(&c.S3PublicURL, "S3_PUBLIC_URL")
	setString(&c.LogLevel, "LOG_LEVEL")

	if v, ok := env("TOKEN_TTL"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			c.TokenValidityDuration = d
		}
	}
	if v, ok := env("REVOKE_ON_LOGOUT"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			c.RevokeOnLogout = b
		}
	}
	if v, ok := env("CORS_ORIGIN"); ok {
		c.CORSOrigins = splitOrigins(v)
	}
	if v, ok := env("MAX_IMAGE_BYTES"); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			c.MaxImageBytes = n
		}
	}
}

func env(key string) (string, bool) {
	v, ok := lookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func setString(dst *string, key string) {
	if v, ok := env(key); ok {
		*dst = v
	}
}

// splitOrigins parses a comma-separated origin list, dropping blanks and
// trailing slashes.
func splitOrigins(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if o := strings.TrimRight(strings.TrimSpace(p), "/"); o != "" {
			out = append(out, o)
		}
	}
	return out
}
