package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays configuration from the process environment.
//
// A .env file in the working directory is loaded first (missing file is not
// an error), mirroring the deployment convention where secrets such as
// SECRET_KEY live next to the binary instead of in version control.
//
// Recognized variables:
//
//	ADDRESS              HTTP bind address
//	DATABASE_DSN         PostgreSQL DSN; empty keeps the in-memory store
//	SECRET_KEY           JWT HMAC secret
//	ACCESS_TOKEN_TTL     token lifetime, Go duration syntax ("30m")
//	REQUEST_TIMEOUT      per-request storage timeout, Go duration syntax
//	STORAGE_BACKEND      "local" or "s3"
//	UPLOAD_DIR           root directory for the local backend
//	S3_ROOT_USER, S3_ROOT_PASSWORD, S3_BUCKET, S3_REGION, S3_BASE_ENDPOINT
//	CORS_ALLOWED_ORIGINS comma-separated origin list
func parseEnv(config *Config) {
	_ = godotenv.Load()

	setString := func(name string, dst *string) {
		if v, ok := os.LookupEnv(name); ok {
			*dst = v
		}
	}
	setDuration := func(name string, dst *time.Duration) {
		if v, ok := os.LookupEnv(name); ok {
			if d, err := time.ParseDuration(v); err == nil {
				*dst = d
			}
		}
	}

	setString("ADDRESS", &config.EndpointAddrHTTP)
	setString("DATABASE_DSN", &config.DatabaseDSN)
	setString("SECRET_KEY", &config.SecretKey)
	setDuration("ACCESS_TOKEN_TTL", &config.AccessTokenValidityDuration)
	setDuration("REQUEST_TIMEOUT", &config.RequestTimeout)
	setString("STORAGE_BACKEND", &config.StorageBackend)
	setString("UPLOAD_DIR", &config.UploadDir)
	setString("S3_ROOT_USER", &config.S3RootUser)
	setString("S3_ROOT_PASSWORD", &config.S3RootPassword)
	setString("S3_BUCKET", &config.S3Bucket)
	setString("S3_REGION", &config.S3Region)
	setString("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)

	if v, ok := os.LookupEnv("CORS_ALLOWED_ORIGINS"); ok {
		origins := make([]string, 0)
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		config.CORSAllowedOrigins = origins
	}
}
