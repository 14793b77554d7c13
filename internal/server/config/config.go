// Package config handles configuration for the server component,
// including defaults, .env/environment overlay, JSON overlay, and
// command-line flags.
package config

import "time"

// Storage backend identifiers accepted in StorageBackend.
const (
	StorageBackendLocal = "local"
	StorageBackendS3    = "s3"
)

// Config holds runtime settings for the FileVault server.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the public HTTP endpoint.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty value selects the in-memory user store.
//   - SecretKey: HMAC secret for signing JWTs (HS256). When empty, a random
//     per-process key is generated at startup; tokens then do not survive a
//     restart.
//   - AccessTokenValidityDuration: bearer token lifetime.
//   - RequestTimeout: upper bound for storage operations within one request.
//   - StorageBackend: "local" or "s3".
//   - UploadDir: root directory for the local storage backend.
//   - S3RootUser / S3RootPassword: credentials for the S3-compatible backend.
//   - S3Bucket / S3Region / S3BaseEndpoint: object storage settings.
//   - CORSAllowedOrigins: origins allowed by the CORS middleware.
type Config struct {
	EndpointAddrHTTP            string
	DatabaseDSN                 string
	SecretKey                   string
	AccessTokenValidityDuration time.Duration
	RequestTimeout              time.Duration
	StorageBackend              string
	UploadDir                   string
	S3RootUser                  string
	S3RootPassword              string
	S3Bucket                    string
	S3Region                    string
	S3BaseEndpoint              string
	CORSAllowedOrigins          []string
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8000"
	c.DatabaseDSN = ""
	c.SecretKey = ""
	c.AccessTokenValidityDuration = 30 * time.Minute
	c.RequestTimeout = 10 * time.Second
	c.StorageBackend = StorageBackendLocal
	c.UploadDir = "uploaded_files"
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "filevault"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.CORSAllowedOrigins = []string{"http://localhost:4200"}
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from a .env file / environment variables, from an optional JSON file,
// and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
