package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	old := os.Args
	os.Args = append([]string{"test"}, args...)
	t.Cleanup(func() { os.Args = old })
}

func TestParseJson_NoFlagDoesNothing(t *testing.T) {
	withArgs(t)

	var c Config
	c.LoadDefaults()
	parseJson(&c)

	assert.Equal(t, ":8000", c.EndpointAddrHTTP)
}

func TestParseJson_LoadsValues(t *testing.T) {
	content := `{
		"endpoint_addr_http": ":7070",
		"database_dsn": "postgres://u:p@h:5432/filevault",
		"secret_key": "json-secret",
		"access_token_validity_duration": "15m",
		"request_timeout": "3s",
		"storage_backend": "s3",
		"upload_dir": "files",
		"s3_root_user": "root",
		"s3_root_password": "pw",
		"s3_bucket": "uploads",
		"s3_region": "eu-west-1",
		"s3_base_endpoint": "http://minio:9000/",
		"cors_allowed_origins": ["http://localhost:3000"]
	}`

	path := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	withArgs(t, "-c", path)

	var c Config
	c.LoadDefaults()
	parseJson(&c)

	assert.Equal(t, ":7070", c.EndpointAddrHTTP)
	assert.Equal(t, "postgres://u:p@h:5432/filevault", c.DatabaseDSN)
	assert.Equal(t, "json-secret", c.SecretKey)
	assert.Equal(t, 15*time.Minute, c.AccessTokenValidityDuration)
	assert.Equal(t, 3*time.Second, c.RequestTimeout)
	assert.Equal(t, StorageBackendS3, c.StorageBackend)
	assert.Equal(t, "files", c.UploadDir)
	assert.Equal(t, "root", c.S3RootUser)
	assert.Equal(t, "pw", c.S3RootPassword)
	assert.Equal(t, "uploads", c.S3Bucket)
	assert.Equal(t, "eu-west-1", c.S3Region)
	assert.Equal(t, "http://minio:9000/", c.S3BaseEndpoint)
	assert.Equal(t, []string{"http://localhost:3000"}, c.CORSAllowedOrigins)
}

func TestParseJson_MissingFilePanics(t *testing.T) {
	withArgs(t, "-c", filepath.Join(t.TempDir(), "absent.json"))

	var c Config
	c.LoadDefaults()

	assert.Panics(t, func() { parseJson(&c) })
}

func TestParseJson_InvalidJsonPanics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{oops"), 0o600))
	withArgs(t, "-c", path)

	var c Config
	c.LoadDefaults()

	assert.Panics(t, func() { parseJson(&c) })
}
