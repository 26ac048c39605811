package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() Config {
	var c Config
	c.LoadDefaults()
	return c
}

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "filedo.json")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadDefaults(t *testing.T) {
	c := defaults()

	assert.Equal(t, ":5000", c.EndpointAddrHTTP)
	assert.Equal(t, ":50051", c.EndpointAddrGRPC)
	assert.Equal(t, "pgx", c.DatabaseDriver)
	assert.Empty(t, c.SecretKey)
	assert.Equal(t, []string{"/files/surat/", "/files2/surat/", "/files3/surat/"}, c.SearchPaths)
	assert.Equal(t, "/home/scpkan", c.StagingDir)
	assert.Equal(t, "user", c.SCPUser)
	assert.Equal(t, int64(32<<20), c.MaxUploadBytes)
	assert.Equal(t, 10*time.Minute, c.CacheTTL)
	assert.Equal(t, 15*time.Minute, c.PresignValidity)
	assert.False(t, c.S3Enabled())
	assert.False(t, c.CacheEnabled())
}

func TestLoad_NoSourcesKeepsDefaults(t *testing.T) {
	got := Load(nil, env(nil))
	want := defaults()
	if diff := cmp.Diff(&want, got); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Precedence(t *testing.T) {
	path := writeConfig(t, `{
		"endpoint_addr_http": ":7000",
		"database_driver": "mysql",
		"database_dsn": "root:pw@tcp(db:3306)/json",
		"secret_key": "json-key",
		"search_paths": ["/json/a/", "/json/b/"],
		"staging_dir": "/json/staging",
		"cache_ttl": "30m",
		"presign_validity": 120000000000,
		"s3_bucket": "archives"
	}`)

	getenv := env(map[string]string{
		"SECRET_KEY":   "env-key",
		"SEARCH_PATHS": "/env/a/, /env/b/",
		"REDIS_ADDR":   "redis:6379",
	})
	args := []string{"-c", path, "-a", ":8080", "-z", "/flag/staging", "-m", "8", "-unrelated", "x"}

	got := Load(args, getenv)

	want := defaults()
	want.EndpointAddrHTTP = ":8080"
	want.DatabaseDriver = "mysql"
	want.DatabaseDSN = "root:pw@tcp(db:3306)/json"
	want.SecretKey = "env-key"
	want.SearchPaths = []string{"/env/a/", "/env/b/"}
	want.StagingDir = "/flag/staging"
	want.MaxUploadBytes = 8 << 20
	want.RedisAddr = "redis:6379"
	want.CacheTTL = 30 * time.Minute
	want.PresignValidity = 2 * time.Minute
	want.S3Bucket = "archives"

	if diff := cmp.Diff(&want, got); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, got.S3Enabled())
	assert.True(t, got.CacheEnabled())
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	got := Load(
		[]string{"-s", "flag-key", "-r", "/x/,/y/", "-x", "5", "-l", "1", "-G", ""},
		env(map[string]string{"SECRET_KEY": "env-key", "SEARCH_PATHS": "/env/"}),
	)

	assert.Equal(t, "flag-key", got.SecretKey)
	assert.Equal(t, []string{"/x/", "/y/"}, got.SearchPaths)
	assert.Equal(t, 5*time.Minute, got.CacheTTL)
	assert.Equal(t, time.Minute, got.PresignValidity)
}

func TestLoad_JSONCanDisableGRPC(t *testing.T) {
	path := writeConfig(t, `{"endpoint_addr_grpc": ""}`)
	got := Load([]string{"-config", path}, env(nil))
	assert.Empty(t, got.EndpointAddrGRPC)
}

func TestLoad_PanicsOnBadInput(t *testing.T) {
	assert.Panics(t, func() { Load([]string{"-c", filepath.Join(t.TempDir(), "missing.json")}, env(nil)) })
	assert.Panics(t, func() { Load([]string{"-c", writeConfig(t, "{not json")}, env(nil)) })
	assert.Panics(t, func() { Load([]string{"-c", writeConfig(t, `{"cache_ttl": "soon"}`)}, env(nil)) })
	assert.Panics(t, func() { Load([]string{"-m", "lots"}, env(nil)) })
}

func TestDuration_UnmarshalJSON(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalJSON([]byte(`"1h30m"`)))
	assert.Equal(t, 90*time.Minute, d.Duration)

	require.NoError(t, d.UnmarshalJSON([]byte(`1000000000`)))
	assert.Equal(t, time.Second, d.Duration)

	assert.Error(t, d.UnmarshalJSON([]byte(`true`)))
	assert.Error(t, d.UnmarshalJSON([]byte(`"fast"`)))
}
