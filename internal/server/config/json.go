package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/filedo/internal/flagx"
)

// Duration accepts either a Go duration string ("15m") or integer
// nanoseconds in JSON.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case float64:
		d.Duration = time.Duration(val)
	case string:
		parsed, err := time.ParseDuration(val)
		if err != nil {
			return err
		}
		d.Duration = parsed
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}
	return nil
}

// JsonConfig is the on-disk shape of the configuration file. Absent or empty
// fields keep the value from the previous layer.
type JsonConfig struct {
	EndpointAddrHTTP string   `json:"endpoint_addr_http"`
	EndpointAddrGRPC *string  `json:"endpoint_addr_grpc"`
	DatabaseDriver   string   `json:"database_driver"`
	DatabaseDSN      string   `json:"database_dsn"`
	SecretKey        string   `json:"secret_key"`
	SearchPaths      []string `json:"search_paths"`
	StagingDir       string   `json:"staging_dir"`
	SCPUser          string   `json:"scp_user"`
	MaxUploadBytes   int64    `json:"max_upload_bytes"`
	RedisAddr        string   `json:"redis_addr"`
	CacheTTL         Duration `json:"cache_ttl"`
	S3RootUser       string   `json:"s3_root_user"`
	S3RootPassword   string   `json:"s3_root_password"`
	S3Bucket         string   `json:"s3_bucket"`
	S3Region         string   `json:"s3_region"`
	S3BaseEndpoint   string   `json:"s3_base_endpoint"`
	PresignValidity  Duration `json:"presign_validity"`
	LogLevel         string   `json:"log_level"`
}

// parseJson loads the file named by -c/-config, if any, into config.
// An unreadable file or invalid JSON panics.
func parseJson(config *Config, args []string) {
	path := flagx.JsonConfigFlags(args)
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setStr := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}

	setStr(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	// an explicit "" disables gRPC
	if c.EndpointAddrGRPC != nil {
		config.EndpointAddrGRPC = *c.EndpointAddrGRPC
	}
	setStr(&config.DatabaseDriver, c.DatabaseDriver)
	setStr(&config.DatabaseDSN, c.DatabaseDSN)
	setStr(&config.SecretKey, c.SecretKey)
	if len(c.SearchPaths) > 0 {
		config.SearchPaths = c.SearchPaths
	}
	setStr(&config.StagingDir, c.StagingDir)
	setStr(&config.SCPUser, c.SCPUser)
	if c.MaxUploadBytes > 0 {
		config.MaxUploadBytes = c.MaxUploadBytes
	}
	setStr(&config.RedisAddr, c.RedisAddr)
	if c.CacheTTL.Duration > 0 {
		config.CacheTTL = c.CacheTTL.Duration
	}
	setStr(&config.S3RootUser, c.S3RootUser)
	setStr(&config.S3RootPassword, c.S3RootPassword)
	setStr(&config.S3Bucket, c.S3Bucket)
	setStr(&config.S3Region, c.S3Region)
	setStr(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	if c.PresignValidity.Duration > 0 {
		config.PresignValidity = c.PresignValidity.Duration
	}
	setStr(&config.LogLevel, c.LogLevel)
}
