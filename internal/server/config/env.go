package config

import "github.com/dmitrijs2005/filedo/internal/flagx"

// parseEnv overlays the variables the deployment scripts set. Unset or empty
// variables leave the current value alone.
//
//	SECRET_KEY, DATABASE_DSN, DATABASE_DRIVER, SEARCH_PATHS (comma separated),
//	STAGING_DIR, REDIS_ADDR, LOG_LEVEL
func parseEnv(config *Config, getenv func(string) string) {
	if getenv == nil {
		return
	}

	strs := map[string]*string{
		"SECRET_KEY":      &config.SecretKey,
		"DATABASE_DSN":    &config.DatabaseDSN,
		"DATABASE_DRIVER": &config.DatabaseDriver,
		"STAGING_DIR":     &config.StagingDir,
		"REDIS_ADDR":      &config.RedisAddr,
		"LOG_LEVEL":       &config.LogLevel,
	}
	for name, dst := range strs {
		if v := getenv(name); v != "" {
			*dst = v
		}
	}

	if paths := flagx.SplitList(getenv("SEARCH_PATHS")); len(paths) > 0 {
		config.SearchPaths = paths
	}
}
