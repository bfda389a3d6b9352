package config

import (
	"os"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	CORSOrigins string
	TablePrefix string
	// Volume configuration
	VolumesFile string
	// Temp-folder provisioning
	TempVolumeUID string // volume hosting temp folders; empty = volumeless fallback
	TempSubpath   string // path inside the temp volume under which temp folders live
	TempAssetPath string // filesystem directory for volumeless temp folders
	// Logging
	LogDir string // directory for log files; empty = stdout only
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	tablePrefix := getTablePrefix(env)

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		DatabaseURL: getEnv("DATABASE_URL", ""),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix: tablePrefix,
		// Volume configuration
		VolumesFile: getEnv("VOLUMES_FILE", "volumes.yaml"),
		// Temp-folder provisioning
		TempVolumeUID: getEnv("TEMP_VOLUME_UID", ""),
		TempSubpath:   getEnv("TEMP_SUBPATH", ""),
		TempAssetPath: getEnv("TEMP_ASSET_PATH", ".tmp/assets"),
		// Logging
		LogDir: getEnv("LOG_DIR", ""),
		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true" // Enable DEBUG in dev/test by default
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	// Auto-generate based on environment
	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	case "dev":
		return "dev_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
