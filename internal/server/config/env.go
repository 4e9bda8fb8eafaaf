package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/gophcam/internal/flagx"
	"github.com/joho/godotenv"
)

const defaultEnvFile = ".env"

// loadDotEnv loads the file named by -env (default ".env") into the process
// environment. Variables that are already set are kept. A missing file is
// not an error.
func loadDotEnv(args []string) error {
	path := flagx.EnvFileFlag(args, defaultEnvFile)
	if path == "" {
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// parseEnv overlays config with environment variables that are set.
func parseEnv(config *Config) error {
	envString(&config.PackageName, "PACKAGE_NAME")
	envString(&config.APIKey, "MENTRAOS_API_KEY")

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT env variable: %w", err)
		}
		config.Port = port
	}

	envString(&config.BackendURL, "BACKEND_URL")

	if v := os.Getenv("UPLOAD_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid UPLOAD_TIMEOUT env variable: %w", err)
		}
		config.UploadTimeout = d
	}

	envString(&config.PhotosDir, "PHOTOS_DIR")
	envString(&config.AuthSecret, "AUTH_SECRET_KEY")
	envString(&config.LogLevel, "LOG_LEVEL")
	envString(&config.ArtifactBackend, "ARTIFACT_BACKEND")
	envString(&config.S3RootUser, "S3_ROOT_USER")
	envString(&config.S3RootPassword, "S3_ROOT_PASSWORD")
	envString(&config.S3Bucket, "S3_BUCKET")
	envString(&config.S3Region, "S3_REGION")
	envString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")

	return nil
}

func envString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}
