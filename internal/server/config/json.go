package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophcam/internal/flagx"
	"github.com/dmitrijs2005/gophcam/internal/timex"
)

// JsonConfig is the on-disk shape of the optional JSON config file.
// Empty fields leave the current value untouched. Durations accept both
// "10s" and integer nanoseconds.
type JsonConfig struct {
	PackageName     string          `json:"package_name"`
	APIKey          string          `json:"api_key"`
	Port            int             `json:"port"`
	BackendURL      string          `json:"backend_url"`
	UploadTimeout   *timex.Duration `json:"upload_timeout"`
	PhotosDir       string          `json:"photos_dir"`
	AuthSecret      string          `json:"auth_secret"`
	LogLevel        string          `json:"log_level"`
	ArtifactBackend string          `json:"artifact_backend"`
	S3RootUser      string          `json:"s3_root_user"`
	S3RootPassword  string          `json:"s3_root_password"`
	S3Bucket        string          `json:"s3_bucket"`
	S3Region        string          `json:"s3_region"`
	S3BaseEndpoint  string          `json:"s3_base_endpoint"`
}

// parseJson overlays config with the file named by -c/-config, if any.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&config.PackageName, c.PackageName)
	setString(&config.APIKey, c.APIKey)
	if c.Port != 0 {
		config.Port = c.Port
	}
	setString(&config.BackendURL, c.BackendURL)
	if c.UploadTimeout != nil {
		config.UploadTimeout = c.UploadTimeout.Duration
	}
	setString(&config.PhotosDir, c.PhotosDir)
	setString(&config.AuthSecret, c.AuthSecret)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.ArtifactBackend, c.ArtifactBackend)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
