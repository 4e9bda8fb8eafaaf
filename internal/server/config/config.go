// Package config handles configuration for the server, layering defaults,
// an optional JSON file, an optional .env file, the environment and
// command-line flags, in that order.
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/dmitrijs2005/gophcam/internal/common"
)

// Artifact backends.
const (
	ArtifactLocal = "local"
	ArtifactS3    = "s3"
	ArtifactNone  = "none"
)

// Config holds runtime settings for the server.
//
// Fields:
//   - PackageName / APIKey: identity and key of the app on the device platform.
//   - Port: HTTP listen port.
//   - BackendURL: base URL of the photo processing backend.
//   - UploadTimeout: bound on one backend upload request.
//   - PhotosDir: directory for local copies of captures.
//   - AuthSecret: HMAC secret used to verify identity tokens (HS256).
//   - LogLevel: debug, info, warn or error.
//   - ArtifactBackend: local, s3 or none.
//   - S3*: object storage settings for the s3 artifact backend.
type Config struct {
	PackageName     string
	APIKey          string
	Port            int
	BackendURL      string
	UploadTimeout   time.Duration
	PhotosDir       string
	AuthSecret      string
	LogLevel        string
	ArtifactBackend string
	S3RootUser      string
	S3RootPassword  string
	S3Bucket        string
	S3Region        string
	S3BaseEndpoint  string
}

// LoadDefaults populates Config with development defaults.
// NOTE: AuthSecret and the S3 credentials must be overridden in production.
func (c *Config) LoadDefaults() {
	c.Port = 3000
	c.BackendURL = "http://localhost:8000"
	c.UploadTimeout = 10 * time.Second
	c.PhotosDir = "photos"
	c.AuthSecret = "secretKey"
	c.LogLevel = "info"
	c.ArtifactBackend = ArtifactLocal
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "vault"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
}

// LoadConfig builds a Config from args (normally os.Args[1:]) and the
// process environment, and validates it.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := loadDotEnv(args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate reports the first missing or malformed setting.
func (c *Config) Validate() error {
	if c.PackageName == "" {
		return fmt.Errorf("%w: PACKAGE_NAME is not set", common.ErrInvalidConfig)
	}
	if c.APIKey == "" {
		return fmt.Errorf("%w: MENTRAOS_API_KEY is not set", common.ErrInvalidConfig)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", common.ErrInvalidConfig, c.Port)
	}
	u, err := url.Parse(c.BackendURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: invalid backend url %q", common.ErrInvalidConfig, c.BackendURL)
	}
	if c.UploadTimeout <= 0 {
		return fmt.Errorf("%w: upload timeout must be positive", common.ErrInvalidConfig)
	}
	if c.AuthSecret == "" {
		return fmt.Errorf("%w: auth secret is empty", common.ErrInvalidConfig)
	}
	switch c.ArtifactBackend {
	case ArtifactLocal, ArtifactS3, ArtifactNone:
	default:
		return fmt.Errorf("%w: unknown artifact backend %q", common.ErrInvalidConfig, c.ArtifactBackend)
	}
	return nil
}

// UploadURL is the backend endpoint photos are posted to.
func (c *Config) UploadURL() string {
	u, err := url.Parse(c.BackendURL)
	if err != nil {
		return c.BackendURL + "/photos/upload"
	}
	return u.JoinPath("photos", "upload").String()
}
