package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	path := writeTempJSON(t, map[string]any{
		"package_name":     "com.example.photo",
		"api_key":          "key",
		"port":             4000,
		"backend_url":      "http://backend:8000",
		"upload_timeout":   "5s",
		"photos_dir":       "/tmp/photos",
		"auth_secret":      "s",
		"log_level":        "debug",
		"artifact_backend": "none",
		"s3_root_user":     "user",
		"s3_root_password": "password",
		"s3_bucket":        "bucket",
		"s3_region":        "region",
		"s3_base_endpoint": "base_endpoint",
	})

	t.Run("loads from json", func(t *testing.T) {
		cfg := &Config{}
		require.NoError(t, parseJson(cfg, []string{"-config", path}))

		want := &Config{
			PackageName:     "com.example.photo",
			APIKey:          "key",
			Port:            4000,
			BackendURL:      "http://backend:8000",
			UploadTimeout:   5 * time.Second,
			PhotosDir:       "/tmp/photos",
			AuthSecret:      "s",
			LogLevel:        "debug",
			ArtifactBackend: ArtifactNone,
			S3RootUser:      "user",
			S3RootPassword:  "password",
			S3Bucket:        "bucket",
			S3Region:        "region",
			S3BaseEndpoint:  "base_endpoint",
		}
		assert.Empty(t, cmp.Diff(want, cfg))
	})

	t.Run("partial file keeps other values", func(t *testing.T) {
		partial := writeTempJSON(t, map[string]any{"port": 5000})
		cfg := &Config{}
		cfg.LoadDefaults()
		require.NoError(t, parseJson(cfg, []string{"-c", partial}))

		assert.Equal(t, 5000, cfg.Port)
		assert.Equal(t, "http://localhost:8000", cfg.BackendURL)
		assert.Equal(t, 10*time.Second, cfg.UploadTimeout)
	})

	t.Run("no flag leaves config unchanged", func(t *testing.T) {
		cfg := &Config{Port: 1234}
		require.NoError(t, parseJson(cfg, nil))
		assert.Equal(t, &Config{Port: 1234}, cfg)
	})

	t.Run("invalid JSON is an error", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		require.Error(t, parseJson(&Config{}, []string{"-c", bad}))
	})

	t.Run("missing file is an error", func(t *testing.T) {
		require.Error(t, parseJson(&Config{}, []string{"-c", filepath.Join(t.TempDir(), "nope.json")}))
	})
}
