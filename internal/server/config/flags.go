package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/gophcam/internal/flagx"
)

var knownFlags = []string{"-n", "-k", "-p", "-b", "-t", "-o", "-s", "-l", "-a", "-su", "-sp", "-sb", "-sg", "-se"}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-n string     package name
//	-k string     device platform API key
//	-p int        HTTP port
//	-b string     backend base URL
//	-t duration   backend upload timeout (e.g. "10s")
//	-o string     local photos directory
//	-s string     identity token secret
//	-l string     log level
//	-a string     artifact backend (local, s3, none)
//	-su/-sp       S3 root user / password
//	-sb/-sg/-se   S3 bucket / region / base endpoint
//
// args is filtered first so -c and -env, handled elsewhere, do not collide.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, knownFlags)

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.PackageName, "n", config.PackageName, "package name")
	fs.StringVar(&config.APIKey, "k", config.APIKey, "device platform API key")
	fs.IntVar(&config.Port, "p", config.Port, "HTTP port")
	fs.StringVar(&config.BackendURL, "b", config.BackendURL, "backend base URL")
	fs.DurationVar(&config.UploadTimeout, "t", config.UploadTimeout, "backend upload timeout")
	fs.StringVar(&config.PhotosDir, "o", config.PhotosDir, "local photos directory")
	fs.StringVar(&config.AuthSecret, "s", config.AuthSecret, "identity token secret")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.ArtifactBackend, "a", config.ArtifactBackend, "artifact backend (local, s3, none)")
	fs.StringVar(&config.S3RootUser, "su", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "sp", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "sb", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "sg", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "se", config.S3BaseEndpoint, "S3 base endpoint")

	return fs.Parse(args)
}
