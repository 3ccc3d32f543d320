package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/vidtube/internal/flagx"
)

var ownFlags = []string{
	"-a", "-d", "-access-secret", "-refresh-secret", "-access-ttl", "-refresh-ttl",
	"-upload-dir", "-trust-proxy", "-u", "-p", "-b", "-g", "-e", "-redis", "-log-level", "-log-format",
}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string               HTTP bind address (e.g. ":8000")
//	-d string               PostgreSQL DSN
//	-access-secret string   access token signing secret
//	-refresh-secret string  refresh token signing secret
//	-access-ttl duration    access token lifetime
//	-refresh-ttl duration   refresh token lifetime
//	-upload-dir string      staging directory for uploads
//	-trust-proxy            read the client address from proxy headers
//	-u string               S3 access key
//	-p string               S3 secret key
//	-b string               S3 bucket
//	-g string               S3 region
//	-e string               S3 base endpoint
//	-redis string           Redis address for rate limiting
//	-log-level string       debug, info, warn or error
//	-log-format string      json or text
//
// os.Args is filtered through flagx.FilterArgs first so flags owned by other
// parsers (-c) do not collide.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], ownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.AccessTokenSecret, "access-secret", config.AccessTokenSecret, "access token secret")
	fs.StringVar(&config.RefreshTokenSecret, "refresh-secret", config.RefreshTokenSecret, "refresh token secret")
	fs.DurationVar(&config.AccessTokenTTL, "access-ttl", config.AccessTokenTTL, "access token lifetime")
	fs.DurationVar(&config.RefreshTokenTTL, "refresh-ttl", config.RefreshTokenTTL, "refresh token lifetime")
	fs.StringVar(&config.UploadDir, "upload-dir", config.UploadDir, "upload staging directory")
	fs.BoolVar(&config.TrustProxy, "trust-proxy", config.TrustProxy, "trust X-Forwarded-For and X-Real-IP")
	fs.StringVar(&config.S3AccessKey, "u", config.S3AccessKey, "S3 access key")
	fs.StringVar(&config.S3SecretKey, "p", config.S3SecretKey, "S3 secret key")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.RedisAddr, "redis", config.RedisAddr, "redis address")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level")
	fs.StringVar(&config.LogFormat, "log-format", config.LogFormat, "log format")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
