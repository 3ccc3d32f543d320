package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// parseEnv overlays values from the process environment. Unset, blank or
// unparsable variables keep the current value.
func parseEnv(config *Config) {
	config.HTTPAddr = envString("HTTP_ADDR", config.HTTPAddr)
	if port := envString("PORT", ""); port != "" && os.Getenv("HTTP_ADDR") == "" {
		config.HTTPAddr = ":" + port
	}
	config.DatabaseDSN = envString("DATABASE_DSN", config.DatabaseDSN)
	config.AccessTokenSecret = envString("ACCESS_TOKEN_SECRET", config.AccessTokenSecret)
	config.RefreshTokenSecret = envString("REFRESH_TOKEN_SECRET", config.RefreshTokenSecret)
	config.AccessTokenTTL = envDuration("ACCESS_TOKEN_EXPIRY", config.AccessTokenTTL)
	config.RefreshTokenTTL = envDuration("REFRESH_TOKEN_EXPIRY", config.RefreshTokenTTL)
	config.CookieSecure = envBool("COOKIE_SECURE", config.CookieSecure)
	config.TrustProxy = envBool("TRUST_PROXY", config.TrustProxy)
	config.CORSOrigins = envList("CORS_ORIGIN", config.CORSOrigins)
	config.UploadDir = envString("UPLOAD_DIR", config.UploadDir)
	config.S3AccessKey = envString("S3_ACCESS_KEY", config.S3AccessKey)
	config.S3SecretKey = envString("S3_SECRET_KEY", config.S3SecretKey)
	config.S3Bucket = envString("S3_BUCKET", config.S3Bucket)
	config.S3Region = envString("S3_REGION", config.S3Region)
	config.S3BaseEndpoint = envString("S3_BASE_ENDPOINT", config.S3BaseEndpoint)
	config.S3PublicURL = envString("S3_PUBLIC_URL", config.S3PublicURL)
	config.RedisAddr = envString("REDIS_ADDR", config.RedisAddr)
	config.RedisPassword = envString("REDIS_PASSWORD", config.RedisPassword)
	config.LoginRateLimit = envInt("LOGIN_RATE_LIMIT", config.LoginRateLimit)
	config.LoginRateWindow = envDuration("LOGIN_RATE_WINDOW", config.LoginRateWindow)
	config.LogLevel = envString("LOG_LEVEL", config.LogLevel)
	config.LogFormat = envString("LOG_FORMAT", config.LogFormat)
}

func envString(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// envInt reads a positive int.
func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// envDuration accepts Go durations ("15m") and the day suffix used by
// token expiry settings ("10d").
func envDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := parseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func envList(key string, def []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func parseDuration(v string) (time.Duration, error) {
	if days, ok := strings.CutSuffix(v, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, err
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(v)
}
