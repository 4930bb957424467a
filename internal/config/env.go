package config

import (
	"os"
	"strconv"
	"strings"
)

// Environment variable names.
const (
	EnvHome          = "LEDGERBOX_HOME"
	EnvArchiveDriver = "LEDGERBOX_ARCHIVE_DRIVER"
	EnvArchiveDir    = "LEDGERBOX_ARCHIVE_DIR"
	EnvS3Bucket      = "LEDGERBOX_S3_BUCKET"
	EnvS3Prefix      = "LEDGERBOX_S3_PREFIX"
	EnvS3Region      = "LEDGERBOX_S3_REGION"
	EnvS3Endpoint    = "LEDGERBOX_S3_ENDPOINT"
	EnvDBDriver      = "LEDGERBOX_DB_DRIVER"
	EnvDBDSN         = "LEDGERBOX_DB_DSN"
	EnvUserID        = "LEDGERBOX_USER_ID"
	EnvPhone         = "LEDGERBOX_PHONE"
	EnvToken         = "LEDGERBOX_TOKEN"        // #nosec G101 -- false positive, this is a const name not a credential
	EnvTokenSecret   = "LEDGERBOX_TOKEN_SECRET" // #nosec G101 -- false positive, this is a const name not a credential
	EnvChunkSize     = "LEDGERBOX_CHUNK_SIZE"
	EnvRateLimit     = "LEDGERBOX_RATE_LIMIT"
	EnvOutputFormat  = "LEDGERBOX_OUTPUT_FORMAT"
	EnvVerbose       = "LEDGERBOX_VERBOSE"
	EnvLogLevel      = "LEDGERBOX_LOG_LEVEL"
	EnvNoColor       = "NO_COLOR"
)

// ApplyEnvironment applies environment variable overrides to the configuration.
//
//nolint:gocognit,gocyclo // Environment variable overrides require sequential checks
func ApplyEnvironment(cfg *Config) {
	setString(&cfg.Home, EnvHome)
	setString(&cfg.Archive.Dir, EnvArchiveDir)
	setString(&cfg.Archive.Bucket, EnvS3Bucket)
	setString(&cfg.Archive.Prefix, EnvS3Prefix)
	setString(&cfg.Archive.Region, EnvS3Region)
	setString(&cfg.Database.DSN, EnvDBDSN)
	setString(&cfg.Auth.UserID, EnvUserID)
	setString(&cfg.Auth.Phone, EnvPhone)
	setString(&cfg.Auth.Token, EnvToken)
	setString(&cfg.Auth.TokenSecret, EnvTokenSecret)

	if v := os.Getenv(EnvArchiveDriver); v != "" {
		cfg.Archive.Driver = strings.ToLower(v)
	}

	if v := os.Getenv(EnvS3Endpoint); v != "" {
		cfg.Archive.Endpoint = strings.TrimSpace(v)
	}

	if v := os.Getenv(EnvDBDriver); v != "" {
		cfg.Database.Driver = strings.ToLower(v)
	}

	if v := os.Getenv(EnvChunkSize); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Backup.ChunkSize = n
		}
	}

	if v := os.Getenv(EnvRateLimit); v != "" {
		if r, err := strconv.ParseFloat(v, 64); err == nil && r >= 0 {
			cfg.Backup.RateLimit = r
		}
	}

	if v := os.Getenv(EnvOutputFormat); v != "" {
		cfg.Output.DefaultFormat = strings.ToLower(v)
	}

	if v := os.Getenv(EnvVerbose); v != "" {
		cfg.Output.Verbose = parseBool(v)
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}

	// NO_COLOR disables colored output
	if _, ok := os.LookupEnv(EnvNoColor); ok {
		cfg.Output.Color = "never"
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// parseBool parses a boolean string value.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "1" || s == "true" || s == "yes" || s == "on" {
		return true
	}
	b, _ := strconv.ParseBool(s)
	return b
}
