// Package config reads process settings from the environment, after loading
// any .env file found in the working directory.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full set of runtime settings.
type Config struct {
	Port      string
	AppEnv    string
	LogLevel  slog.Level
	LogFormat string // text, json or both

	StoreDriver   string // sqlite, postgres, mysql or jsonfile
	DatabasePath  string
	DatabaseDSN   string
	JSONStorePath string

	BlobDriver    string // local, s3 or sqlite
	UploadDir     string
	PublicBaseURL string
	S3Bucket      string
	S3Region      string
	S3Key         string
	S3Secret      string
	S3Endpoint    string
	S3URL         string

	JWTSecret     string
	AdminEmail    string
	AdminPassword string
	BcryptCost    int
	CookieSecure  bool

	RedisAddr       string
	RedisPassword   string
	CatalogCacheTTL time.Duration

	RateLimitPerMinute int
	// TrustedProxies are the peers whose X-Forwarded-For header is believed
	// when keying the rate limiter. Empty means the header is ignored.
	TrustedProxies []netip.Prefix
}

// Load reads .env (if present) and then the process environment. Variables
// already set in the environment win over .env entries.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv and validates it.
func FromEnv(getenv func(string) string) (*Config, error) {
	env := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		Port:          env("PORT", "8080"),
		AppEnv:        env("APP_ENV", "development"),
		StoreDriver:   strings.ToLower(env("STORE_DRIVER", "sqlite")),
		DatabasePath:  env("DATABASE_PATH", "storefront.db"),
		DatabaseDSN:   env("DATABASE_DSN", ""),
		JSONStorePath: env("JSON_STORE_PATH", "data/store.json"),
		BlobDriver:    strings.ToLower(env("BLOB_DRIVER", "local")),
		UploadDir:     env("UPLOAD_DIR", "uploads"),
		PublicBaseURL: strings.TrimRight(env("PUBLIC_BASE_URL", ""), "/"),
		S3Bucket:      env("S3_BUCKET", ""),
		S3Region:      env("S3_REGION", "us-east-1"),
		S3Key:         env("S3_KEY", ""),
		S3Secret:      env("S3_SECRET", ""),
		S3Endpoint:    env("S3_ENDPOINT", ""),
		S3URL:         env("S3_URL", ""),
		JWTSecret:     getenv("JWT_SECRET"),
		AdminEmail:    env("ADMIN_EMAIL", ""),
		AdminPassword: getenv("ADMIN_PASSWORD"),
		// Default to secure cookies; disable only for local development.
		CookieSecure:  env("COOKIE_SECURE", "true") != "false",
		RedisAddr:     env("REDIS_ADDR", ""),
		RedisPassword: getenv("REDIS_PASSWORD"),
	}

	var errs []error

	logFormat := "text"
	if cfg.Production() {
		logFormat = "json"
	}
	cfg.LogFormat = strings.ToLower(env("LOG_FORMAT", logFormat))

	if err := cfg.LogLevel.UnmarshalText([]byte(env("LOG_LEVEL", "info"))); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	switch cfg.LogFormat {
	case "text", "json", "both":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be text, json or both, got %q", cfg.LogFormat))
	}

	switch cfg.StoreDriver {
	case "sqlite", "jsonfile":
	case "postgres", "mysql":
		if cfg.DatabaseDSN == "" {
			errs = append(errs, fmt.Errorf("DATABASE_DSN is required for STORE_DRIVER=%s", cfg.StoreDriver))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be sqlite, postgres, mysql or jsonfile, got %q", cfg.StoreDriver))
	}

	switch cfg.BlobDriver {
	case "local":
	case "s3":
		if cfg.S3Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required for BLOB_DRIVER=s3"))
		}
	case "sqlite":
		if cfg.StoreDriver != "sqlite" {
			errs = append(errs, errors.New("BLOB_DRIVER=sqlite requires STORE_DRIVER=sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("BLOB_DRIVER must be local, s3 or sqlite, got %q", cfg.BlobDriver))
	}

	if cfg.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	} else if len(cfg.JWTSecret) < 32 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 32 characters for HMAC-SHA256 security"))
	}

	if (cfg.AdminEmail == "") != (cfg.AdminPassword == "") {
		errs = append(errs, errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set together"))
	}

	cfg.BcryptCost = 12
	if v := getenv("BCRYPT_COST"); v != "" {
		n, err := strconv.Atoi(v)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("invalid BCRYPT_COST: %w", err))
		case n < 4 || n > 14:
			errs = append(errs, fmt.Errorf("BCRYPT_COST must be between 4 and 14, got %d", n))
		default:
			cfg.BcryptCost = n
		}
	}

	ttl, err := time.ParseDuration(env("CATALOG_CACHE_TTL", "60s"))
	if err != nil || ttl < 0 {
		errs = append(errs, fmt.Errorf("invalid CATALOG_CACHE_TTL %q", getenv("CATALOG_CACHE_TTL")))
	}
	cfg.CatalogCacheTTL = ttl

	rate, err := strconv.Atoi(env("RATE_LIMIT_PER_MINUTE", "120"))
	if err != nil || rate <= 0 {
		errs = append(errs, fmt.Errorf("invalid RATE_LIMIT_PER_MINUTE %q", getenv("RATE_LIMIT_PER_MINUTE")))
	}
	cfg.RateLimitPerMinute = rate

	if cfg.Production() && !cfg.CookieSecure {
		errs = append(errs, errors.New("COOKIE_SECURE=false is not allowed when APP_ENV is production"))
	}

	proxies, err := parseProxies(getenv("TRUSTED_PROXIES"))
	if err != nil {
		errs = append(errs, fmt.Errorf("TRUSTED_PROXIES: %w", err))
	}
	cfg.TrustedProxies = proxies

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Production reports whether APP_ENV names a production deployment.
func (c *Config) Production() bool {
	return c.AppEnv == "production" || c.AppEnv == "prod"
}

// UploadsURL is the public prefix under which locally served blobs resolve.
func (c *Config) UploadsURL() string {
	return c.PublicBaseURL + "/uploads"
}

// parseProxies reads a comma-separated list of addresses or CIDR prefixes.
func parseProxies(raw string) ([]netip.Prefix, error) {
	var prefixes []netip.Prefix
	for part := range strings.SplitSeq(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.Contains(part, "/") {
			p, err := netip.ParsePrefix(part)
			if err != nil {
				return nil, err
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(part)
		if err != nil {
			return nil, err
		}
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}
