package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/MJServices/neural-admin-panel/internal/admin"
	"github.com/MJServices/neural-admin-panel/internal/storage"
)

// Config is the server configuration read from the environment.
type Config struct {
	Port         int
	DatabaseURL  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	Location          *time.Location
	AllowedOrigins    []string
	AdminTokens       admin.Tokens
	PlaceholderData   bool
	TrustProxyHeaders bool

	RateLimitRPS   float64
	RateLimitBurst int

	// S3Config is nil when export backups are disabled.
	S3Config        *storage.S3Config
	BackupRetention int
}

// loadConfig builds a Config from getenv. Every problem is reported, not
// just the first.
func loadConfig(getenv func(string) string) (Config, error) {
	var problems []string
	fail := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	cfg := Config{
		Port:           8080,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		Location:       time.UTC,
		RateLimitRPS:   10,
		RateLimitBurst: 20,
	}

	if p := getenv("PORT"); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil || port <= 0 || port > 65535 {
			fail("PORT: invalid port %q", p)
		}
		cfg.Port = port
	}

	durations := []struct {
		name string
		dst  *time.Duration
	}{
		{"HTTP_READ_TIMEOUT", &cfg.ReadTimeout},
		{"HTTP_WRITE_TIMEOUT", &cfg.WriteTimeout},
	}
	for _, d := range durations {
		v := getenv(d.name)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil || parsed <= 0 {
			fail("%s: invalid duration %q", d.name, v)
			continue
		}
		*d.dst = parsed
	}

	cfg.DatabaseURL = getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		fail("DATABASE_URL: missing required env var")
	}

	if tz := getenv("DASHBOARD_TIMEZONE"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			fail("DASHBOARD_TIMEZONE: %v", err)
		} else {
			cfg.Location = loc
		}
	}

	cfg.AllowedOrigins = splitList(getenv("ALLOWED_ORIGINS"))

	tokens := getenv("ADMIN_API_TOKENS")
	if tokens == "" {
		fail("ADMIN_API_TOKENS: missing required env var")
	} else if parsed, err := admin.ParseTokens(tokens); err != nil {
		fail("ADMIN_API_TOKENS: %v", err)
	} else {
		cfg.AdminTokens = parsed
	}

	switch src := getenv("INSIGHTS_SOURCE"); src {
	case "", "live":
	case "placeholder":
		cfg.PlaceholderData = true
	default:
		fail("INSIGHTS_SOURCE: must be live or placeholder, got %q", src)
	}

	cfg.TrustProxyHeaders = getenv("TRUST_PROXY_HEADERS") == "true"

	if v := getenv("RATE_LIMIT_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil || rps < 0 {
			fail("RATE_LIMIT_RPS: invalid rate %q", v)
		}
		cfg.RateLimitRPS = rps
	}
	if v := getenv("RATE_LIMIT_BURST"); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil || burst <= 0 {
			fail("RATE_LIMIT_BURST: invalid burst %q", v)
		}
		cfg.RateLimitBurst = burst
	}

	s3, err := loadS3Config(getenv)
	if err != nil {
		fail("%v", err)
	}
	cfg.S3Config = s3

	if v := getenv("BACKUP_RETENTION"); v != "" {
		keep, err := strconv.Atoi(v)
		if err != nil || keep < 0 {
			fail("BACKUP_RETENTION: invalid count %q", v)
		}
		cfg.BackupRetention = keep
	}

	if len(problems) > 0 {
		return Config{}, fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return cfg, nil
}

// loadS3Config returns nil when no S3 variable is set. Setting only some of
// them is an error.
func loadS3Config(getenv func(string) string) (*storage.S3Config, error) {
	required := []string{"S3_ENDPOINT", "AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY", "BUCKET_NAME"}
	var missing []string
	for _, name := range required {
		if getenv(name) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == len(required) {
		return nil, nil
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("incomplete S3 configuration, missing %s", strings.Join(missing, ", "))
	}

	return &storage.S3Config{
		Endpoint:        getenv("S3_ENDPOINT"),
		AccessKeyID:     getenv("AWS_ACCESS_KEY_ID"),
		SecretAccessKey: getenv("AWS_SECRET_ACCESS_KEY"),
		BucketName:      getenv("BUCKET_NAME"),
		UseSSL:          getenv("S3_USE_SSL") != "false", // Default true
	}, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
