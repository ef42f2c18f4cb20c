package app

import (
	"fmt"
	"time"

	"github.com/aussiebroadwan/blog/pkg/httpx"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	SecretKey       string        `env:"SECRET_KEY,required,notEmpty"`        // Required: HMAC secret shared by all tokens
	Algorithm       string        `env:"ALGORITHM" envDefault:"HS256"`        // HS256, HS384 or HS512
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"30m"`   // Access token and cookie lifetime
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"` // Refresh token, cookie and session lifetime
	VerificationTTL time.Duration `env:"VERIFICATION_TTL" envDefault:"5m"`    // How long a TOTP verification lets refresh succeed

	RedisURL     string `env:"REDIS_CACHE_URL" envDefault:"redis://localhost:6379/0"`
	DatabaseFile string `env:"DATABASE_FILE" envDefault:"blog.db"`
	PepperFile   string `env:"PEPPER_FILE" envDefault:"pepper"`

	TOTPIssuer string `env:"TOTP_ISSUER" envDefault:"SimpleRESTBlog"`
	TOTPSkew   uint   `env:"TOTP_SKEW" envDefault:"0"` // Accepted periods either side of now

	APIPrefix      string   `env:"API_PREFIX" envDefault:"/api/v1"`
	CORSOrigins    []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	CookieSecure   bool     `env:"COOKIE_SECURE" envDefault:"true"`
	BootstrapToken string   `env:"BOOTSTRAP_TOKEN"` // Optional: enables POST /bootstrap

	Env                 string        `env:"ENV" envDefault:"dev"`
	LogLevel            string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat           string        `env:"LOG_FORMAT" envDefault:"json"`
	Port                int           `env:"PORT" envDefault:"8080"`
	ShutdownGracePeriod time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`

	// RateLimits start from httpx.DefaultProfiles; any RATELIMIT_* variable
	// that is set overrides its field.
	RateLimits httpx.Profiles `envPrefix:"RATELIMIT_"`
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()
	return ParseConfig(nil)
}

// ParseConfig parses environ, or the process environment when environ is
// nil.
func ParseConfig(environ map[string]string) (Config, error) {
	cfg := Config{RateLimits: httpx.DefaultProfiles()}

	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
