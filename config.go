package auth

import (
	"os"
	"strconv"
	"time"

	"github.com/goliatone/go-errors"
)

// Environment variable names for the env-backed Config.
const (
	EnvSigningKey      = "AUTH_SIGNING_KEY"
	EnvSessionLifetime = "AUTH_SESSION_LIFETIME"
	EnvCookieName      = "AUTH_SESSION_COOKIE"
	EnvSecureCookies   = "AUTH_SECURE_COOKIES"
	EnvLoginRoute      = "AUTH_LOGIN_ROUTE"
	EnvDeniedRoute     = "AUTH_DENIED_ROUTE"
)

// DefaultCookieName is the session cookie carrier name.
const DefaultCookieName = "church_session"

// EnvConfig is the environment-backed Config implementation. Everything is
// defaulted except the signing key, whose absence fails loading: a gateway
// without a key must abort startup, not limp along unauthenticated.
type EnvConfig struct {
	SigningKey      string
	SessionLifetime time.Duration
	CookieName      string
	SecureCookies   bool
	LoginRoute      string
	DeniedRoute     string
}

// LoadConfig reads the gateway configuration from the environment.
func LoadConfig() (*EnvConfig, error) {
	cfg := &EnvConfig{
		SigningKey:      os.Getenv(EnvSigningKey),
		SessionLifetime: DefaultSessionLifetime,
		CookieName:      getEnv(EnvCookieName, DefaultCookieName),
		SecureCookies:   getEnvBool(EnvSecureCookies, true),
		LoginRoute:      getEnv(EnvLoginRoute, "/login"),
		DeniedRoute:     getEnv(EnvDeniedRoute, "/denied"),
	}

	if cfg.SigningKey == "" {
		return nil, ErrSigningKeyMissing.Clone().WithMetadata(map[string]any{
			"env": EnvSigningKey,
		})
	}

	if raw := os.Getenv(EnvSessionLifetime); raw != "" {
		lifetime, err := time.ParseDuration(raw)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryBadInput, "invalid session lifetime").
				WithMetadata(map[string]any{"env": EnvSessionLifetime, "value": raw})
		}
		if lifetime <= 0 {
			return nil, errors.New("session lifetime must be positive", errors.CategoryBadInput).
				WithMetadata(map[string]any{"env": EnvSessionLifetime, "value": raw})
		}
		cfg.SessionLifetime = lifetime
	}

	return cfg, nil
}

func (c *EnvConfig) GetSigningKey() string {
	return c.SigningKey
}

func (c *EnvConfig) GetSessionLifetime() time.Duration {
	if c.SessionLifetime <= 0 {
		return DefaultSessionLifetime
	}
	return c.SessionLifetime
}

func (c *EnvConfig) GetCookieName() string {
	if c.CookieName == "" {
		return DefaultCookieName
	}
	return c.CookieName
}

func (c *EnvConfig) GetSecureCookies() bool {
	return c.SecureCookies
}

func (c *EnvConfig) GetLoginRoute() string {
	if c.LoginRoute == "" {
		return "/login"
	}
	return c.LoginRoute
}

func (c *EnvConfig) GetDeniedRoute() string {
	if c.DeniedRoute == "" {
		return "/denied"
	}
	return c.DeniedRoute
}

var _ Config = (*EnvConfig)(nil)

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}
