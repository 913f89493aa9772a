// Package gateware is the fiber middleware that runs the token gate on every
// protected request. It extracts the session cookie, asks the gate to
// classify it, and on success attaches the identity context to the request
// before handing off to the downstream handler.
package gateware

import (
	"github.com/gofiber/fiber/v2"

	auth "github.com/kmwangemi/church-auth"
)

// DefaultContextKey is where the identity context lands in fiber locals.
const DefaultContextKey = "identity"

// Request headers the middleware forwards to downstream handlers. Handlers
// that query tenant data must read the church from here (or from the request
// context), never from client-supplied parameters.
const (
	HeaderSubject = "X-Auth-Subject"
	HeaderChurch  = "X-Church-Id"
	HeaderBranch  = "X-Branch-Id"
	HeaderRole    = "X-Auth-Role"
)

// IdentityListener is invoked after a credential has been authorized but
// before the downstream handler runs.
type IdentityListener func(c *fiber.Ctx, identity *auth.IdentityContext) error

// Config configures the gate middleware.
type Config struct {
	// Gate classifies credentials; required.
	Gate *auth.TokenGate

	// CookieName is the session cookie carrier; required.
	CookieName string

	// ContextKey is the fiber locals key for the identity context.
	ContextKey string

	// Filter skips the middleware entirely when it returns true.
	Filter func(*fiber.Ctx) bool

	// PolicyBypass lets paths with no policy entry pass without a check,
	// matching the "unmatched paths are public" contract. Set to false when
	// mounting the middleware on an already-scoped route group.
	PolicyBypass bool

	// RejectionHandler maps a rejected gate result to a response. Defaults
	// to a JSON 401/403 body.
	RejectionHandler func(*fiber.Ctx, auth.GateResult) error

	// ForwardHeaders mirrors the identity context into request headers for
	// downstream handlers.
	ForwardHeaders bool

	// IdentityListeners run after authorization, before the handler. Use
	// them for bookkeeping; an error short-circuits the request.
	IdentityListeners []IdentityListener
}

// New returns the gate middleware for the provided config.
func New(config ...Config) fiber.Handler {
	cfg := configDefault(config...)

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		if cfg.PolicyBypass && !cfg.Gate.Protects(c.Path()) {
			return c.Next()
		}

		credential := c.Cookies(cfg.CookieName)

		result := cfg.Gate.Check(c.Path(), credential)
		if !result.Authorized() {
			return cfg.RejectionHandler(c, result)
		}

		identity := result.Identity

		c.Locals(cfg.ContextKey, identity)
		c.SetUserContext(auth.WithIdentityContext(c.UserContext(), identity))

		if cfg.ForwardHeaders {
			c.Request().Header.Set(HeaderSubject, identity.Subject)
			c.Request().Header.Set(HeaderChurch, identity.ChurchID)
			c.Request().Header.Set(HeaderBranch, identity.BranchID)
			c.Request().Header.Set(HeaderRole, string(identity.Role))
		}

		for _, listener := range cfg.IdentityListeners {
			if listener == nil {
				continue
			}
			if err := listener(c, identity); err != nil {
				return err
			}
		}

		return c.Next()
	}
}

// IdentityFromLocals extracts the identity context stored by the middleware.
func IdentityFromLocals(c *fiber.Ctx, key string) (*auth.IdentityContext, bool) {
	if key == "" {
		key = DefaultContextKey
	}
	identity, ok := c.Locals(key).(*auth.IdentityContext)
	if !ok || identity == nil {
		return nil, false
	}
	return identity, true
}

func configDefault(config ...Config) Config {
	if len(config) == 0 {
		return Config{}
	}

	cfg := config[0]

	if cfg.ContextKey == "" {
		cfg.ContextKey = DefaultContextKey
	}

	if cfg.CookieName == "" {
		cfg.CookieName = auth.DefaultCookieName
	}

	if cfg.RejectionHandler == nil {
		cfg.RejectionHandler = defaultRejectionHandler
	}

	return cfg
}

func defaultRejectionHandler(c *fiber.Ctx, result auth.GateResult) error {
	status := fiber.StatusUnauthorized
	if result.Reason == auth.RejectForbidden {
		status = fiber.StatusForbidden
	}

	message := "unauthorized"
	if result.Err != nil {
		message = result.Err.Message
	}

	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}
