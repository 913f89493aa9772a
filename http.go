package auth

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
)

// CookieGateway binds the issuer, gate, and terminator to the HTTP cookie
// carrier. API routes receive structured JSON errors; page routes receive
// redirects with the stale cookie proactively cleared.
type CookieGateway struct {
	auth         Authenticator
	codec        *TokenCodec
	cfg          Config
	logger       Logger
	activitySink ActivitySink
}

// NewCookieGateway wires the HTTP surface of the gateway.
func NewCookieGateway(auther Authenticator, codec *TokenCodec, cfg Config) *CookieGateway {
	return &CookieGateway{
		auth:         auther,
		codec:        codec,
		cfg:          cfg,
		logger:       defLogger{},
		activitySink: noopActivitySink{},
	}
}

func (g *CookieGateway) WithLogger(logger Logger) *CookieGateway {
	if logger != nil {
		g.logger = logger
	}
	return g
}

// WithActivitySink configures the audit sink used for logout events.
func (g *CookieGateway) WithActivitySink(sink ActivitySink) *CookieGateway {
	g.activitySink = normalizeActivitySink(sink)
	return g
}

// LoginRequest payload
type LoginRequest struct {
	Identifier string `json:"identifier" form:"identifier"`
	Password   string `json:"password" form:"password"`
}

func (r LoginRequest) GetIdentifier() string {
	return r.Identifier
}

func (r LoginRequest) GetPassword() string {
	return r.Password
}

// Validate request
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Identifier, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

var _ LoginPayload = LoginRequest{}

// Login authenticates the payload and, on success, sets the session cookie
// with a Max-Age matching the token lifetime. The response body is a small
// identity summary; the token itself only travels in the cookie.
func (g *CookieGateway) Login(c *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid login payload",
		})
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	token, identity, err := g.auth.Login(c.UserContext(), payload.GetIdentifier(), payload.GetPassword())
	if err != nil {
		g.logger.Info("login rejected", "identifier", payload.GetIdentifier(), "error", err)
		return g.loginError(c, err)
	}

	g.setCookieToken(c, token)

	return c.JSON(fiber.Map{
		"user": identitySummary(identity),
	})
}

// Logout is the session terminator: it always succeeds from the caller's
// point of view. Any existing credential is decoded (not verified) purely to
// enrich the audit entry; decode failures are swallowed.
func (g *CookieGateway) Logout(c *fiber.Ctx) error {
	if raw := c.Cookies(g.cfg.GetCookieName()); raw != "" {
		if claims, err := g.codec.Decode(raw); err == nil {
			event := ActivityEvent{
				EventType:  ActivityEventLogout,
				Actor:      ActorRef{ID: claims.Subject(), Type: "user"},
				UserID:     claims.Subject(),
				ChurchID:   claims.Church(),
				OccurredAt: time.Now(),
			}
			if recErr := g.activitySink.Record(c.UserContext(), event); recErr != nil {
				g.logger.Warn("logout activity record error: %v", recErr)
			}
		} else {
			g.logger.Debug("logout could not decode credential for audit", "error", err)
		}
	}

	g.clearSessionCookie(c)

	return c.JSON(fiber.Map{"cleared": true})
}

// HandleRejection maps a gate outcome to the transport. API callers get
// machine-readable 401/403 bodies; browser navigations get redirected, with
// the dead cookie cleared so the browser stops resubmitting it.
func (g *CookieGateway) HandleRejection(c *fiber.Ctx, result GateResult) error {
	if result.Authorized() {
		return c.Next()
	}

	if !wantsHTML(c) {
		return g.rejectJSON(c, result)
	}

	if result.Reason == RejectForbidden {
		return c.Redirect(g.cfg.GetDeniedRoute(), fiber.StatusFound)
	}

	// A cookie was present but is dead; clear it before sending the browser
	// back to login.
	if result.Reason != RejectMissing {
		g.clearSessionCookie(c)
	}

	return c.Redirect(g.cfg.GetLoginRoute(), fiber.StatusFound)
}

func (g *CookieGateway) rejectJSON(c *fiber.Ctx, result GateResult) error {
	status := fiber.StatusUnauthorized
	if result.Reason == RejectForbidden {
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

func (g *CookieGateway) loginError(c *fiber.Ctx, err error) error {
	var rich *errors.Error
	if !errors.As(err, &rich) {
		rich = errors.Wrap(err, errors.CategoryInternal, "an unexpected error occurred during login").
			WithCode(errors.CodeInternal)
	}

	status := fiber.StatusUnauthorized
	switch rich.Category {
	case errors.CategoryAuth, errors.CategoryAuthz:
		// rich.Code already carries 401
	case errors.CategoryBadInput, errors.CategoryValidation:
		status = fiber.StatusBadRequest
	default:
		status = fiber.StatusInternalServerError
	}

	return c.Status(status).JSON(fiber.Map{
		"error": rich.Message,
	})
}

func (g *CookieGateway) setCookieToken(c *fiber.Ctx, val string) {
	lifetime := g.codec.Lifetime()
	c.Cookie(&fiber.Cookie{
		Name:     g.cfg.GetCookieName(),
		Value:    val,
		Path:     "/",
		Expires:  time.Now().Add(lifetime),
		MaxAge:   int(lifetime.Seconds()),
		HTTPOnly: true,
		Secure:   g.cfg.GetSecureCookies(),
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

func (g *CookieGateway) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     g.cfg.GetCookieName(),
		Value:    "",
		Path:     "/",
		// fasthttp only emits Max-Age when positive; the past Expires is what
		// makes the browser drop the cookie
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   g.cfg.GetSecureCookies(),
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

func identitySummary(identity Identity) fiber.Map {
	if identity == nil {
		return fiber.Map{}
	}
	return fiber.Map{
		"id":       identity.ID(),
		"email":    identity.Email(),
		"churchId": identity.ChurchID(),
		"branchId": identity.BranchID(),
		"role":     identity.Role(),
	}
}

func wantsHTML(c *fiber.Ctx) bool {
	return strings.Contains(c.Get(fiber.HeaderAccept), fiber.MIMETextHTML)
}
