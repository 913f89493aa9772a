package auth

import (
	"time"

	"github.com/goliatone/go-errors"
)

// RejectReason classifies why the gate refused a request. The calling route
// layer maps these to transport responses: missing/malformed/expired/invalid
// become 401s (or a login redirect), forbidden becomes a 403 (or a denied
// view). Expired is kept distinct from invalid so browsers holding a stale
// session get sent back to login instead of being rejected outright.
type RejectReason string

const (
	RejectMissing   RejectReason = "missing"
	RejectMalformed RejectReason = "malformed"
	RejectExpired   RejectReason = "expired"
	RejectInvalid   RejectReason = "invalid"
	RejectForbidden RejectReason = "forbidden"
)

// GateResult is the discriminated outcome of one gate check: either an
// authorized identity or a rejection reason, never both. The gate does not
// return errors past its boundary; every outcome is a value.
type GateResult struct {
	Identity *IdentityContext
	Reason   RejectReason
	Err      *errors.Error
}

// Authorized reports whether the request may proceed.
func (r GateResult) Authorized() bool {
	return r.Identity != nil && r.Reason == ""
}

func authorized(identity *IdentityContext) GateResult {
	return GateResult{Identity: identity}
}

func rejected(reason RejectReason, err *errors.Error) GateResult {
	return GateResult{Reason: reason, Err: err}
}

// TokenGate classifies every protected request's credential through a fixed
// sequence: extract, structural decode, expiry check, signature verification,
// role check. It holds no per-session state and performs no I/O; each check is
// a pure function of the credential, the signing key, the policy table, and
// the clock, so requests need no locking and never block on a dependency.
type TokenGate struct {
	codec  *TokenCodec
	policy *RoutePolicy
	logger Logger
	now    func() time.Time
}

// GateOption customizes gate construction.
type GateOption func(*TokenGate)

// WithGateClock injects a custom clock (useful for tests).
func WithGateClock(clock func() time.Time) GateOption {
	return func(g *TokenGate) {
		if clock != nil {
			g.now = clock
		}
	}
}

// WithGateLogger overrides the gate logger.
func WithGateLogger(logger Logger) GateOption {
	return func(g *TokenGate) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewTokenGate builds a gate over a codec and a static route policy.
func NewTokenGate(codec *TokenCodec, policy *RoutePolicy, opts ...GateOption) *TokenGate {
	g := &TokenGate{
		codec:  codec,
		policy: policy,
		logger: defLogger{},
		now:    time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}

	return g
}

// Protects reports whether the policy covers the path. Unmatched paths are
// public and should bypass the gate entirely.
func (g *TokenGate) Protects(path string) bool {
	if g.policy == nil {
		return false
	}
	return g.policy.Protects(path)
}

// Check runs one credential through the full transition sequence for the
// target path.
//
// Expiry is tested on the unverified decode before signature verification:
// an expired but validly signed token must report Expired, not Invalid, and a
// structurally broken one must short-circuit before any crypto work.
func (g *TokenGate) Check(path, credential string) GateResult {
	if credential == "" {
		return rejected(RejectMissing, ErrTokenMissing)
	}

	decoded, err := g.codec.Decode(credential)
	if err != nil {
		return rejected(RejectMalformed, asRichError(err, ErrTokenMalformed))
	}

	if exp := decoded.Expires(); !exp.IsZero() && g.now().After(exp) {
		return rejected(RejectExpired, ErrTokenExpired)
	}

	claims, err := g.codec.Verify(credential)
	if err != nil {
		switch {
		case IsTokenExpiredError(err):
			// The clock moved past exp between the two passes.
			return rejected(RejectExpired, ErrTokenExpired)
		case IsMalformedError(err):
			return rejected(RejectMalformed, asRichError(err, ErrTokenMalformed))
		default:
			return rejected(RejectInvalid, asRichError(err, ErrTokenInvalid))
		}
	}

	role, ok := ParseRole(claims.Role())
	if !ok {
		g.logger.Warn("gate rejected token with unknown role", "role", claims.Role(), "subject", claims.Subject())
		return rejected(RejectInvalid, ErrTokenInvalid.Clone().WithMetadata(map[string]any{
			"role": claims.Role(),
		}))
	}

	// Tenant binding: every non-system role must be scoped to a church.
	if role != RoleSuperAdmin && claims.Church() == "" {
		g.logger.Warn("gate rejected token without tenant claim", "subject", claims.Subject(), "role", role)
		return rejected(RejectInvalid, ErrTokenInvalid.Clone().WithMetadata(map[string]any{
			"reason": "missing tenant claim",
		}))
	}

	if g.policy != nil {
		if entry, found := g.policy.Lookup(path); found && !entry.permits(role) {
			return rejected(RejectForbidden, ErrForbidden.Clone().WithMetadata(map[string]any{
				"path": path,
				"role": role,
			}))
		}
	}

	return authorized(IdentityFromClaims(claims))
}

func asRichError(err error, fallback *errors.Error) *errors.Error {
	var rich *errors.Error
	if errors.As(err, &rich) {
		return rich
	}
	return fallback
}
