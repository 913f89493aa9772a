package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// DefaultSessionLifetime is the fixed session horizon when none is configured.
const DefaultSessionLifetime = 7 * 24 * time.Hour

// TokenCodec mints and verifies HMAC-SHA256 signed session tokens. It is a
// pure function of the signing key and the claim set; it performs no I/O.
type TokenCodec struct {
	signingKey []byte
	lifetime   time.Duration
	logger     Logger
	now        func() time.Time
}

// CodecOption customizes codec construction.
type CodecOption func(*TokenCodec)

// WithCodecClock injects a custom clock (useful for tests).
func WithCodecClock(clock func() time.Time) CodecOption {
	return func(tc *TokenCodec) {
		if clock != nil {
			tc.now = clock
		}
	}
}

// WithCodecLogger overrides the codec logger.
func WithCodecLogger(logger Logger) CodecOption {
	return func(tc *TokenCodec) {
		if logger != nil {
			tc.logger = logger
		}
	}
}

// NewTokenCodec creates a codec for the given signing key. A missing key is a
// configuration fault surfaced here, at construction, so it aborts startup
// instead of failing per request.
func NewTokenCodec(signingKey []byte, lifetime time.Duration, opts ...CodecOption) (*TokenCodec, error) {
	if len(signingKey) == 0 {
		return nil, ErrSigningKeyMissing
	}

	if lifetime <= 0 {
		lifetime = DefaultSessionLifetime
	}

	tc := &TokenCodec{
		signingKey: signingKey,
		lifetime:   lifetime,
		logger:     defLogger{},
		now:        time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(tc)
		}
	}

	return tc, nil
}

// Lifetime returns the fixed session lifetime tokens are minted with.
func (tc *TokenCodec) Lifetime() time.Duration {
	return tc.lifetime
}

// Mint signs a session token for the identity. Expiry is issuedAt + lifetime,
// never extended by use.
func (tc *TokenCodec) Mint(identity Identity) (string, time.Time, error) {
	if identity == nil {
		return "", time.Time{}, errors.New("identity must not be nil", errors.CategoryInternal)
	}

	claims := NewSessionClaims(identity, tc.now(), tc.lifetime)

	token, err := tc.SignClaims(claims)
	if err != nil {
		return "", time.Time{}, err
	}

	return token, claims.Expires(), nil
}

// SignClaims signs an arbitrary claim set using the configured signing key.
func (tc *TokenCodec) SignClaims(claims *SessionClaims) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(tc.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign session token")
	}

	return signedString, nil
}

// Decode performs a structural parse with no signature check. It exists so the
// gate can test expiry cheaply before paying for cryptographic verification;
// never trust its output for authorization.
func (tc *TokenCodec) Decode(tokenString string) (*SessionClaims, error) {
	parser := jwt.NewParser()

	token, _, err := parser.ParseUnverified(tokenString, &SessionClaims{})
	if err != nil {
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}

// Verify parses and cryptographically verifies a token string, returning the
// claim set. Expired tokens map to ErrTokenExpired, bad signatures to
// ErrTokenInvalid, and anything structurally broken to ErrTokenMalformed.
func (tc *TokenCodec) Verify(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			tc.logger.Error("token codec encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return tc.signingKey, nil
	}, jwt.WithExpirationRequired(), jwt.WithTimeFunc(tc.now))

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenInvalid
		default:
			return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
				WithTextCode(ErrTokenMalformed.TextCode)
		}
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		tc.logger.Error("token codec could not decode verified claims")
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
