package auth

import (
	"context"
	"time"
)

// Issuer orchestrates logins: it asks the credential verifier to vouch for
// the identifier/password pair, then asks the codec to mint a session token
// with a fixed expiry horizon. Audit events are emitted for every outcome.
type Issuer struct {
	provider     IdentityProvider
	codec        *TokenCodec
	logger       Logger
	activitySink ActivitySink
}

// NewIssuer returns a session issuer over a credential verifier and a codec.
func NewIssuer(provider IdentityProvider, codec *TokenCodec) *Issuer {
	return &Issuer{
		provider:     provider,
		codec:        codec,
		logger:       defLogger{},
		activitySink: noopActivitySink{},
	}
}

func (s *Issuer) WithLogger(logger Logger) *Issuer {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Issuer) WithActivitySink(sink ActivitySink) *Issuer {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// Codec returns the TokenCodec this issuer mints with.
func (s *Issuer) Codec() *TokenCodec {
	return s.codec
}

// Login verifies the credentials and mints a session token. Failure reasons
// stay distinct internally; the verifier has already collapsed lookup misses
// and password mismatches into ErrInvalidCredentials.
func (s *Issuer) Login(ctx context.Context, identifier, password string) (string, Identity, error) {
	identity, err := s.provider.VerifyIdentity(ctx, identifier, password)
	if err != nil {
		s.logger.Error("login verify identity error", "error", err)
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, ActorRef{Type: "unknown"}, nil, map[string]any{
			"identifier": identifier,
			"error":      err.Error(),
		})
		return "", nil, err
	}

	if identity == nil {
		s.logger.Error("login identity is nil")
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, ActorRef{Type: "unknown"}, nil, map[string]any{
			"identifier": identifier,
			"error":      ErrIdentityNotFound.Error(),
		})
		return "", nil, ErrInvalidCredentials
	}

	token, _, err := s.codec.Mint(identity)
	if err != nil {
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, actorFromIdentity(identity), identity, map[string]any{
			"identifier": identifier,
			"error":      err.Error(),
		})
		return "", nil, err
	}

	s.emitAuthEvent(ctx, ActivityEventLoginSuccess, actorFromIdentity(identity), identity, map[string]any{
		"identifier": identifier,
	})

	return token, identity, nil
}

// Impersonate mints a session for another principal without their password.
// Callers gate this behind a superadmin check; the issuer audits it as its
// own event type either way.
func (s *Issuer) Impersonate(ctx context.Context, identifier string) (string, Identity, error) {
	identity, err := s.provider.FindIdentityByIdentifier(ctx, identifier)
	if err != nil {
		s.logger.Error("impersonate identity lookup error", "error", err)
		s.emitAuthEvent(ctx, ActivityEventImpersonationFailure, ActorRef{Type: "system"}, nil, map[string]any{
			"identifier": identifier,
			"error":      err.Error(),
		})
		return "", nil, err
	}

	if identity == nil {
		s.emitAuthEvent(ctx, ActivityEventImpersonationFailure, ActorRef{Type: "system"}, nil, map[string]any{
			"identifier": identifier,
			"error":      ErrIdentityNotFound.Error(),
		})
		return "", nil, ErrIdentityNotFound
	}

	token, _, err := s.codec.Mint(identity)
	if err != nil {
		s.emitAuthEvent(ctx, ActivityEventImpersonationFailure, ActorRef{Type: "system"}, identity, map[string]any{
			"identifier": identifier,
			"error":      err.Error(),
		})
		return "", nil, err
	}

	s.emitAuthEvent(ctx, ActivityEventImpersonationSuccess, ActorRef{Type: "system"}, identity, map[string]any{
		"identifier": identifier,
	})

	return token, identity, nil
}

var _ Authenticator = (*Issuer)(nil)

func (s *Issuer) emitAuthEvent(ctx context.Context, eventType ActivityEventType, actor ActorRef, identity Identity, metadata map[string]any) {
	event := ActivityEvent{
		EventType:  eventType,
		Actor:      actor,
		Metadata:   metadata,
		OccurredAt: time.Now(),
	}

	if identity != nil {
		event.UserID = identity.ID()
		event.ChurchID = identity.ChurchID()
	}

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	sink := normalizeActivitySink(s.activitySink)
	if err := sink.Record(ctx, event); err != nil {
		s.logger.Warn("activity sink record error: %v", err)
	}
}

func actorFromIdentity(identity Identity) ActorRef {
	if identity == nil {
		return ActorRef{Type: "unknown"}
	}

	return ActorRef{
		ID:   identity.ID(),
		Type: "user",
	}
}

// bestEffort runs a non-fatal side effect: the error is logged and dropped.
// Used for writes that must never fail the operation they decorate, like the
// last-login timestamp on the hot login path.
func bestEffort(logger Logger, op string, fn func() error) {
	if fn == nil {
		return
	}
	if err := fn(); err != nil {
		if logger == nil {
			logger = defLogger{}
		}
		logger.Warn("%s failed (non-fatal): %v", op, err)
	}
}
