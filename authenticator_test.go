package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/kmwangemi/church-auth"
)

func TestIssuerLogin(t *testing.T) {
	ctx := context.Background()

	identity := stubIdentity{
		id:     "usr-1",
		email:  "grace@example.com",
		church: "church-9",
		role:   auth.RoleAdmin,
	}

	t.Run("success mints a verifiable token", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		provider.On("VerifyIdentity", ctx, "grace@example.com", "pwd").Return(identity, nil)

		codec := newTestCodec(t)
		sink := &recordingSink{}

		issuer := auth.NewIssuer(provider, codec).
			WithLogger(&testLogger{}).
			WithActivitySink(sink)

		token, got, err := issuer.Login(ctx, "grace@example.com", "pwd")
		require.NoError(t, err)
		require.NotEmpty(t, token)
		assert.Equal(t, identity.ID(), got.ID())

		claims, err := codec.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "usr-1", claims.Subject())
		assert.Equal(t, "church-9", claims.Church())
		assert.Equal(t, auth.RoleAdmin, claims.Role())

		events := sink.Events()
		require.Len(t, events, 1)
		assert.Equal(t, auth.ActivityEventLoginSuccess, events[0].EventType)
		assert.Equal(t, "usr-1", events[0].UserID)
		assert.Equal(t, "church-9", events[0].ChurchID)
		assert.Equal(t, "user", events[0].Actor.Type)
	})

	t.Run("token expiry follows the codec lifetime", func(t *testing.T) {
		issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

		provider := &MockIdentityProvider{}
		provider.On("VerifyIdentity", ctx, "grace@example.com", "pwd").Return(identity, nil)

		codec, err := auth.NewTokenCodec(testSigningKey, auth.DefaultSessionLifetime,
			auth.WithCodecClock(func() time.Time { return issuedAt }))
		require.NoError(t, err)

		issuer := auth.NewIssuer(provider, codec).WithLogger(&testLogger{})

		token, _, err := issuer.Login(ctx, "grace@example.com", "pwd")
		require.NoError(t, err)

		claims, err := codec.Decode(token)
		require.NoError(t, err)
		assert.True(t, claims.Expires().Equal(issuedAt.Add(auth.DefaultSessionLifetime)))
	})

	t.Run("verification failure propagates and audits", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		provider.On("VerifyIdentity", ctx, "grace@example.com", "bad").Return(nil, auth.ErrInvalidCredentials)

		sink := &recordingSink{}
		issuer := auth.NewIssuer(provider, newTestCodec(t)).
			WithLogger(&testLogger{}).
			WithActivitySink(sink)

		token, got, err := issuer.Login(ctx, "grace@example.com", "bad")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
		assert.Empty(t, token)
		assert.Nil(t, got)

		events := sink.Events()
		require.Len(t, events, 1)
		assert.Equal(t, auth.ActivityEventLoginFailure, events[0].EventType)
		assert.Equal(t, "grace@example.com", events[0].Metadata["identifier"])
	})

	t.Run("nil identity from provider is invalid credentials", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		provider.On("VerifyIdentity", ctx, "grace@example.com", "pwd").Return(nil, nil)

		issuer := auth.NewIssuer(provider, newTestCodec(t)).WithLogger(&testLogger{})

		_, _, err := issuer.Login(ctx, "grace@example.com", "pwd")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})
}

func TestIssuerImpersonate(t *testing.T) {
	ctx := context.Background()

	identity := stubIdentity{
		id:     "usr-2",
		email:  "peter@example.com",
		church: "church-9",
		role:   auth.RoleMember,
	}

	t.Run("success", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		provider.On("FindIdentityByIdentifier", ctx, "peter@example.com").Return(identity, nil)

		codec := newTestCodec(t)
		sink := &recordingSink{}

		issuer := auth.NewIssuer(provider, codec).
			WithLogger(&testLogger{}).
			WithActivitySink(sink)

		token, got, err := issuer.Impersonate(ctx, "peter@example.com")
		require.NoError(t, err)
		assert.Equal(t, "usr-2", got.ID())

		claims, err := codec.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "usr-2", claims.Subject())

		events := sink.Events()
		require.Len(t, events, 1)
		assert.Equal(t, auth.ActivityEventImpersonationSuccess, events[0].EventType)
		assert.Equal(t, "system", events[0].Actor.Type)
	})

	t.Run("lookup failure audits", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		provider.On("FindIdentityByIdentifier", ctx, "ghost@example.com").Return(nil, auth.ErrIdentityNotFound)

		sink := &recordingSink{}
		issuer := auth.NewIssuer(provider, newTestCodec(t)).
			WithLogger(&testLogger{}).
			WithActivitySink(sink)

		_, _, err := issuer.Impersonate(ctx, "ghost@example.com")
		assert.ErrorIs(t, err, auth.ErrIdentityNotFound)

		events := sink.Events()
		require.Len(t, events, 1)
		assert.Equal(t, auth.ActivityEventImpersonationFailure, events[0].EventType)
	})
}
