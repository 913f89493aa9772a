package auth_test

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/kmwangemi/church-auth"
)

var testSigningKey = []byte("test-signing-key-0123456789abcdef")

func newTestCodec(t *testing.T, opts ...auth.CodecOption) *auth.TokenCodec {
	t.Helper()

	codec, err := auth.NewTokenCodec(testSigningKey, time.Hour, opts...)
	require.NoError(t, err)

	return codec
}

func TestNewTokenCodecRequiresSigningKey(t *testing.T) {
	_, err := auth.NewTokenCodec(nil, time.Hour)
	require.Error(t, err)

	var rich *goerrors.Error
	require.ErrorAs(t, err, &rich)
	assert.Equal(t, "SIGNING_KEY_MISSING", rich.TextCode)
}

func TestNewTokenCodecDefaultsLifetime(t *testing.T) {
	codec, err := auth.NewTokenCodec(testSigningKey, 0)
	require.NoError(t, err)
	assert.Equal(t, auth.DefaultSessionLifetime, codec.Lifetime())
}

func TestTokenCodecRoundTrip(t *testing.T) {
	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	codec := newTestCodec(t, auth.WithCodecClock(func() time.Time { return issuedAt }))

	identity := stubIdentity{
		id:     "usr-1",
		email:  "pastor@example.com",
		church: "church-9",
		branch: "branch-2",
		role:   auth.RoleAdmin,
	}

	token, expiresAt, err := codec.Mint(identity)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.True(t, expiresAt.Equal(issuedAt.Add(time.Hour)))

	claims, err := codec.Verify(token)
	require.NoError(t, err)

	assert.Equal(t, "usr-1", claims.Subject())
	assert.Equal(t, "church-9", claims.Church())
	assert.Equal(t, "branch-2", claims.Branch())
	assert.Equal(t, auth.RoleAdmin, claims.Role())
	assert.True(t, claims.Issued().Equal(issuedAt))
	assert.True(t, claims.Expires().Equal(issuedAt.Add(time.Hour)))
}

func TestTokenCodecMintNilIdentity(t *testing.T) {
	codec := newTestCodec(t)

	_, _, err := codec.Mint(nil)
	require.Error(t, err)
}

func TestTokenCodecVerifyRejectsTamperedClaims(t *testing.T) {
	codec := newTestCodec(t)

	token, _, err := codec.Mint(stubIdentity{
		id:     "usr-1",
		church: "church-9",
		role:   auth.RoleMember,
	})
	require.NoError(t, err)

	// Rewrite the role claim inside the payload segment without re-signing.
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)

	escalated := strings.Replace(string(payload), `"role":"member"`, `"role":"superadmin"`, 1)
	require.NotEqual(t, string(payload), escalated)

	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(escalated))
	tampered := strings.Join(parts, ".")

	_, err = codec.Verify(tampered)
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)
}

func TestTokenCodecVerifyRejectsForeignSignature(t *testing.T) {
	other, err := auth.NewTokenCodec([]byte("some-other-signing-key-material"), time.Hour)
	require.NoError(t, err)

	token, _, err := other.Mint(stubIdentity{id: "usr-1", church: "church-9", role: auth.RoleMember})
	require.NoError(t, err)

	codec := newTestCodec(t)

	_, err = codec.Verify(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)
}

func TestTokenCodecVerifyExpired(t *testing.T) {
	issuedAt := time.Now().Add(-2 * time.Hour)
	codec := newTestCodec(t)

	// Signed with the right key but already past exp.
	claims := auth.NewSessionClaims(stubIdentity{
		id:     "usr-1",
		church: "church-9",
		role:   auth.RoleMember,
	}, issuedAt, time.Hour)

	token, err := codec.SignClaims(claims)
	require.NoError(t, err)

	_, err = codec.Verify(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrTokenExpired)
	assert.True(t, auth.IsTokenExpiredError(err))
}

func TestTokenCodecMalformedInput(t *testing.T) {
	codec := newTestCodec(t)

	cases := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"two segments", "aaaa.bbbb"},
		{"bad base64", "@@.@@.@@"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := codec.Decode(tc.token)
			require.Error(t, err)
			assert.True(t, auth.IsMalformedError(err))

			_, err = codec.Verify(tc.token)
			require.Error(t, err)
			assert.True(t, auth.IsMalformedError(err))
		})
	}
}

func TestTokenCodecDecodeSkipsSignatureCheck(t *testing.T) {
	other, err := auth.NewTokenCodec([]byte("some-other-signing-key-material"), time.Hour)
	require.NoError(t, err)

	token, _, err := other.Mint(stubIdentity{id: "usr-7", church: "church-1", role: auth.RoleMember})
	require.NoError(t, err)

	codec := newTestCodec(t)

	claims, err := codec.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "usr-7", claims.Subject())
}
