package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the claim set carried by every session token: the subject,
// the owning church (tenant), an optional branch, and the role. The claims are
// fixed at mint time; the signature covers all of them, so any mutation
// invalidates the token.
type SessionClaims struct {
	jwt.RegisteredClaims
	ChurchID string   `json:"churchId,omitempty"`
	BranchID string   `json:"branchId,omitempty"`
	UserRole UserRole `json:"role,omitempty"`
}

// NewSessionClaims builds the claim set for an identity with a fixed expiry
// horizon. Expiry is always issuedAt + lifetime; nothing ever extends it.
func NewSessionClaims(identity Identity, issuedAt time.Time, lifetime time.Duration) *SessionClaims {
	return &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(lifetime)),
		},
		ChurchID: identity.ChurchID(),
		BranchID: identity.BranchID(),
		UserRole: identity.Role(),
	}
}

// Subject returns the subject claim
func (c *SessionClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// Church returns the owning tenant identifier.
func (c *SessionClaims) Church() string {
	return c.ChurchID
}

// Branch returns the sub-unit identifier, empty when the principal is not
// scoped to a branch.
func (c *SessionClaims) Branch() string {
	return c.BranchID
}

// Role returns the role claim.
func (c *SessionClaims) Role() UserRole {
	return c.UserRole
}

// HasRole checks if the token carries a specific role
func (c *SessionClaims) HasRole(role UserRole) bool {
	return c.UserRole == role
}

// IsAtLeast checks if the token's role is at least the minimum required role
func (c *SessionClaims) IsAtLeast(minRole UserRole) bool {
	return RoleIsAtLeast(c.UserRole, minRole)
}

// Expires returns the expiration time
func (c *SessionClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// Issued returns the issued at time
func (c *SessionClaims) Issued() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
