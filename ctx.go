package auth

import "context"

// IdentityContext is the per-request value the gate attaches on success:
// who is calling, for which church, within which branch, with what role.
// Downstream handlers must scope every tenant query by ChurchID taken from
// here, never from client-supplied input.
type IdentityContext struct {
	Subject  string
	ChurchID string
	BranchID string
	Role     UserRole
}

// IsAtLeast checks the identity's role against a minimum required role.
func (ic *IdentityContext) IsAtLeast(minRole UserRole) bool {
	if ic == nil {
		return false
	}
	return RoleIsAtLeast(ic.Role, minRole)
}

// IdentityFromClaims derives the request identity from a verified claim set.
func IdentityFromClaims(claims *SessionClaims) *IdentityContext {
	if claims == nil {
		return nil
	}
	return &IdentityContext{
		Subject:  claims.Subject(),
		ChurchID: claims.Church(),
		BranchID: claims.Branch(),
		Role:     claims.Role(),
	}
}

var identityCtxKey = &contextKey{"identity"}

type contextKey struct {
	name string
}

// WithIdentityContext sets the request identity in the given context.
func WithIdentityContext(ctx context.Context, identity *IdentityContext) context.Context {
	return context.WithValue(ctx, identityCtxKey, identity)
}

// IdentityFromContext finds the request identity from the context.
func IdentityFromContext(ctx context.Context) (*IdentityContext, bool) {
	raw, ok := ctx.Value(identityCtxKey).(*IdentityContext)
	if !ok || raw == nil {
		return nil, false
	}
	return raw, true
}
