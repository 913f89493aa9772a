package auth

import "github.com/google/uuid"

// UserIdentity adapts a User into the Identity interface for token minting.
type UserIdentity struct {
	user *User
}

// NewIdentityFromUser returns an Identity adapter for the provided user.
func NewIdentityFromUser(user *User) Identity {
	if user == nil {
		return nil
	}
	return UserIdentity{user: user}
}

// ID returns the user's ID as a string.
func (u UserIdentity) ID() string {
	if u.user == nil {
		return ""
	}
	return u.user.ID.String()
}

// Email returns the user's email address.
func (u UserIdentity) Email() string {
	if u.user == nil {
		return ""
	}
	return u.user.Email
}

// ChurchID returns the owning tenant as a string, empty for system-level
// principals.
func (u UserIdentity) ChurchID() string {
	if u.user == nil || u.user.ChurchID == uuid.Nil {
		return ""
	}
	return u.user.ChurchID.String()
}

// BranchID returns the branch scope, empty when the user is not branch bound.
func (u UserIdentity) BranchID() string {
	if u.user == nil || u.user.BranchID == nil {
		return ""
	}
	return u.user.BranchID.String()
}

// Role returns the user's role as a string.
func (u UserIdentity) Role() string {
	if u.user == nil {
		return ""
	}
	return string(u.user.Role)
}

var _ Identity = UserIdentity{}
