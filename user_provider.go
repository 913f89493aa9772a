package auth

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
)

// UserTracker is the slice of the credential store the verifier needs.
type UserTracker interface {
	GetByIdentifier(ctx context.Context, identifier string) (*User, error)
	TrackAttemptedLogin(ctx context.Context, user *User) error
	TrackSuccessfulLogin(ctx context.Context, user *User) error
}

// MaxLoginAttempts is the number of failed attempts allowed inside the
// cooldown window before logins are refused outright.
var MaxLoginAttempts = 5

// CoolDownPeriod is the window used to age out the attempt counter.
var CoolDownPeriod = 24 * time.Hour

// UserProvider is the credential verifier: it checks a submitted
// identifier/password pair against stored bcrypt hashes and the account-state
// flags. It is a leaf; it knows nothing about tokens or transport.
type UserProvider struct {
	store  UserTracker
	logger Logger
	now    func() time.Time
}

// NewUserProvider will create a new UserProvider
func NewUserProvider(store UserTracker) *UserProvider {
	return &UserProvider{
		store:  store,
		logger: defLogger{},
		now:    time.Now,
	}
}

func (u *UserProvider) WithLogger(l Logger) *UserProvider {
	if l != nil {
		u.logger = l
	}
	return u
}

// WithClock injects a custom clock (useful for tests).
func (u *UserProvider) WithClock(clock func() time.Time) *UserProvider {
	if clock != nil {
		u.now = clock
	}
	return u
}

// VerifyIdentity finds the user, compares the password, and returns the
// identity. A missing identifier and a wrong password both come back as
// ErrInvalidCredentials so callers cannot tell which half was wrong.
func (u *UserProvider) VerifyIdentity(ctx context.Context, identifier, password string) (Identity, error) {
	user, err := u.store.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during verification")
	}

	if user.LoginAttemptAt != nil && u.now().Sub(*user.LoginAttemptAt) > CoolDownPeriod {
		user.LoginAttempts = 0
	}

	// cool off before we even touch the hash
	if user.LoginAttempts > MaxLoginAttempts {
		return nil, ErrTooManyLoginAttempts
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		bestEffort(u.logger, "track attempted login", func() error {
			return u.store.TrackAttemptedLogin(ctx, user)
		})
		return nil, ErrInvalidCredentials
	}

	if err := ensureAuthenticatableUser(user); err != nil {
		return nil, err
	}

	// The last-login write must never abort the login itself.
	bestEffort(u.logger, "track successful login", func() error {
		return u.store.TrackSuccessfulLogin(ctx, user)
	})

	return NewIdentityFromUser(user), nil
}

// FindIdentityByIdentifier resolves an identity without a password check; the
// account-state flags still apply.
func (u *UserProvider) FindIdentityByIdentifier(ctx context.Context, identifier string) (Identity, error) {
	user, err := u.store.GetByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}

	if err := ensureAuthenticatableUser(user); err != nil {
		return nil, err
	}

	return NewIdentityFromUser(user), nil
}

var _ IdentityProvider = (*UserProvider)(nil)

// ensureAuthenticatableUser enforces the account-state flags: soft-deleted
// accounts are AccountNotFound, inactive ones AccountDeactivated.
func ensureAuthenticatableUser(user *User) error {
	if user == nil {
		return ErrIdentityNotFound
	}

	if user.DeletedAt != nil {
		return ErrAccountNotFound
	}

	if !user.IsActive {
		return ErrAccountDeactivated
	}

	if !IsValidRole(user.Role) {
		return errors.New("user has an unknown or invalid role", errors.CategoryAuth).
			WithTextCode("INVALID_ROLE").
			WithMetadata(map[string]any{"role": user.Role, "user_id": user.ID.String()})
	}

	return nil
}
