// Package auth supplies the identity collaborators the session store and the
// HTTP layer consume: credential verification, session token minting, and the
// request-scoped identity context.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"shopfloor/internal/session"
)

// ErrInvalidCredentials is returned for any credential pair that does not
// resolve to an account. Lookup misses and bad passwords are deliberately
// indistinguishable.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrAccountNotFound is returned by an AccountSource when no account matches
// the email.
var ErrAccountNotFound = errors.New("account not found")

// Account pairs an operator record with its stored password hash.
type Account struct {
	User         session.User
	PasswordHash string
}

// AccountSource looks up operator accounts, typically in the user directory
// table.
type AccountSource interface {
	AccountByEmail(ctx context.Context, email string) (Account, error)
}

// DirectoryAuthenticator verifies credentials against a stored account
// directory with argon2id hashes.
type DirectoryAuthenticator struct {
	accounts AccountSource
}

func NewDirectoryAuthenticator(accounts AccountSource) *DirectoryAuthenticator {
	return &DirectoryAuthenticator{accounts: accounts}
}

func (d *DirectoryAuthenticator) Authenticate(ctx context.Context, email, credential string) (session.User, error) {
	account, err := d.accounts.AccountByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return session.User{}, ErrInvalidCredentials
		}
		return session.User{}, err
	}

	ok, err := VerifyPassword(credential, account.PasswordHash)
	if err != nil {
		return session.User{}, err
	}
	if !ok {
		return session.User{}, ErrInvalidCredentials
	}
	return account.User, nil
}

// StubAuthenticator is the demo-mode identity provider: after a fixed
// simulated delay it fabricates a deterministic account for any non-empty
// credential pair. The same email always yields the same user ID.
type StubAuthenticator struct {
	Delay time.Duration
	now   func() time.Time
}

func NewStubAuthenticator(delay time.Duration) *StubAuthenticator {
	return &StubAuthenticator{Delay: delay, now: time.Now}
}

func (s *StubAuthenticator) Authenticate(ctx context.Context, email, credential string) (session.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || credential == "" {
		return session.User{}, ErrInvalidCredentials
	}

	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
			return session.User{}, ctx.Err()
		}
	}

	local := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		local = email[:at]
	}

	role := session.RoleOperator
	switch {
	case strings.HasPrefix(local, "admin"):
		role = session.RoleAdmin
	case strings.HasPrefix(local, "manager"):
		role = session.RoleManufacturingManager
	}

	first := local
	if first != "" {
		first = strings.ToUpper(first[:1]) + first[1:]
	}

	now := s.now().UTC()
	return session.User{
		ID:        uuid.NewSHA1(uuid.NameSpaceOID, []byte(email)),
		Email:     email,
		FirstName: first,
		LastName:  "Operator",
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
