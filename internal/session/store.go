package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

// ErrLoginInFlight is returned when Login is called while another login is
// still awaiting the authentication collaborator. At most one login may be in
// flight at a time.
var ErrLoginInFlight = errors.New("login already in progress")

// ErrNoActiveUser is returned by UpdateProfile when no user is logged in.
var ErrNoActiveUser = errors.New("no active user")

const defaultLoginTimeout = 10 * time.Second

// Authenticator verifies a credential pair against an identity provider and
// returns the account it belongs to.
type Authenticator interface {
	Authenticate(ctx context.Context, email, credential string) (User, error)
}

// TokenSource mints the opaque session credential handed out on login.
type TokenSource interface {
	Issue(user User) (string, error)
}

// SliceStore persists the session slice under a fixed storage key.
type SliceStore interface {
	Save(ctx context.Context, slice Slice) error
	Load(ctx context.Context) (Slice, bool, error)
	Clear(ctx context.Context) error
}

// Collections is implemented by the resource layer so a successful login can
// prime dependent collections and logout can drop them. After Reset no
// previously loaded record may remain readable.
type Collections interface {
	Initialize(ctx context.Context) error
	Reset()
}

// Config carries the collaborators a Store needs. Authenticator and Tokens
// are required; Slices and Data may be nil when persistence or resource
// priming is not wanted (tests, tooling).
type Config struct {
	Authenticator Authenticator
	Tokens        TokenSource
	Slices        SliceStore
	Data          Collections
	LoginTimeout  time.Duration
}

// Store is the single owner of session state. Every mutation is serialized
// through its mutex, so it is safe for concurrent use by HTTP handlers.
type Store struct {
	auth         Authenticator
	tokens       TokenSource
	slices       SliceStore
	data         Collections
	loginTimeout time.Duration
	now          func() time.Time

	mu       sync.Mutex
	user     *User
	token    string
	inFlight bool
	lastErr  string
}

func NewStore(cfg Config) *Store {
	timeout := cfg.LoginTimeout
	if timeout <= 0 {
		timeout = defaultLoginTimeout
	}
	return &Store{
		auth:         cfg.Authenticator,
		tokens:       cfg.Tokens,
		slices:       cfg.Slices,
		data:         cfg.Data,
		loginTimeout: timeout,
		now:          time.Now,
	}
}

// Login authenticates the credential pair and, on success, installs the user,
// a freshly issued token, and primes dependent collections. Authentication
// failure (including timeout) leaves the session exactly as it was and is
// reported through the false return and LastError; it is never an error
// value. The only error condition is a second login while one is pending.
func (s *Store) Login(ctx context.Context, email, credential string) (bool, error) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return false, ErrLoginInFlight
	}
	s.inFlight = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(ctx, s.loginTimeout)
	defer cancel()

	user, err := s.auth.Authenticate(ctx, email, credential)
	if err != nil {
		s.failLogin(err)
		return false, nil
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		s.failLogin(err)
		return false, nil
	}

	s.mu.Lock()
	s.user = cloneUser(&user)
	s.token = token
	s.lastErr = ""
	slice := Slice{User: cloneUser(s.user), Token: s.token}
	s.mu.Unlock()

	s.persist(ctx, slice)

	if s.data != nil {
		if err := s.data.Initialize(ctx); err != nil {
			log.Printf("session: initialize collections: %v", err)
		}
	}
	return true, nil
}

// Establish installs an externally verified identity (an OAuth callback, for
// example) as the current session. It issues a fresh token, persists the
// slice, and primes collections exactly like a successful Login.
func (s *Store) Establish(ctx context.Context, user User) error {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.user = cloneUser(&user)
	s.token = token
	s.lastErr = ""
	slice := Slice{User: cloneUser(s.user), Token: s.token}
	s.mu.Unlock()

	s.persist(ctx, slice)

	if s.data != nil {
		if err := s.data.Initialize(ctx); err != nil {
			log.Printf("session: initialize collections: %v", err)
		}
	}
	return nil
}

// Logout unconditionally resets the session to its logged-out default, drops
// every dependent collection, and clears the persisted slice. Calling it
// while already logged out is a no-op with the same outcome.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.lastErr = ""
	s.mu.Unlock()

	if s.data != nil {
		s.data.Reset()
	}
	if s.slices != nil {
		if err := s.slices.Clear(ctx); err != nil {
			log.Printf("session: clear persisted slice: %v", err)
		}
	}
}

// SetUser replaces only the user field, for out-of-band refreshes of the
// account record. Token and authentication state are untouched.
func (s *Store) SetUser(ctx context.Context, user *User) {
	s.mu.Lock()
	s.user = cloneUser(user)
	slice := Slice{User: cloneUser(s.user), Token: s.token}
	s.mu.Unlock()

	s.persist(ctx, slice)
}

// UpdateProfile merges the patch into the current user and stamps UpdatedAt.
// It reports ErrNoActiveUser when called while logged out.
func (s *Store) UpdateProfile(ctx context.Context, patch ProfilePatch) error {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return ErrNoActiveUser
	}
	updated := *s.user
	if patch.FirstName != nil {
		updated.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		updated.LastName = *patch.LastName
	}
	if patch.AvatarURL != nil {
		updated.AvatarURL = *patch.AvatarURL
	}
	updated.UpdatedAt = s.now().UTC()
	s.user = &updated
	slice := Slice{User: cloneUser(s.user), Token: s.token}
	s.mu.Unlock()

	s.persist(ctx, slice)
	return nil
}

// Restore rehydrates the session from the persisted slice at startup. An
// absent or unreadable slice leaves the store in its logged-out default; the
// load error is returned so callers can log it.
func (s *Store) Restore(ctx context.Context) error {
	if s.slices == nil {
		return nil
	}

	slice, ok, err := s.slices.Load(ctx)
	if err != nil || !ok || !slice.valid() {
		return err
	}

	s.mu.Lock()
	s.user = cloneUser(slice.User)
	s.token = slice.Token
	s.mu.Unlock()

	if s.data != nil {
		if initErr := s.data.Initialize(ctx); initErr != nil {
			log.Printf("session: initialize collections after restore: %v", initErr)
		}
	}
	return nil
}

// Snapshot returns a copy of the current session. Authenticated is derived
// from the user/token pair, so the invariant holds by construction.
func (s *Store) Snapshot() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Session{
		User:          cloneUser(s.user),
		Token:         s.token,
		Authenticated: s.user != nil && s.token != "",
	}
}

func (s *Store) IsAuthenticated() bool {
	return s.Snapshot().Authenticated
}

// CurrentUser returns a copy of the logged-in user, if any.
func (s *Store) CurrentUser() (*User, bool) {
	snap := s.Snapshot()
	return snap.User, snap.User != nil
}

// LastError reports the most recent login failure message. It is cleared by
// a successful login and by logout.
func (s *Store) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Store) failLogin(err error) {
	msg := "authentication failed"
	if errors.Is(err, context.DeadlineExceeded) {
		msg = "authentication timed out"
	}
	s.mu.Lock()
	s.lastErr = msg
	s.mu.Unlock()
	log.Printf("session: login failed: %v", err)
}

func (s *Store) persist(ctx context.Context, slice Slice) {
	if s.slices == nil {
		return
	}
	if err := s.slices.Save(ctx, slice); err != nil {
		log.Printf("session: persist slice: %v", err)
	}
}
