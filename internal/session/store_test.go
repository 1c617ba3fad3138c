package session

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
)

type fakeAuthenticator struct {
	user  User
	err   error
	block chan struct{} // when non-nil, Authenticate waits on it (or ctx)
	calls int
}

func (f *fakeAuthenticator) Authenticate(ctx context.Context, email, credential string) (User, error) {
	f.calls++
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return User{}, ctx.Err()
		}
	}
	if f.err != nil {
		return User{}, f.err
	}
	user := f.user
	user.Email = email
	return user, nil
}

type fakeTokens struct {
	token string
	err   error
}

func (f *fakeTokens) Issue(User) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.token, nil
}

type fakeCollections struct {
	initialized int
	resets      int
	loaded      bool
}

func (f *fakeCollections) Initialize(context.Context) error {
	f.initialized++
	f.loaded = true
	return nil
}

func (f *fakeCollections) Reset() {
	f.resets++
	f.loaded = false
}

func testUser() User {
	return User{
		ID:        uuid.MustParse("4be0643f-1d98-573b-97cd-ca98a65347dd"),
		Email:     "a@b.com",
		FirstName: "Ada",
		LastName:  "Nguyen",
		Role:      RoleOperator,
		CreatedAt: time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC),
	}
}

func newTestStore(auth Authenticator) (*Store, *MemorySliceStore, *fakeCollections) {
	slices := NewMemorySliceStore()
	data := &fakeCollections{}
	store := NewStore(Config{
		Authenticator: auth,
		Tokens:        &fakeTokens{token: "tok-1"},
		Slices:        slices,
		Data:          data,
		LoginTimeout:  time.Second,
	})
	return store, slices, data
}

func checkInvariant(t *testing.T, store *Store) {
	t.Helper()
	snap := store.Snapshot()
	want := snap.User != nil && snap.Token != ""
	if snap.Authenticated != want {
		t.Fatalf("invariant violated: authenticated=%v user=%v token=%q",
			snap.Authenticated, snap.User, snap.Token)
	}
}

func TestLoginSuccess(t *testing.T) {
	store, slices, data := newTestStore(&fakeAuthenticator{user: testUser()})

	ok, err := store.Login(context.Background(), "a@b.com", "x")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !ok {
		t.Fatalf("login rejected: %s", store.LastError())
	}
	checkInvariant(t, store)

	snap := store.Snapshot()
	if !snap.Authenticated {
		t.Fatal("expected authenticated session")
	}
	if snap.User.Email != "a@b.com" {
		t.Fatalf("user email = %q, want a@b.com", snap.User.Email)
	}
	if snap.Token != "tok-1" {
		t.Fatalf("token = %q, want tok-1", snap.Token)
	}
	if data.initialized != 1 {
		t.Fatalf("collections initialized %d times, want 1", data.initialized)
	}

	slice, present, _ := slices.Load(context.Background())
	if !present || slice.Token != "tok-1" || slice.User == nil {
		t.Fatalf("slice not persisted: present=%v slice=%+v", present, slice)
	}
}

func TestLoginFailureLeavesSessionUnchanged(t *testing.T) {
	store, _, data := newTestStore(&fakeAuthenticator{err: errors.New("bad credentials")})

	before := store.Snapshot()
	ok, err := store.Login(context.Background(), "a@b.com", "wrong")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if ok {
		t.Fatal("login unexpectedly succeeded")
	}
	checkInvariant(t, store)

	if after := store.Snapshot(); !reflect.DeepEqual(before, after) {
		t.Fatalf("session mutated on failed login: before=%+v after=%+v", before, after)
	}
	if store.LastError() == "" {
		t.Fatal("expected a login failure message")
	}
	if data.initialized != 0 {
		t.Fatal("collections must not be initialized on failed login")
	}
}

func TestLoginFailureAfterPriorLoginKeepsExistingSession(t *testing.T) {
	auth := &fakeAuthenticator{user: testUser()}
	store, _, _ := newTestStore(auth)

	if ok, _ := store.Login(context.Background(), "a@b.com", "x"); !ok {
		t.Fatal("setup login failed")
	}
	before := store.Snapshot()

	auth.err = errors.New("bad credentials")
	if ok, _ := store.Login(context.Background(), "a@b.com", "nope"); ok {
		t.Fatal("second login should have failed")
	}
	if after := store.Snapshot(); !reflect.DeepEqual(before, after) {
		t.Fatalf("failed login disturbed existing session: %+v != %+v", after, before)
	}
}

func TestLoginTimeoutMapsToFailure(t *testing.T) {
	auth := &fakeAuthenticator{user: testUser(), block: make(chan struct{})}
	slices := NewMemorySliceStore()
	store := NewStore(Config{
		Authenticator: auth,
		Tokens:        &fakeTokens{token: "tok-1"},
		Slices:        slices,
		LoginTimeout:  20 * time.Millisecond,
	})

	ok, err := store.Login(context.Background(), "a@b.com", "x")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if ok {
		t.Fatal("login should have timed out")
	}
	checkInvariant(t, store)
	if store.LastError() != "authentication timed out" {
		t.Fatalf("last error = %q", store.LastError())
	}
}

func TestSecondLoginWhileInFlightIsRejected(t *testing.T) {
	auth := &fakeAuthenticator{user: testUser(), block: make(chan struct{})}
	store, _, _ := newTestStore(auth)

	firstDone := make(chan bool)
	go func() {
		ok, _ := store.Login(context.Background(), "a@b.com", "x")
		firstDone <- ok
	}()

	// Wait until the first login is holding the in-flight slot.
	deadline := time.After(time.Second)
	for {
		store.mu.Lock()
		pending := store.inFlight
		store.mu.Unlock()
		if pending {
			break
		}
		select {
		case <-deadline:
			t.Fatal("first login never became pending")
		case <-time.After(time.Millisecond):
		}
	}

	if _, err := store.Login(context.Background(), "c@d.com", "y"); !errors.Is(err, ErrLoginInFlight) {
		t.Fatalf("concurrent login error = %v, want ErrLoginInFlight", err)
	}

	close(auth.block)
	if ok := <-firstDone; !ok {
		t.Fatal("first login should have succeeded")
	}
	if got, _ := store.CurrentUser(); got.Email != "a@b.com" {
		t.Fatalf("logged-in user = %q, want a@b.com", got.Email)
	}
}

func TestLogoutResetsEverything(t *testing.T) {
	store, slices, data := newTestStore(&fakeAuthenticator{user: testUser()})
	ctx := context.Background()

	if ok, _ := store.Login(ctx, "a@b.com", "x"); !ok {
		t.Fatal("setup login failed")
	}

	store.Logout(ctx)
	checkInvariant(t, store)

	snap := store.Snapshot()
	if snap.Authenticated || snap.User != nil || snap.Token != "" {
		t.Fatalf("session not reset: %+v", snap)
	}
	if data.loaded {
		t.Fatal("collections still loaded after logout")
	}
	if _, present, _ := slices.Load(ctx); present {
		t.Fatal("persisted slice survived logout")
	}

	// Logout is idempotent.
	store.Logout(ctx)
	if after := store.Snapshot(); !reflect.DeepEqual(snap, after) {
		t.Fatalf("double logout changed state: %+v != %+v", after, snap)
	}
	if data.resets != 2 {
		t.Fatalf("resets = %d, want 2", data.resets)
	}
}

func TestUpdateProfilePatchesOnlyNamedFields(t *testing.T) {
	store, _, _ := newTestStore(&fakeAuthenticator{user: testUser()})
	ctx := context.Background()

	if ok, _ := store.Login(ctx, "a@b.com", "x"); !ok {
		t.Fatal("setup login failed")
	}
	before, _ := store.CurrentUser()

	first := "X"
	if err := store.UpdateProfile(ctx, ProfilePatch{FirstName: &first}); err != nil {
		t.Fatalf("update profile: %v", err)
	}
	checkInvariant(t, store)

	after, _ := store.CurrentUser()
	if after.FirstName != "X" {
		t.Fatalf("first name = %q, want X", after.FirstName)
	}
	if after.Email != before.Email || after.Role != before.Role || after.ID != before.ID ||
		after.LastName != before.LastName {
		t.Fatalf("unrelated fields changed: before=%+v after=%+v", before, after)
	}
	if !after.UpdatedAt.After(before.UpdatedAt) {
		t.Fatalf("UpdatedAt not stamped: %v", after.UpdatedAt)
	}
}

func TestUpdateProfileWithoutUserReportsError(t *testing.T) {
	store, _, _ := newTestStore(&fakeAuthenticator{user: testUser()})

	first := "X"
	err := store.UpdateProfile(context.Background(), ProfilePatch{FirstName: &first})
	if !errors.Is(err, ErrNoActiveUser) {
		t.Fatalf("err = %v, want ErrNoActiveUser", err)
	}
}

func TestSetUserReplacesOnlyUser(t *testing.T) {
	store, _, _ := newTestStore(&fakeAuthenticator{user: testUser()})
	ctx := context.Background()

	if ok, _ := store.Login(ctx, "a@b.com", "x"); !ok {
		t.Fatal("setup login failed")
	}

	refreshed := testUser()
	refreshed.FirstName = "Grace"
	store.SetUser(ctx, &refreshed)
	checkInvariant(t, store)

	snap := store.Snapshot()
	if snap.User.FirstName != "Grace" {
		t.Fatalf("user not replaced: %+v", snap.User)
	}
	if snap.Token != "tok-1" || !snap.Authenticated {
		t.Fatalf("token/authenticated disturbed: %+v", snap)
	}
}

func TestRestoreRoundTrip(t *testing.T) {
	slices := NewMemorySliceStore()
	ctx := context.Background()

	first := NewStore(Config{
		Authenticator: &fakeAuthenticator{user: testUser()},
		Tokens:        &fakeTokens{token: "tok-1"},
		Slices:        slices,
	})
	if ok, _ := first.Login(ctx, "a@b.com", "x"); !ok {
		t.Fatal("setup login failed")
	}
	want := first.Snapshot()

	// A fresh store sharing the slice backend stands in for a restarted
	// process.
	second := NewStore(Config{
		Authenticator: &fakeAuthenticator{user: testUser()},
		Tokens:        &fakeTokens{token: "tok-1"},
		Slices:        slices,
	})
	if err := second.Restore(ctx); err != nil {
		t.Fatalf("restore: %v", err)
	}
	checkInvariant(t, second)

	if got := second.Snapshot(); !reflect.DeepEqual(got, want) {
		t.Fatalf("restored session = %+v, want %+v", got, want)
	}
}

func TestRestoreWithoutSliceDefaultsToLoggedOut(t *testing.T) {
	store, _, _ := newTestStore(&fakeAuthenticator{user: testUser()})

	if err := store.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if store.IsAuthenticated() {
		t.Fatal("restore of empty slice produced an authenticated session")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	store, _, _ := newTestStore(&fakeAuthenticator{user: testUser()})
	if ok, _ := store.Login(context.Background(), "a@b.com", "x"); !ok {
		t.Fatal("setup login failed")
	}

	snap := store.Snapshot()
	snap.User.FirstName = "Mallory"

	if current, _ := store.CurrentUser(); current.FirstName == "Mallory" {
		t.Fatal("snapshot aliases store-owned user")
	}
}
