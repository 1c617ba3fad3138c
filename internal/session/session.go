// Package session holds the process-wide operator session: who is logged in,
// their opaque credential, and the durable slice of that state that survives
// restarts. All mutations go through the Store; nothing else writes session
// state.
package session

// Session is an immutable snapshot of the current session state.
// Authenticated is derived, never stored: it is true exactly when both a user
// and a token are present.
type Session struct {
	User          *User  `json:"user"`
	Token         string `json:"token"`
	Authenticated bool   `json:"authenticated"`
}

// Slice is the exact subset of session state that is persisted. Nothing
// outside this struct ever reaches durable storage; in particular no cached
// resource collections.
type Slice struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

func (s Slice) valid() bool {
	return s.User != nil && s.Token != ""
}

func cloneUser(u *User) *User {
	if u == nil {
		return nil
	}
	copied := *u
	return &copied
}
