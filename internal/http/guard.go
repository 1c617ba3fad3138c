package http

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"shopfloor/internal/auth"
	"shopfloor/internal/session"
)

const loginPath = "/login"

// tokenFromRequest prefers the session cookie, falling back to a bearer
// header for clients that keep the token themselves.
func (s *Server) tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(s.cfg.SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authz := r.Header.Get("Authorization")
	if strings.HasPrefix(authz, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
	}
	return ""
}

// requireSession gates the protected subtree. A request is admitted only when
// the session store is authenticated and the presented token is the store's
// current, still-valid token. Browser navigation is redirected to the login
// view with the original destination preserved; API clients get 401.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		snap := s.sessions.Snapshot()
		token := s.tokenFromRequest(r)

		if !snap.Authenticated || token == "" || token != snap.Token {
			s.denySession(w, r)
			return
		}

		claims, err := s.jwt.Parse(token)
		if err != nil {
			s.denySession(w, r)
			return
		}

		identity := &auth.Identity{
			UserID: claims.UserID,
			Email:  claims.Email,
			Name:   strings.TrimSpace(claims.FirstName + " " + claims.LastName),
			Role:   session.Role(claims.Role),
		}
		next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), identity)))
	})
}

// requireRoles restricts an already-guarded route to the named roles.
func (s *Server) requireRoles(roles ...session.Role) func(http.Handler) http.Handler {
	allowed := make(map[session.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := auth.IdentityFromContext(r.Context())
			if !ok {
				s.writeError(w, http.StatusUnauthorized, errors.New("unauthenticated"))
				return
			}
			if _, ok := allowed[identity.Role]; !ok {
				s.writeError(w, http.StatusForbidden, errors.New("insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) denySession(w http.ResponseWriter, r *http.Request) {
	if wantsJSON(r) {
		s.writeError(w, http.StatusUnauthorized, errors.New("unauthenticated"))
		return
	}

	target := loginPath + "?return_to=" + url.QueryEscape(r.URL.RequestURI())
	http.Redirect(w, r, target, http.StatusFound)
}

func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// safeReturnTo accepts only same-origin relative paths, so a crafted login
// link cannot bounce the operator to another site.
func safeReturnTo(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") {
		return ""
	}
	if strings.ContainsAny(raw, "\r\n") {
		return ""
	}
	return raw
}
