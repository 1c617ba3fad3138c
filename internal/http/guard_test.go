package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestGuardRedirectsBrowserNavigation(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}

	location, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse location: %v", err)
	}
	if location.Path != "/login" {
		t.Fatalf("redirect path = %q, want /login", location.Path)
	}
	if got := location.Query().Get("return_to"); got != "/dashboard" {
		t.Fatalf("return_to = %q, want /dashboard", got)
	}
}

func TestGuardPreservesQueryInReturnTo(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/dashboard?tab=orders", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	location, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse location: %v", err)
	}
	if got := location.Query().Get("return_to"); got != "/dashboard?tab=orders" {
		t.Fatalf("return_to = %q, want /dashboard?tab=orders", got)
	}
}

func TestGuardRejectsAPIRequestsWithJSON(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/orders", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}
}

func TestGuardRejectsForgedToken(t *testing.T) {
	srv := newTestServer(t)
	login(t, srv, "ada@factory.test")

	forged := &http.Cookie{Name: "shopfloor_session", Value: "not-the-session-token"}
	if rec := doJSON(t, srv, http.MethodGet, "/api/orders", "", forged); rec.Code != http.StatusUnauthorized {
		t.Fatalf("forged token status = %d, want 401", rec.Code)
	}
}

func TestGuardAdmitsValidSessionAndReturnFlow(t *testing.T) {
	srv := newTestServer(t)

	// Unauthenticated navigation bounces to login with the destination kept.
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusFound {
		t.Fatalf("pre-login status = %d, want 302", rec.Code)
	}
	location, _ := url.Parse(rec.Header().Get("Location"))
	returnTo := location.Query().Get("return_to")

	// After login, navigating back to the preserved destination succeeds.
	cookie := login(t, srv, "ada@factory.test")
	req = httptest.NewRequest(http.MethodGet, returnTo, nil)
	req.Header.Set("Accept", "text/html")
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("post-login status = %d, want 200", rec.Code)
	}
}

func TestGuardAcceptsBearerToken(t *testing.T) {
	srv := newTestServer(t)
	cookie := login(t, srv, "ada@factory.test")

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	req.Header.Set("Authorization", "Bearer "+cookie.Value)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("bearer status = %d, want 200", rec.Code)
	}
}

func TestSafeReturnTo(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"/dashboard", "/dashboard"},
		{"/orders?page=2", "/orders?page=2"},
		{"", ""},
		{"//evil.example", ""},
		{"https://evil.example", ""},
		{"dashboard", ""},
		{"/x\r\nSet-Cookie: a=b", ""},
	}
	for _, tc := range cases {
		if got := safeReturnTo(tc.raw); got != tc.want {
			t.Errorf("safeReturnTo(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}
