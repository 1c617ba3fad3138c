package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleOAuth wraps the OAuth 2.0 flow for Google sign-in, the real identity
// provider path alongside the directory and stub authenticators.
type GoogleOAuth struct {
	config *oauth2.Config
	http   *http.Client
}

// GoogleProfile is the subset of the Google userinfo response we map onto an
// operator account.
type GoogleProfile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	GivenName string `json:"given_name"`
	Surname   string `json:"family_name"`
	Picture   string `json:"picture"`
}

// NewGoogleOAuth constructs an OAuth helper from client credentials. The
// redirect URL must point at this server's callback route.
func NewGoogleOAuth(clientID, clientSecret, redirectURL string) (*GoogleOAuth, error) {
	if clientID == "" || clientSecret == "" {
		return nil, errors.New("google oauth client not configured")
	}
	if redirectURL == "" {
		return nil, errors.New("google oauth redirect url not configured")
	}

	return &GoogleOAuth{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				"openid",
				"email",
				"profile",
			},
			Endpoint: google.Endpoint,
		},
		http: http.DefaultClient,
	}, nil
}

// AuthCodeURL returns the Google authorization URL for the provided state token.
func (g *GoogleOAuth) AuthCodeURL(state string) string {
	return g.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange verifies the OAuth code and retrieves basic profile information.
func (g *GoogleOAuth) Exchange(ctx context.Context, code string) (*GoogleProfile, error) {
	if strings.TrimSpace(code) == "" {
		return nil, errors.New("empty authorization code")
	}

	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleUserInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build userinfo request: %w", err)
	}
	token.SetAuthHeader(req)

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("userinfo request failed: %s", resp.Status)
	}

	var profile GoogleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}

	if profile.Email == "" {
		return nil, errors.New("google profile missing email")
	}

	return &profile, nil
}
