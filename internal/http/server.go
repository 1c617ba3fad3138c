package http

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"shopfloor/internal/auth"
	"shopfloor/internal/catalog"
	"shopfloor/internal/config"
	"shopfloor/internal/db"
	"shopfloor/internal/session"
)

type Server struct {
	cfg          config.Config
	router       chi.Router
	sessions     *session.Store
	cache        *catalog.Cache
	jwt          *auth.JWTManager
	oauth        *auth.GoogleOAuth
	db           *db.Pool
	limiter      *rateLimiter
	stateCookie  string
	secureCookie bool
}

// NewServer assembles the router. oauth and pool may be nil: without oauth
// the Google routes are not registered, without a pool health checks skip the
// database ping.
func NewServer(cfg config.Config, sessions *session.Store, cache *catalog.Cache, jwtMgr *auth.JWTManager, oauth *auth.GoogleOAuth, pool *db.Pool) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	origin := strings.TrimSuffix(cfg.FrontendURL, "/")
	if origin == "" {
		origin = "http://localhost:3000"
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{origin},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	server := &Server{
		cfg:          cfg,
		router:       router,
		sessions:     sessions,
		cache:        cache,
		jwt:          jwtMgr,
		oauth:        oauth,
		db:           pool,
		limiter:      newRateLimiter(cfg.RateLimitRPS),
		stateCookie:  "shopfloor_oauth_state",
		secureCookie: strings.HasPrefix(strings.ToLower(cfg.FrontendURL), "https://"),
	}

	router.Use(server.rateLimitMiddleware())
	server.registerRoutes()
	return server
}

func (s *Server) registerRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Get(loginPath, s.handleLoginPage)

	s.router.Post("/api/login", s.handleLogin)
	s.router.Post("/api/logout", s.handleLogout)
	s.router.Get("/api/session", s.handleSession)

	if s.oauth != nil {
		s.router.Get("/auth/google/start", s.handleGoogleStart)
		s.router.Get("/auth/google/callback", s.handleGoogleCallback)
	}

	s.router.Group(func(r chi.Router) {
		r.Use(s.requireSession)

		r.Get("/dashboard", s.handleDashboard)
		r.Patch("/api/profile", s.handleUpdateProfile)

		r.Route("/api", func(r chi.Router) {
			r.Get("/products", s.handleListProducts)
			r.Get("/products/{id}", s.handleGetProduct)
			r.Get("/orders", s.handleListOrders)
			r.Get("/orders/{id}", s.handleGetOrder)
			r.Get("/boms", s.handleListBOMs)
			r.Get("/boms/{id}", s.handleGetBOM)
			r.Get("/workcenters", s.handleListWorkCenters)
			r.Get("/workcenters/{id}", s.handleGetWorkCenter)
			r.Get("/stock-moves", s.handleListStockMoves)
			r.Get("/stock-moves/{id}", s.handleGetStockMove)

			r.With(s.requireRoles(session.RoleAdmin)).Post("/admin/reload", s.handleReload)
		})
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ok"
	if s.db != nil {
		if err := s.db.Ping(ctx); err != nil {
			status = "degraded"
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

// handleLoginPage is the navigation target the route guard redirects to. The
// dashboard frontend serves the real form; this endpoint keeps direct
// navigation meaningful.
func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, "<!doctype html><title>shopfloor login</title><p>Sign in via the dashboard.</p>")
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, "<!doctype html><title>shopfloor</title><p>shopfloor dashboard</p>")
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	ReturnTo string `json:"returnTo"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("parse login request: %w", err))
		return
	}
	if req.Email == "" || req.Password == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("email and password are required"))
		return
	}

	ok, err := s.sessions.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, session.ErrLoginInFlight) {
		s.writeError(w, http.StatusConflict, err)
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if !ok {
		msg := s.sessions.LastError()
		if msg == "" {
			msg = "authentication failed"
		}
		s.writeError(w, http.StatusUnauthorized, errors.New(msg))
		return
	}

	snap := s.sessions.Snapshot()
	s.setSessionCookie(w, snap.Token, time.Now().Add(s.cfg.SessionTTL))

	s.writeJSON(w, http.StatusOK, map[string]any{
		"user":     snap.User,
		"returnTo": safeReturnTo(req.ReturnTo),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Logout(r.Context())
	s.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	snap := s.sessions.Snapshot()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"authenticated": snap.Authenticated,
		"user":          snap.User,
	})
}

type profileRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	AvatarURL *string `json:"avatarUrl"`
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("parse profile request: %w", err))
		return
	}

	patch := session.ProfilePatch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		AvatarURL: req.AvatarURL,
	}
	if err := s.sessions.UpdateProfile(r.Context(), patch); err != nil {
		if errors.Is(err, session.ErrNoActiveUser) {
			s.writeError(w, http.StatusUnauthorized, err)
			return
		}
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	user, _ := s.sessions.CurrentUser()
	s.writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.cache.Initialize(r.Context()); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGoogleStart(w http.ResponseWriter, r *http.Request) {
	state, err := s.newStateToken()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.stateCookie,
		Value:    state,
		Path:     "/auth/google",
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(5 * time.Minute),
	})

	http.Redirect(w, r, s.oauth.AuthCodeURL(state), http.StatusFound)
}

func (s *Server) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("parse callback: %w", err))
		return
	}

	if !s.validateState(r, r.FormValue("state")) {
		s.writeError(w, http.StatusBadRequest, errors.New("invalid oauth state"))
		return
	}

	profile, err := s.oauth.Exchange(ctx, r.FormValue("code"))
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err)
		return
	}

	user := s.userFromGoogleProfile(ctx, profile)
	if err := s.sessions.Establish(ctx, user); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	snap := s.sessions.Snapshot()
	s.setSessionCookie(w, snap.Token, time.Now().Add(s.cfg.SessionTTL))
	s.clearStateCookie(w)

	http.Redirect(w, r, strings.TrimSuffix(s.cfg.FrontendURL, "/")+"/dashboard", http.StatusFound)
}

// userFromGoogleProfile maps an externally verified Google identity onto an
// operator account, preferring the directory record when one exists.
func (s *Server) userFromGoogleProfile(ctx context.Context, profile *auth.GoogleProfile) session.User {
	email := strings.ToLower(profile.Email)
	if s.db != nil {
		if account, err := s.db.AccountByEmail(ctx, email); err == nil {
			return account.User
		}
	}

	now := time.Now().UTC()
	return session.User{
		ID:        uuid.NewSHA1(uuid.NameSpaceOID, []byte(email)),
		Email:     email,
		FirstName: profile.GivenName,
		LastName:  profile.Surname,
		Role:      session.RoleOperator,
		AvatarURL: profile.Picture,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *Server) rateLimitMiddleware() func(http.Handler) http.Handler {
	if s.limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			key := "ip:" + clientIPAddress(r.RemoteAddr)
			if snap := s.sessions.Snapshot(); snap.Authenticated && s.tokenFromRequest(r) == snap.Token {
				key = "user:" + snap.User.ID.String()
			}

			if !s.limiter.Allow(key, time.Now()) {
				s.writeError(w, http.StatusTooManyRequests, errors.New("rate limit exceeded"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) validateState(r *http.Request, state string) bool {
	cookie, err := r.Cookie(s.stateCookie)
	if err != nil {
		return false
	}
	return cookie.Value != "" && cookie.Value == state
}

func (s *Server) clearStateCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.stateCookie,
		Value:    "",
		Path:     "/auth/google",
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func (s *Server) newStateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func (s *Server) setSessionCookie(w http.ResponseWriter, value string, expires time.Time) {
	sameSite := http.SameSiteLaxMode
	if s.secureCookie {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.SessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: sameSite,
		Expires:  expires,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookie,
		MaxAge:   -1,
	})
}

func (s *Server) writeError(w http.ResponseWriter, code int, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}
	s.writeJSON(w, code, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%s", s.cfg.Port)
	return http.ListenAndServe(addr, s.router)
}
