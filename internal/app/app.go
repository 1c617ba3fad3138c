package app

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"shopfloor/internal/auth"
	"shopfloor/internal/catalog"
	"shopfloor/internal/config"
	"shopfloor/internal/db"
	httpserver "shopfloor/internal/http"
	"shopfloor/internal/session"
)

// Application wires together config, the session store, resource
// collections, and the HTTP server.
type Application struct {
	cfg         config.Config
	dbPool      *db.Pool
	sqliteSlice *session.SQLiteStore
	redisClient *redis.Client
	sessions    *session.Store
	srv         *httpserver.Server
}

func NewApplication(ctx context.Context, cfg config.Config) (*Application, error) {
	app := &Application{cfg: cfg}

	var slices session.SliceStore
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		app.redisClient = redis.NewClient(opts)
		slices = session.NewRedisStore(app.redisClient, cfg.SessionTTL)
	} else {
		store, err := session.OpenSQLite(cfg.SessionStorePath)
		if err != nil {
			return nil, fmt.Errorf("open session store: %w", err)
		}
		app.sqliteSlice = store
		slices = store
	}

	var repo catalog.Repository
	var authenticator session.Authenticator
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			app.Shutdown(ctx)
			return nil, fmt.Errorf("connect database: %w", err)
		}
		app.dbPool = pool
		repo = pool
		authenticator = auth.NewDirectoryAuthenticator(dbAccounts{pool: pool})
	} else {
		log.Printf("no DATABASE_URL configured, serving fixtures with the stub authenticator")
		repo = catalog.NewFixtureRepository()
		authenticator = auth.NewStubAuthenticator(cfg.StubLoginDelay)
	}

	cache := catalog.NewCache(repo)
	jwtMgr := auth.NewJWTManager(cfg.JWTSecret, cfg.SessionTTL)

	app.sessions = session.NewStore(session.Config{
		Authenticator: authenticator,
		Tokens:        jwtMgr,
		Slices:        slices,
		Data:          cache,
		LoginTimeout:  cfg.LoginTimeout,
	})
	if err := app.sessions.Restore(ctx); err != nil {
		log.Printf("session restore: %v", err)
	}

	var oauth *auth.GoogleOAuth
	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		redirect := cfg.OAuthRedirectURL
		if redirect == "" {
			redirect = fmt.Sprintf("http://localhost:%s/auth/google/callback", cfg.Port)
		}
		var err error
		oauth, err = auth.NewGoogleOAuth(cfg.GoogleClientID, cfg.GoogleClientSecret, redirect)
		if err != nil {
			app.Shutdown(ctx)
			return nil, fmt.Errorf("google oauth: %w", err)
		}
	}

	app.srv = httpserver.NewServer(cfg, app.sessions, cache, jwtMgr, oauth, app.dbPool)
	return app, nil
}

func (a *Application) Start() error {
	log.Printf("starting HTTP server on :%s", a.cfg.Port)
	return a.srv.Start()
}

func (a *Application) Shutdown(context.Context) {
	if a.dbPool != nil {
		a.dbPool.Close()
	}
	if a.sqliteSlice != nil {
		_ = a.sqliteSlice.Close()
	}
	if a.redisClient != nil {
		_ = a.redisClient.Close()
	}
}

// dbAccounts adapts the database pool to the authenticator's account lookup.
type dbAccounts struct {
	pool *db.Pool
}

func (a dbAccounts) AccountByEmail(ctx context.Context, email string) (auth.Account, error) {
	account, err := a.pool.AccountByEmail(ctx, email)
	if errors.Is(err, db.ErrAccountNotFound) {
		return auth.Account{}, auth.ErrAccountNotFound
	}
	if err != nil {
		return auth.Account{}, err
	}
	return auth.Account{User: account.User, PasswordHash: account.PasswordHash}, nil
}
