package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"

	"github.com/umputun/feedkeeper/pkg/domain"
)

//go:generate moq -out mocks/config.go -pkg mocks -skip-ensure -fmt goimports . ConfigProvider
//go:generate moq -out mocks/service.go -pkg mocks -skip-ensure -fmt goimports . Service

// authTimeout bounds credential lookup done by the basic auth middleware
const authTimeout = 5 * time.Second

// Server represents HTTP server instance
type Server struct {
	config  ConfigProvider
	svc     Service
	version string
	debug   bool

	lock       sync.Mutex
	httpServer *http.Server
	router     *routegroup.Bundle
}

// Service is the feed reader API used by handlers
type Service interface {
	RegisterUser(ctx context.Context, username, password string) error
	Authenticate(ctx context.Context, username, password string) (bool, error)
	DeleteUser(ctx context.Context, username string) error
	SubscribeAndFetch(ctx context.Context, username, rawURL string) (*domain.Feed, error)
	Unsubscribe(ctx context.Context, username string, feedID int64) error
	ListSubscriptions(ctx context.Context, username string) ([]domain.FeedSummary, error)
	UnreadCount(ctx context.Context, username string, feedID int64) (int, error)
	ListEntries(ctx context.Context, username string, feedID int64, filter domain.EntryFilter) ([]int64, error)
	LatestEntries(ctx context.Context, username string, feedID int64, filter domain.EntryFilter, limit int) ([]domain.ReadEntry, error)
	GetEntries(ctx context.Context, username string, ids []int64) ([]domain.ReadEntry, error)
	MarkRead(ctx context.Context, username string, ids []int64) error
	MarkUnread(ctx context.Context, username string, ids []int64) error
}

// ConfigProvider provides server configuration
type ConfigProvider interface {
	GetServerConfig() (listen string, timeout time.Duration)
}

// New initializes a new server instance
func New(cfg ConfigProvider, svc Service, version string, debug bool) *Server {
	s := &Server{
		config:  cfg,
		svc:     svc,
		version: version,
		debug:   debug,
		router:  routegroup.New(http.NewServeMux()),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Run starts the HTTP server and handles graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	listen, timeout := s.config.GetServerConfig()
	lgr.Printf("[INFO] starting server on %s", listen)

	s.lock.Lock()
	s.httpServer = &http.Server{
		Addr:              listen,
		Handler:           s.router,
		ReadHeaderTimeout: timeout,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout,
	}
	s.lock.Unlock()

	go func() {
		<-ctx.Done()
		lgr.Printf("[INFO] shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		s.lock.Lock()
		defer s.lock.Unlock()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			lgr.Printf("[WARN] server shutdown error: %v", err)
		}
	}()

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

func (s *Server) setupMiddleware() {
	s.router.Use(rest.AppInfo("feedkeeper", "umputun", s.version))
	s.router.Use(rest.Ping)

	if s.debug {
		s.router.Use(logger.New(logger.Log(lgr.Default()), logger.Prefix("[DEBUG]")).Handler)
	}

	s.router.Use(rest.Recoverer(lgr.Default()))
	s.router.Use(rest.Throttle(100))
	s.router.Use(rest.SizeLimit(1024 * 1024)) // 1MB
}

func (s *Server) setupRoutes() {
	s.router.Mount("/api/v1").Route(func(api *routegroup.Bundle) {
		api.HandleFunc("GET /status", s.statusHandler)
		api.HandleFunc("POST /users", s.registerHandler)

		api.Group().Route(func(auth *routegroup.Bundle) {
			auth.Use(s.basicAuth)
			auth.HandleFunc("DELETE /users/me", s.deleteUserHandler)

			auth.HandleFunc("GET /feeds", s.listFeedsHandler)
			auth.HandleFunc("POST /feeds", s.subscribeHandler)
			auth.HandleFunc("DELETE /feeds/{id}", s.unsubscribeHandler)
			auth.HandleFunc("GET /feeds/{id}/unread", s.unreadCountHandler)
			auth.HandleFunc("GET /feeds/{id}/entries", s.listEntriesHandler)
			auth.HandleFunc("GET /feeds/{id}/rss", s.feedRSSHandler)
			auth.HandleFunc("GET /feeds/opml", s.opmlHandler)

			auth.HandleFunc("GET /entries/{ids}", s.getEntriesHandler)
			auth.HandleFunc("POST /entries/read", s.markReadHandler)
			auth.HandleFunc("POST /entries/unread", s.markUnreadHandler)
		})
	})
}

// basicAuth passes requests with valid credentials, anything else gets 401 with the error envelope
func (s *Server) basicAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok || !s.checkCredentials(r.Context(), username, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="feedkeeper", charset="UTF-8"`)
			renderError(w, r, errors.New("invalid credentials"), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkCredentials verifies the user's password, storage failures deny access
func (s *Server) checkCredentials(ctx context.Context, username, password string) bool {
	ctx, cancel := context.WithTimeout(ctx, authTimeout)
	defer cancel()
	ok, err := s.svc.Authenticate(ctx, username, password)
	if err != nil {
		lgr.Printf("[WARN] failed to authenticate %s: %v", username, err)
		return false
	}
	return ok
}

// authUser returns the username of a request passed through basic auth
func authUser(r *http.Request) string {
	username, _, _ := r.BasicAuth()
	return username
}
