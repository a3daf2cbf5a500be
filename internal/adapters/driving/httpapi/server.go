package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"

	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
	"github.com/custodia-labs/ledgerbridge/internal/core/ports/driving"
	"github.com/custodia-labs/ledgerbridge/internal/logger"
)

const (
	sessionName   = "ledgerbridge_oauth"
	sessionMaxAge = 10 * 60
	shutdownGrace = 5 * time.Second
)

// Options configures a Server.
type Options struct {
	Addr           string
	JWTSecret      string
	SessionSecret  string
	AllowedOrigins []string
	// SecureCookies marks the session cookie Secure. Enable behind HTTPS.
	SecureCookies bool
}

// Server is the HTTP boundary over the mirror and OAuth services.
type Server struct {
	mirror    driving.MirrorService
	oauth     driving.OAuthManager
	sessions  *sessions.CookieStore
	jwtSecret []byte
	addr      string
	router    *mux.Router
	handler   http.Handler
}

// NewServer builds the router. Both secrets are required.
func NewServer(mirror driving.MirrorService, oauth driving.OAuthManager, opts Options) (*Server, error) {
	if opts.JWTSecret == "" {
		return nil, fmt.Errorf("%w: server.jwt_secret is required", domain.ErrInvalidInput)
	}
	if opts.SessionSecret == "" {
		return nil, fmt.Errorf("%w: server.session_secret is required", domain.ErrInvalidInput)
	}

	store := sessions.NewCookieStore([]byte(opts.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}

	s := &Server{
		mirror:    mirror,
		oauth:     oauth,
		sessions:  store,
		jwtSecret: []byte(opts.JWTSecret),
		addr:      opts.Addr,
		router:    mux.NewRouter().StrictSlash(true),
	}
	s.routes()
	s.handler = withCORS(s.router, opts.AllowedOrigins)
	return s, nil
}

func (s *Server) routes() {
	s.router.Use(requestIDMiddleware, recoverer, accessLog)
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, r, http.StatusNotFound, "Not Found", "no route for "+r.URL.Path)
	})

	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/callback", s.handleCallback).Methods(http.MethodGet)

	api := s.router.PathPrefix("/").Subrouter()
	api.Use(s.authenticate)
	api.HandleFunc("/invoices", s.handleListInvoices).Methods(http.MethodGet)
	api.HandleFunc("/invoices/{id}", s.handleGetInvoice).Methods(http.MethodGet)
	api.HandleFunc("/invoice/{id}/pdf", s.handleInvoicePDF).Methods(http.MethodGet)
	api.HandleFunc("/contacts", s.handleListContacts).Methods(http.MethodGet)
	api.HandleFunc("/projects", s.handleListProjects).Methods(http.MethodGet)
	api.HandleFunc("/connection", s.handleConnection).Methods(http.MethodGet)

	admin := api.NewRoute().Subrouter()
	admin.Use(requireAdmin)
	admin.HandleFunc("/connect", s.handleConnect).Methods(http.MethodGet)
	admin.HandleFunc("/disconnect", s.handleDisconnect).Methods(http.MethodPost)
	admin.HandleFunc("/sync", s.handleSync).Methods(http.MethodPost)
	admin.HandleFunc("/cache/clear", s.handleClearCache).Methods(http.MethodPost)
	admin.HandleFunc("/invoices/{id}/refresh", s.handleRefreshInvoice).Methods(http.MethodPost)
	admin.HandleFunc("/links/{principal}", s.handleLink).Methods(http.MethodPut)
	admin.HandleFunc("/links/{principal}", s.handleUnlink).Methods(http.MethodDelete)
}

// Handler returns the root handler including CORS.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP listening on %s", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func withPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func principalFrom(r *http.Request) domain.Principal {
	p, _ := r.Context().Value(principalKey).(domain.Principal)
	return p
}
