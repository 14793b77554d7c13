// Package httpapi exposes the service over HTTP: registration, the password
// grant token endpoint, and the authenticated per-user file namespace.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/avolkov/filevault/internal/logging"
	"github.com/avolkov/filevault/internal/server/services"
)

const shutdownTimeout = 5 * time.Second

// Server is the HTTP front of the service.
type Server struct {
	address        string
	logger         logging.Logger
	users          *services.UserService
	files          *services.FileService
	corsOrigins    []string
	requestTimeout time.Duration
}

func NewServer(address string, logger logging.Logger, users *services.UserService,
	files *services.FileService, corsOrigins []string, requestTimeout time.Duration) *Server {
	return &Server{
		address:        address,
		logger:         logger,
		users:          users,
		files:          files,
		corsOrigins:    corsOrigins,
		requestTimeout: requestTimeout,
	}
}

// Router builds the route table with the middleware chain applied.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/token", s.handleToken).Methods(http.MethodPost)
	r.HandleFunc("/upload", s.requireAuth(s.handleUpload)).Methods(http.MethodPost)
	r.HandleFunc("/files", s.requireAuth(s.handleFiles)).Methods(http.MethodGet)

	// preflight requests are answered by the CORS middleware
	r.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	r.Use(s.recoveryMiddleware, s.loggingMiddleware, s.corsMiddleware)

	return r
}

// requestContext bounds storage work with the configured per-request timeout.
func (s *Server) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	if s.requestTimeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), s.requestTimeout)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "http server listening", "addr", s.address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info(shutdownCtx, "shutting down http server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
