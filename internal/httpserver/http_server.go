// Package httpserver exposes the estimates as JSON for the pages that display them.
package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/sirupsen/logrus"

	"github.com/naka-gawa/portfolio-stats/internal/domain"
)

// StatsProvider is implemented by usecase.Estimator.
type StatsProvider interface {
	Stats(ctx context.Context, login string) domain.StatsEstimate
	CommitBreakdown(ctx context.Context, login string) domain.CommitBreakdown
	FeaturedRepos(ctx context.Context, login string, count int) []domain.Repository
	Profile(ctx context.Context, login string) domain.Profile
}

// Server represents an HTTP server
type Server struct {
	addr     string
	router   *chi.Mux
	logger   logrus.FieldLogger
	provider StatsProvider
}

// NewServer creates and returns a new Server instance
func NewServer(addr string, provider StatsProvider, logger *logrus.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: logger, NoColor: true}))
	router.Use(middleware.Recoverer)

	s := &Server{
		addr:     addr,
		router:   router,
		logger:   logger,
		provider: provider,
	}

	s.RegisterRoutes()

	return s
}

// Start serves until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownErr := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		shutdownErr <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.WithField("url", "http://"+s.addr).Info("starting-server")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		cancel()
		<-shutdownErr
		return err
	}
	return <-shutdownErr
}
