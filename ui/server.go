package ui

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"causalnotes/app"
	"causalnotes/internal"
	"causalnotes/internal/power"
	"causalnotes/ports"
	"causalnotes/ui/middleware"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var embeddedFiles embed.FS

// Settings are defaults for parameters a request leaves out.
type Settings struct {
	Alpha   float64 // /mde significance level
	SimSeed int64   // seed of simulated power
}

// DefaultSettings matches config.Load with no environment set.
func DefaultSettings() Settings {
	return Settings{Alpha: power.DefaultDesign().Alpha, SimSeed: 42}
}

// Server serves scenario reports over HTTP for previewing posts.
type Server struct {
	router      *gin.Engine
	experiments *app.ExperimentService
	charts      ports.ChartRenderer
	simulator   *power.Simulator
	settings    Settings
	templates   *template.Template
	logger      *internal.Logger
}

// NewServer creates a server with its routes registered.
func NewServer(experiments *app.ExperimentService, charts ports.ChartRenderer, simulator *power.Simulator, settings Settings) (*Server, error) {
	templates, err := template.New("").ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		router:      gin.New(),
		experiments: experiments,
		charts:      charts,
		simulator:   simulator,
		settings:    settings,
		templates:   templates,
		logger:      internal.DefaultLogger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.RequestLogger(s.logger))
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/healthz", s.handleHealth)

	scenarios := s.router.Group("/scenarios")
	scenarios.GET("", s.handleListScenarios)
	scenarios.GET("/:name", s.handleRunScenario)
	scenarios.GET("/:name/report", s.handleReport)
	scenarios.GET("/:name/scatter.png", s.handleScatter)

	s.router.GET("/runs", s.handleListRuns)
	s.router.GET("/runs/:id", s.handleGetRun)
	s.router.GET("/mde", s.handleMDE)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on addr until ctx is cancelled, then drains in-flight
// requests for up to five seconds.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
