package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/verdantlab/agridash/internal/archive"
	"github.com/verdantlab/agridash/internal/devicemq"
	"github.com/verdantlab/agridash/internal/feed"
	"github.com/verdantlab/agridash/internal/identity"
	"github.com/verdantlab/agridash/internal/inference"
	"github.com/verdantlab/agridash/internal/rtdb"
	"github.com/verdantlab/agridash/internal/weather"
	"github.com/verdantlab/agridash/services/api/config"
)

// Deps bundles the collaborators the API serves. Store, Realtime,
// Identity, Weather, Inference and Relay may be nil; the routes that
// need them answer 503 instead.
type Deps struct {
	Store     *archive.Store
	Ingestor  *feed.Ingestor
	Realtime  *rtdb.Client
	Identity  *identity.Client
	Weather   *weather.Client
	Inference *inference.Client
	Relay     *devicemq.Publisher
	Logger    zerolog.Logger
}

// Server bundles router and dependencies for the REST API.
type Server struct {
	cfg    config.Config
	deps   Deps
	log    zerolog.Logger
	engine *gin.Engine
}

// New constructs a server with routes and middleware.
func New(cfg config.Config, deps Deps) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(gin.Logger())
	engine.Use(corsMiddleware())

	server := &Server{cfg: cfg, deps: deps, log: deps.Logger, engine: engine}
	server.registerRoutes()
	return server
}

// Engine exposes the underlying gin engine (for tests).
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run starts the HTTP server and blocks until shutdown.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.ListenAddr(),
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
