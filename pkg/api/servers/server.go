package servers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tokamak-network/pages-deployer/internal/config"
	"github.com/tokamak-network/pages-deployer/pkg/metrics"
	"github.com/tokamak-network/pages-deployer/pkg/services"
)

type QueueInspector interface {
	Pending() int
}

// HostInfo describes the repository host the service publishes to.
type HostInfo struct {
	Backend   string
	Connected bool
	User      string
}

type Server struct {
	Router            *gin.Engine
	Config            *config.Config
	DeploymentService *services.DeploymentService
	Queue             QueueInspector
	Metrics           *metrics.Metrics
	Gatherer          prometheus.Gatherer
	Host              HostInfo
	// RecordsEnabled is false when deployment history is not kept.
	RecordsEnabled bool

	httpServer *http.Server
}

func (s *Server) Start(port string) error {
	s.httpServer = &http.Server{
		Addr:              ":" + port,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting requests and waits for in-flight handlers.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Use(middleware gin.HandlerFunc) {
	s.Router.Use(middleware)
}

func NewServer(
	cfg *config.Config,
	deploymentService *services.DeploymentService,
	queue QueueInspector,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
	host HostInfo,
	recordsEnabled bool,
) *Server {
	app := gin.Default()

	return &Server{
		Router:            app,
		Config:            cfg,
		DeploymentService: deploymentService,
		Queue:             queue,
		Metrics:           m,
		Gatherer:          gatherer,
		Host:              host,
		RecordsEnabled:    recordsEnabled,
	}
}
