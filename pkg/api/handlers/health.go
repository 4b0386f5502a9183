package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tokamak-network/pages-deployer/internal/consts"
	"github.com/tokamak-network/pages-deployer/pkg/api/dtos"
	"github.com/tokamak-network/pages-deployer/pkg/api/servers"
)

var features = []string{
	"sales-summary",
	"markdown-render",
	"account-lookup",
	"round-2-updates",
	"notification-retry",
}

type HealthHandler struct {
	Server *servers.Server
}

func NewHealthHandler(server *servers.Server) *HealthHandler {
	return &HealthHandler{Server: server}
}

// GetHealth godoc
//
//	@Summary	Liveness probe
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	dtos.HealthResponse
//	@Router		/health [get]
func (h *HealthHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, dtos.HealthResponse{
		Status:    "healthy",
		Service:   consts.ServiceName,
		Version:   consts.ServiceVersion,
		Timestamp: float64(time.Now().UnixNano()) / float64(time.Second),
		Features:  features,
	})
}

// GetDebug reports configuration without revealing secret values.
func (h *HealthHandler) GetDebug(c *gin.Context) {
	cfg := h.Server.Config
	pending := 0
	if h.Server.Queue != nil {
		pending = h.Server.Queue.Pending()
	}
	c.JSON(http.StatusOK, dtos.DebugResponse{
		HostBackend:      h.Server.Host.Backend,
		HostConnected:    h.Server.Host.Connected,
		HostUser:         h.Server.Host.User,
		SecretConfigured: cfg.Secret != "",
		Port:             cfg.Port,
		Service:          consts.ServiceName + " v" + consts.ServiceVersion,
		StoreBackend:     cfg.StoreBackend,
		Workers:          cfg.Workers,
		QueueSize:        cfg.QueueSize,
		Pending:          pending,
		NotifyOnFailure:  cfg.NotifyOnFailure,
	})
}
