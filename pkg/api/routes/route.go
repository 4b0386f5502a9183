package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/tokamak-network/pages-deployer/pkg/api/handlers"
	"github.com/tokamak-network/pages-deployer/pkg/api/middlewares"
	"github.com/tokamak-network/pages-deployer/pkg/api/servers"
)

func SetupRoutes(server *servers.Server) {
	server.Use(middlewares.Metrics(server.Metrics))

	health := handlers.NewHealthHandler(server)
	deployments := handlers.NewDeploymentHandler(server)

	// Paths kept for existing callers.
	server.Router.GET("/health", health.GetHealth)
	server.Router.GET("/debug", health.GetDebug)
	server.Router.POST("/api/deploy", deployments.Deploy)

	apiV1 := server.Router.Group("/api/v1")
	setupV1Routes(apiV1, health, deployments)

	if server.Gatherer != nil {
		server.Router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(server.Gatherer, promhttp.HandlerOpts{})))
	}
	server.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

func setupV1Routes(router *gin.RouterGroup, health *handlers.HealthHandler, deployments *handlers.DeploymentHandler) {
	router.GET("/health", health.GetHealth)

	deploymentRoutes := router.Group("/deployments")
	deploymentRoutes.POST("", deployments.Deploy)
	deploymentRoutes.GET("/:id", deployments.GetDeployment)

	taskRoutes := router.Group("/tasks")
	taskRoutes.GET("/:task", deployments.GetTask)
	taskRoutes.GET("/:task/deployments", deployments.GetTaskDeployments)
}
