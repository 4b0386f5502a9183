package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tokamak-network/pages-deployer/internal/logger"
	"github.com/tokamak-network/pages-deployer/pkg/api/dtos"
	"github.com/tokamak-network/pages-deployer/pkg/api/servers"
	"github.com/tokamak-network/pages-deployer/pkg/services"
)

type DeploymentHandler struct {
	DeploymentService *services.DeploymentService
	RecordsEnabled    bool
}

func NewDeploymentHandler(server *servers.Server) *DeploymentHandler {
	return &DeploymentHandler{
		DeploymentService: server.DeploymentService,
		RecordsEnabled:    server.RecordsEnabled,
	}
}

// Deploy godoc
//
//	@Summary		Submit a deployment
//	@Description	Validates the request and queues the deployment. The result is posted to evaluation_url.
//	@Tags			deployments
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dtos.DeployRequest	true	"Deployment request"
//	@Success		200		{object}	dtos.DeployResponse
//	@Failure		400		{object}	dtos.ErrorResponse
//	@Failure		401		{object}	dtos.ErrorResponse
//	@Failure		503		{object}	dtos.ErrorResponse
//	@Router			/deployments [post]
func (h *DeploymentHandler) Deploy(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, dtos.NewErrorResponse("Failed to read request body"))
		return
	}

	request, err := dtos.ParseDeployRequest(body)
	if err != nil {
		var validationErr *dtos.ValidationError
		if errors.As(err, &validationErr) {
			logger.Warn("Invalid deployment request", zap.String("reason", validationErr.Message))
			c.JSON(http.StatusBadRequest, dtos.ErrorResponse{
				Status:        "error",
				Message:       validationErr.Message,
				MissingFields: validationErr.MissingFields,
			})
			return
		}
		c.JSON(http.StatusBadRequest, dtos.NewErrorResponse(err.Error()))
		return
	}

	deploymentID, err := h.DeploymentService.Submit(c.Request.Context(), request.ToEntity())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidSecret):
			c.JSON(http.StatusUnauthorized, dtos.NewErrorResponse("Invalid secret"))
		case errors.Is(err, services.ErrQueueFull):
			c.JSON(http.StatusServiceUnavailable, dtos.NewErrorResponse("Deployment queue is full, retry later"))
		case errors.Is(err, services.ErrShuttingDown):
			c.JSON(http.StatusServiceUnavailable, dtos.NewErrorResponse("Service is shutting down"))
		default:
			c.JSON(http.StatusInternalServerError, dtos.NewErrorResponse(err.Error()))
		}
		return
	}

	c.JSON(http.StatusOK, dtos.DeployResponse{
		Status:       "accepted",
		Message:      "Deployment process started",
		Round:        request.Round,
		Task:         request.Task,
		DeploymentID: deploymentID,
	})
}

// GetDeployment godoc
//
//	@Summary	Get a deployment
//	@Tags		deployments
//	@Produce	json
//	@Param		id	path		string	true	"Deployment ID"
//	@Success	200	{object}	entities.DeploymentEntity
//	@Failure	400	{object}	dtos.ErrorResponse
//	@Failure	404	{object}	dtos.ErrorResponse
//	@Router		/deployments/{id} [get]
func (h *DeploymentHandler) GetDeployment(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, dtos.NewErrorResponse("id must be a UUID"))
		return
	}
	if !h.RecordsEnabled {
		c.JSON(http.StatusNotFound, dtos.NewErrorResponse("Deployment records are not kept"))
		return
	}

	deployment, err := h.DeploymentService.GetDeployment(c.Request.Context(), id)
	if err != nil {
		logger.Error("Failed to get deployment", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, dtos.NewErrorResponse(err.Error()))
		return
	}
	if deployment == nil {
		c.JSON(http.StatusNotFound, dtos.NewErrorResponse("Deployment not found"))
		return
	}
	c.JSON(http.StatusOK, deployment)
}

// GetTaskDeployments godoc
//
//	@Summary	List deployments of a task, newest first
//	@Tags		tasks
//	@Produce	json
//	@Param		task	path		string	true	"Task ID"
//	@Success	200		{array}		entities.DeploymentEntity
//	@Failure	404		{object}	dtos.ErrorResponse
//	@Router		/tasks/{task}/deployments [get]
func (h *DeploymentHandler) GetTaskDeployments(c *gin.Context) {
	if !h.RecordsEnabled {
		c.JSON(http.StatusNotFound, dtos.NewErrorResponse("Deployment records are not kept"))
		return
	}
	task := c.Param("task")
	deployments, err := h.DeploymentService.GetDeploymentsByTask(c.Request.Context(), task)
	if err != nil {
		logger.Error("Failed to list deployments", zap.String("task", task), zap.Error(err))
		c.JSON(http.StatusInternalServerError, dtos.NewErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, deployments)
}

// GetTask godoc
//
//	@Summary	Get the repository recorded for a task
//	@Tags		tasks
//	@Produce	json
//	@Param		task	path		string	true	"Task ID"
//	@Success	200		{object}	dtos.TaskRecordResponse
//	@Failure	404		{object}	dtos.ErrorResponse
//	@Router		/tasks/{task} [get]
func (h *DeploymentHandler) GetTask(c *gin.Context) {
	task := c.Param("task")
	record, err := h.DeploymentService.GetTaskRecord(c.Request.Context(), task)
	if err != nil {
		logger.Error("Failed to get task record", zap.String("task", task), zap.Error(err))
		c.JSON(http.StatusInternalServerError, dtos.NewErrorResponse(err.Error()))
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, dtos.NewErrorResponse("Task not found"))
		return
	}
	c.JSON(http.StatusOK, dtos.NewTaskRecordResponse(record))
}
