package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/swifttrack/internal/models"
	"github.com/adanyl0v/swifttrack/internal/services"
)

type getTaskResponse struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func newGetTaskResponse(task *models.Task) getTaskResponse {
	return getTaskResponse{
		ID:          task.ID,
		ProjectID:   task.ProjectID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status.String(),
		CreatedAt:   task.CreatedAt,
	}
}

func newGetTaskResponses(tasks []*models.Task) []getTaskResponse {
	resp := make([]getTaskResponse, 0, len(tasks))
	for _, task := range tasks {
		resp = append(resp, newGetTaskResponse(task))
	}
	return resp
}

type idURI struct {
	ID string `uri:"id" binding:"required,uuid"`
}

type createTaskRequest struct {
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description" binding:"max=4096"`
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	userID, ok := h.mustUserID(c)
	if !ok {
		return
	}

	var uri idURI
	err := c.ShouldBindUri(&uri)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind uri")
		abort(c, newBadRequestError(err.Error()))
		return
	}

	var req createTaskRequest
	err = c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	task, err := h.tasks.CreateTask(c, services.CreateTaskParams{
		UserID:      userID,
		ProjectID:   uri.ID,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		abort(c, newServiceError(err))
		return
	}

	h.logger.Info().
		Str("task_id", task.ID).
		Str("project_id", task.ProjectID).
		Msg("created task")
	c.JSON(http.StatusCreated, newGetTaskResponse(task))
}

func (h *handlerImpl) HandleListTasks(c *gin.Context) {
	userID, ok := h.mustUserID(c)
	if !ok {
		return
	}

	var uri idURI
	err := c.ShouldBindUri(&uri)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind uri")
		abort(c, newBadRequestError(err.Error()))
		return
	}

	tasks, err := h.tasks.ListTasks(c, userID, uri.ID)
	if err != nil {
		abort(c, newServiceError(err))
		return
	}
	c.JSON(http.StatusOK, newGetTaskResponses(tasks))
}

type updateTaskRequest struct {
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description" binding:"max=4096"`
}

func (h *handlerImpl) HandleUpdateTask(c *gin.Context) {
	userID, ok := h.mustUserID(c)
	if !ok {
		return
	}

	var uri idURI
	err := c.ShouldBindUri(&uri)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind uri")
		abort(c, newBadRequestError(err.Error()))
		return
	}

	var req updateTaskRequest
	err = c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	task, err := h.tasks.UpdateTask(c, services.UpdateTaskParams{
		ID:          uri.ID,
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		abort(c, newServiceError(err))
		return
	}

	h.logger.Info().
		Str("task_id", task.ID).
		Msg("updated task")
	c.JSON(http.StatusOK, newGetTaskResponse(task))
}

type setTaskStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=todo in_progress done"`
}

func (h *handlerImpl) HandleSetTaskStatus(c *gin.Context) {
	userID, ok := h.mustUserID(c)
	if !ok {
		return
	}

	var uri idURI
	err := c.ShouldBindUri(&uri)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind uri")
		abort(c, newBadRequestError(err.Error()))
		return
	}

	var req setTaskStatusRequest
	err = c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	task, err := h.tasks.UpdateTaskStatus(c, services.UpdateTaskStatusParams{
		ID:     uri.ID,
		UserID: userID,
		Status: models.TaskStatus(req.Status),
	})
	if err != nil {
		abort(c, newServiceError(err))
		return
	}

	h.logger.Info().
		Str("task_id", task.ID).
		Str("status", task.Status.String()).
		Msg("set task status")
	c.JSON(http.StatusOK, newGetTaskResponse(task))
}
