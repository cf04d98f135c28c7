package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/adanyl0v/swifttrack/internal/models"
	"github.com/adanyl0v/swifttrack/internal/services"
)

type getProjectResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func newGetProjectResponse(project *models.Project) getProjectResponse {
	return getProjectResponse{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		CreatedAt:   project.CreatedAt,
	}
}

type getProjectWithTasksResponse struct {
	getProjectResponse
	Tasks []getTaskResponse `json:"tasks"`
}

type createProjectRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description" binding:"max=4096"`
}

func (h *handlerImpl) HandleCreateProject(c *gin.Context) {
	userID, ok := h.mustUserID(c)
	if !ok {
		return
	}

	var req createProjectRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	project, err := h.projects.CreateProject(c, services.CreateProjectParams{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		abort(c, newServiceError(err))
		return
	}

	h.logger.Info().
		Str("project_id", project.ID).
		Msg("created project")
	c.JSON(http.StatusCreated, newGetProjectResponse(project))
}

func (h *handlerImpl) HandleListProjects(c *gin.Context) {
	userID, ok := h.mustUserID(c)
	if !ok {
		return
	}

	projects, err := h.projects.ListProjects(c, userID)
	if err != nil {
		abort(c, newServiceError(err))
		return
	}

	resp := make([]getProjectResponse, 0, len(projects))
	for _, project := range projects {
		resp = append(resp, newGetProjectResponse(project))
	}
	c.JSON(http.StatusOK, resp)
}

// HandleGetProject returns the project together with its tasks. Both are
// fetched concurrently.
func (h *handlerImpl) HandleGetProject(c *gin.Context) {
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

	project, tasks, err := h.loadProject(c, userID, uri.ID)
	if err != nil {
		abort(c, newServiceError(err))
		return
	}

	c.JSON(http.StatusOK, getProjectWithTasksResponse{
		getProjectResponse: newGetProjectResponse(project),
		Tasks:              newGetTaskResponses(tasks),
	})
}

func (h *handlerImpl) loadProject(c *gin.Context, userID, projectID string) (*models.Project, []*models.Task, error) {
	var (
		project *models.Project
		tasks   []*models.Task
	)

	g, ctx := errgroup.WithContext(c)
	g.Go(func() error {
		var err error
		project, err = h.projects.GetProject(ctx, userID, projectID)
		return err
	})
	g.Go(func() error {
		var err error
		tasks, err = h.tasks.ListTasks(ctx, userID, projectID)
		return err
	})

	err := g.Wait()
	if err != nil {
		h.logger.Warn().
			Err(err).
			Str("project_id", projectID).
			Msg("failed to load project")
		return nil, nil, err
	}
	return project, tasks, nil
}
