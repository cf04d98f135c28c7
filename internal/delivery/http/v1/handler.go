package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/swifttrack/internal/board"
	"github.com/adanyl0v/swifttrack/internal/services"
	"github.com/adanyl0v/swifttrack/internal/theme"
)

type Handler interface {
	HandleLogin(c *gin.Context)
	HandleRefresh(c *gin.Context)
	HandleRegister(c *gin.Context)
	HandleLogout(c *gin.Context)
	HandleMe(c *gin.Context)
	HandleAuthMiddleware(c *gin.Context)

	HandleGetTheme(c *gin.Context)
	HandleToggleTheme(c *gin.Context)

	HandleCreateProject(c *gin.Context)
	HandleListProjects(c *gin.Context)
	HandleGetProject(c *gin.Context)

	HandleCreateTask(c *gin.Context)
	HandleListTasks(c *gin.Context)
	HandleUpdateTask(c *gin.Context)
	HandleSetTaskStatus(c *gin.Context)

	HandleOpenBoard(c *gin.Context)
	HandleGetBoard(c *gin.Context)
	HandleBoardEvent(c *gin.Context)
	HandleSetBoardZones(c *gin.Context)
	HandleBoardPointer(c *gin.Context)
	HandleCloseBoard(c *gin.Context)
}

type handlerImpl struct {
	logger   zerolog.Logger
	auth     services.AuthService
	sessions services.SessionService
	projects services.ProjectService
	tasks    services.TaskService
	boards   *board.Hub
	theme    *theme.Preference
}

func New(
	logger zerolog.Logger,
	authService services.AuthService,
	sessionService services.SessionService,
	projectService services.ProjectService,
	taskService services.TaskService,
	boards *board.Hub,
	themePreference *theme.Preference,
) Handler {
	return &handlerImpl{
		logger:   logger,
		auth:     authService,
		sessions: sessionService,
		projects: projectService,
		tasks:    taskService,
		boards:   boards,
		theme:    themePreference,
	}
}

// Register mounts every route on router, which is expected to be the
// /api/v1 group.
func Register(router gin.IRouter, h Handler) {
	authRouter := router.Group("/auth")
	authRouter.POST("/login", h.HandleLogin)
	authRouter.POST("/refresh", h.HandleRefresh)
	authRouter.POST("/register", h.HandleRegister)
	authRouter.POST("/logout", h.HandleAuthMiddleware, h.HandleLogout)
	authRouter.GET("/me", h.HandleAuthMiddleware, h.HandleMe)

	themeRouter := router.Group("/theme")
	themeRouter.GET("", h.HandleGetTheme)
	themeRouter.POST("/toggle", h.HandleToggleTheme)

	protected := router.Group("", h.HandleAuthMiddleware)

	projectsRouter := protected.Group("/projects")
	projectsRouter.GET("", h.HandleListProjects)
	projectsRouter.POST("", h.HandleCreateProject)
	projectsRouter.GET("/:id", h.HandleGetProject)
	projectsRouter.GET("/:id/tasks", h.HandleListTasks)
	projectsRouter.POST("/:id/tasks", h.HandleCreateTask)

	boardRouter := projectsRouter.Group("/:id/board")
	boardRouter.POST("", h.HandleOpenBoard)
	boardRouter.GET("", h.HandleGetBoard)
	boardRouter.DELETE("", h.HandleCloseBoard)
	boardRouter.POST("/events", h.HandleBoardEvent)
	boardRouter.PUT("/zones", h.HandleSetBoardZones)
	boardRouter.POST("/pointer", h.HandleBoardPointer)

	tasksRouter := protected.Group("/tasks")
	tasksRouter.PATCH("/:id", h.HandleUpdateTask)
	tasksRouter.PATCH("/:id/status", h.HandleSetTaskStatus)
}
