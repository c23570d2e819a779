package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-todo-web/internal/ordering"
	"github.com/adanyl0v/go-todo-web/internal/services"
)

type Handler interface {
	// HandleHome lists tasks in manual order and creates new ones.
	HandleHome(c *gin.Context)
	// HandleTaskList lists tasks by due date, ignoring manual order.
	HandleTaskList(c *gin.Context)

	HandleEditTask(c *gin.Context)
	HandleDeleteTask(c *gin.Context)
	HandleToggleTaskDone(c *gin.Context)
	HandleReorderTasks(c *gin.Context)

	HandleHealth(c *gin.Context)
}

type handlerImpl struct {
	logger zerolog.Logger
	tasks  services.TaskService
}

func New(
	logger zerolog.Logger,
	taskService services.TaskService,
) Handler {
	return &handlerImpl{
		logger: logger,
		tasks:  taskService,
	}
}

const (
	homePath     = "/"
	taskListPath = "/tasks/"
)

func (h *handlerImpl) HandleHome(c *gin.Context) {
	h.handleListView(c, listView{
		policy:   ordering.WithPosition,
		template: "home.html",
		path:     homePath,
	})
}

func (h *handlerImpl) HandleTaskList(c *gin.Context) {
	h.handleListView(c, listView{
		policy:   ordering.WithoutPosition,
		template: "list.html",
		path:     taskListPath,
	})
}

func (h *handlerImpl) HandleHealth(c *gin.Context) {
	err := h.tasks.Ping(c)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("storage is unreachable")
		abort(c, newStatusTextError(http.StatusServiceUnavailable))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
