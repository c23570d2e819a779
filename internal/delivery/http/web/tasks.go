package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-todo-web/internal/models"
	"github.com/adanyl0v/go-todo-web/internal/ordering"
	"github.com/adanyl0v/go-todo-web/internal/services"
)

type listView struct {
	policy   ordering.Policy
	template string
	// path is both the form action and the redirect target after a create.
	path string
}

func (h *handlerImpl) handleListView(c *gin.Context, view listView) {
	form := &formView{}

	if c.Request.Method == http.MethodPost {
		form = bindTaskForm(c)
		if form.Valid() {
			task, err := h.tasks.CreateTask(c, form.createParams())
			switch {
			case err == nil:
				h.logger.Debug().
					Str("task_id", task.ID).
					Msg("created task from form")
				c.Redirect(http.StatusFound, view.path)
				return
			case errors.Is(err, services.ErrInvalidTask):
				form.addError(fieldTitle, "Enter a valid title.")
			default:
				h.logger.Error().
					Err(err).
					Msg("failed to create task")
				abortPage(c, newStatusTextError(http.StatusInternalServerError))
				return
			}
		}
		h.logger.Warn().
			Interface("errors", form.Errors).
			Msg("invalid task form")
	}

	tasks, err := h.tasks.ListTasks(c)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to list tasks")
		abortPage(c, newStatusTextError(http.StatusInternalServerError))
		return
	}
	view.policy.Sort(tasks)

	c.HTML(http.StatusOK, view.template, gin.H{
		"Tasks":  tasks,
		"Form":   form,
		"Action": view.path,
	})
}

// getTaskOrAbort loads the task named by the id path parameter and
// responds with 404 if it doesn't exist.
func (h *handlerImpl) getTaskOrAbort(c *gin.Context) (*models.Task, bool) {
	taskID := c.Param("id")

	task, err := h.tasks.GetTask(c, taskID)
	if err != nil {
		h.abortTaskError(c, taskID, err)
		return nil, false
	}
	return task, true
}

func (h *handlerImpl) abortTaskError(c *gin.Context, taskID string, err error) {
	if errors.Is(err, services.ErrTaskNotFound) {
		h.logger.Warn().
			Str("task_id", taskID).
			Msg("task not found")
		abortPage(c, newNotFoundError(services.ErrTaskNotFound.Error()))
		return
	}

	h.logger.Error().
		Err(err).
		Str("task_id", taskID).
		Msg("task operation failed")
	abortPage(c, newStatusTextError(http.StatusInternalServerError))
}

func (h *handlerImpl) HandleEditTask(c *gin.Context) {
	task, ok := h.getTaskOrAbort(c)
	if !ok {
		return
	}

	form := newTaskFormView(task)
	if c.Request.Method == http.MethodPost {
		form = bindTaskForm(c)
		if form.Valid() {
			_, err := h.tasks.UpdateTask(c, form.updateParams(task.ID))
			switch {
			case err == nil:
				c.Redirect(http.StatusFound, homePath)
				return
			case errors.Is(err, services.ErrInvalidTask):
				form.addError(fieldTitle, "Enter a valid title.")
			default:
				h.abortTaskError(c, task.ID, err)
				return
			}
		}
		h.logger.Warn().
			Str("task_id", task.ID).
			Interface("errors", form.Errors).
			Msg("invalid task form")
	}

	c.HTML(http.StatusOK, "edit.html", gin.H{
		"Task":   task,
		"Form":   form,
		"Action": "/task/" + task.ID + "/edit/",
	})
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	task, ok := h.getTaskOrAbort(c)
	if !ok {
		return
	}

	if c.Request.Method == http.MethodPost {
		err := h.tasks.DeleteTask(c, task.ID)
		if err != nil {
			h.abortTaskError(c, task.ID, err)
			return
		}
		c.Redirect(http.StatusFound, homePath)
		return
	}

	c.HTML(http.StatusOK, "delete.html", gin.H{
		"Task": task,
	})
}

func (h *handlerImpl) HandleToggleTaskDone(c *gin.Context) {
	taskID := c.Param("id")

	_, err := h.tasks.ToggleTaskDone(c, taskID)
	if err != nil {
		h.abortTaskError(c, taskID, err)
		return
	}
	c.Redirect(http.StatusFound, homePath)
}
