package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-todo-web/internal/services"
)

type reorderRequest struct {
	TaskOrders []*reorderItem `json:"task_orders"`
}

// UnmarshalJSON rejects a null body, a null task_orders list and null
// entries. A missing task_orders key is an empty batch.
func (r *reorderRequest) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	err := json.Unmarshal(data, &fields)
	if err != nil {
		return err
	}
	if fields == nil {
		return errInvalidRequestBody
	}

	raw, ok := fields["task_orders"]
	if !ok {
		return nil
	}

	var items []*reorderItem
	err = json.Unmarshal(raw, &items)
	if err != nil {
		return err
	}
	if items == nil {
		return errInvalidRequestBody
	}
	for _, item := range items {
		if item == nil {
			return errInvalidRequestBody
		}
	}

	r.TaskOrders = items
	return nil
}

// reorderItem keeps the id loosely typed: drag-and-drop clients send
// either numbers or the string read from a data attribute.
type reorderItem struct {
	ID       any  `json:"id"`
	Position *int `json:"position"`
}

// positionUpdates drops entries with a falsy id or no position. The
// second return value is false if an id is neither a number nor a string.
func (r reorderRequest) positionUpdates() ([]services.PositionUpdate, bool) {
	updates := make([]services.PositionUpdate, 0, len(r.TaskOrders))
	for _, item := range r.TaskOrders {
		id, ok := item.taskID()
		if !ok {
			return nil, false
		}
		if id == "" || item.Position == nil {
			continue
		}
		updates = append(updates, services.PositionUpdate{
			ID:       id,
			Position: *item.Position,
		})
	}
	return updates, true
}

func (i *reorderItem) taskID() (string, bool) {
	switch v := i.ID.(type) {
	case nil:
		return "", true
	case bool:
		// true can't name a task, false is simply falsy.
		return "", true
	case float64:
		if v == 0 {
			return "", true
		}
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case string:
		return strings.TrimSpace(v), true
	default:
		return "", false
	}
}

func (h *handlerImpl) HandleReorderTasks(c *gin.Context) {
	var req reorderRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	updates, ok := req.positionUpdates()
	if !ok {
		h.logger.Error().Msg("reorder entry has a malformed id")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	applied, err := h.tasks.BulkUpdatePositions(c, updates)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to reorder tasks")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}
	h.logger.Debug().
		Int("received", len(req.TaskOrders)).
		Int("applied", applied).
		Msg("reordered tasks")

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
