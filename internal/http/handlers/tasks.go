package handlers

import (
	"errors"
	"net/http"

	"task_manager/internal/domain"
	"task_manager/internal/service"

	"github.com/gin-gonic/gin"
)

// taskPayload is the create/update body. Pointers tell absent (or null)
// fields apart from zero values; unknown keys are ignored.
type taskPayload struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

func (h *Handler) ListTasks(c *gin.Context) {
	tasks, err := h.Tasks.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *Handler) CreateTask(c *gin.Context) {
	var req taskPayload
	n, err := decodeObject(c, &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, message(service.MsgInvalidBody))
		return
	}
	if n == 0 {
		c.JSON(http.StatusBadRequest, message(service.MsgTitleRequired))
		return
	}

	task, err := h.Tasks.Create(c.Request.Context(), service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h *Handler) GetTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		c.JSON(http.StatusNotFound, message(service.MsgTaskNotFound))
		return
	}

	task, err := h.Tasks.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *Handler) UpdateTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		c.JSON(http.StatusNotFound, message(service.MsgTaskNotFound))
		return
	}

	var req taskPayload
	n, err := decodeObject(c, &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, message(service.MsgInvalidBody))
		return
	}
	if n == 0 {
		c.JSON(http.StatusBadRequest, message(service.MsgNoData))
		return
	}

	task, err := h.Tasks.Update(c.Request.Context(), id, service.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// DeleteTask answers 204 with an empty body.
func (h *Handler) DeleteTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		c.JSON(http.StatusNotFound, message(service.MsgTaskNotFound))
		return
	}

	if err := h.Tasks.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func writeError(c *gin.Context, err error) {
	var (
		verr  *service.ValidationError
		opErr *service.OpError
	)
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, message(verr.Message))
	case errors.Is(err, domain.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, message(service.MsgTaskNotFound))
	case errors.As(err, &opErr):
		c.JSON(http.StatusInternalServerError, message(opErr.Error()))
	default:
		c.JSON(http.StatusInternalServerError, message("internal error"))
	}
}
