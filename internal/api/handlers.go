package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mailtriage/internal/model"
	"mailtriage/internal/store"
)

type handlers struct {
	store store.RecordStore
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func writeError(c *gin.Context, err error) {
	kind := store.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case store.KindNotFound:
		status = http.StatusNotFound
	case store.KindValidation:
		status = http.StatusBadRequest
	case store.KindTransport:
		var se *store.Error
		if errors.As(err, &se) {
			status = http.StatusBadGateway
		}
	}
	c.JSON(status, ErrorBody{Error: err.Error(), Kind: kind.String()})
}

func (h *handlers) listEmails(c *gin.Context) {
	var (
		emails []model.Email
		err    error
	)
	if q, ok := c.GetQuery("q"); ok {
		emails, err = h.store.SearchEmails(c.Request.Context(), q)
	} else {
		emails, err = h.store.ListEmails(c.Request.Context())
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(emails))
}

func (h *handlers) getEmail(c *gin.Context) {
	email, err := h.store.GetEmail(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, email)
}

func (h *handlers) markEmailRead(c *gin.Context) {
	if err := h.store.MarkEmailRead(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) summarizeEmail(c *gin.Context) {
	result, err := h.store.SummarizeEmail(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *handlers) listTasks(c *gin.Context) {
	var (
		tasks []model.Task
		err   error
	)
	if emailID := c.Query("emailId"); emailID != "" {
		tasks, err = h.store.ListTasksByEmail(c.Request.Context(), emailID)
	} else {
		tasks, err = h.store.ListTasks(c.Request.Context())
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(tasks))
}

func (h *handlers) getTask(c *gin.Context) {
	task, err := h.store.GetTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *handlers) createTask(c *gin.Context) {
	var in model.TaskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		writeError(c, store.Invalid("create task", "invalid request body: %v", err))
		return
	}
	task, err := h.store.CreateTask(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h *handlers) updateTask(c *gin.Context) {
	var patch model.TaskPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		writeError(c, store.Invalid("update task", "invalid request body: %v", err))
		return
	}
	task, err := h.store.UpdateTask(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *handlers) deleteTask(c *gin.Context) {
	if err := h.store.DeleteTask(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// nonNil keeps empty lists encoded as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
