package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"unicode/utf8"

	"task_manager/internal/service"

	"github.com/gin-gonic/gin"
)

var errInvalidUTF8 = errors.New("body is not valid UTF-8")

type Handler struct {
	Tasks *service.TaskService
}

func NewHandler(tasks *service.TaskService) *Handler {
	return &Handler{Tasks: tasks}
}

// taskID parses the :id path parameter. Anything that is not an integer
// cannot name a task, so callers answer 404.
func taskID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// decodeObject reads the request body as a JSON object. It returns the
// number of top-level keys so callers can tell {} from a populated payload,
// and fills dst with the recognised fields. An empty body counts as {}.
// Invalid UTF-8 is rejected rather than stored as U+FFFD.
func decodeObject(c *gin.Context, dst any) (int, error) {
	body, err := c.GetRawData()
	if err != nil {
		return 0, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return 0, nil
	}
	if !utf8.Valid(body) {
		return 0, errInvalidUTF8
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return 0, err
	}
	if len(fields) == 0 {
		return 0, nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return 0, err
	}
	return len(fields), nil
}

func message(msg string) gin.H {
	return gin.H{"message": msg}
}
