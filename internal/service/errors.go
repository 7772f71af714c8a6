package service

import "fmt"

// Messages returned to clients
const (
	MsgTitleRequired = "Title is required"
	MsgTitleEmpty    = "Title cannot be empty"
	MsgNoData        = "No data provided"
	MsgInvalidBody   = "Invalid request body"
	MsgTaskNotFound  = "Task not found"
)

// ValidationError is a client payload that breaks an input rule.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// OpError is an unexpected storage failure during op ("creating",
// "updating", ...). The store has rolled back by the time it is returned.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("Error %s task: %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}
