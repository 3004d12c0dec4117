package response

import (
	"github.com/gin-gonic/gin"
	apiError "github.com/techagentng/incidentx/errors"
)

// Envelope is the uniform response shape for every endpoint.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

// JSON writes the response envelope. A non-nil err marks the response as
// failed and its message is surfaced; *errors.Error statuses override the
// passed status when they carry one.
func JSON(c *gin.Context, message string, status int, data interface{}, err error) {
	env := Envelope{
		Success: err == nil,
		Message: message,
		Data:    data,
	}
	if err != nil {
		if e, ok := err.(*apiError.Error); ok {
			if e.Status != 0 {
				status = e.Status
			}
			env.Errors = e.Message
		} else {
			env.Errors = err.Error()
		}
		if env.Message == "" {
			if e, ok := err.(*apiError.Error); ok {
				env.Message = e.Message
			} else {
				env.Message = err.Error()
			}
		}
	}
	c.JSON(status, env)
}
