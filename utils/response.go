// File: /utils/response.go
package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the failure envelope every handler answers with.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Detail  any    `json:"detail,omitempty"`
}

type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func SendError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{
		Success: false,
		Message: message,
	})
}

// SendAppError renders an *AppError with its mapped status.
func SendAppError(c *gin.Context, err *AppError) {
	c.JSON(err.Status(), ErrorResponse{
		Success: false,
		Message: err.Message,
		Detail:  err.Detail,
	})
}

// SendSuccess merges data into a {success:true, message} envelope.
func SendSuccess(c *gin.Context, message string, data gin.H) {
	c.JSON(http.StatusOK, envelope(message, data))
}

func SendCreated(c *gin.Context, message string, data gin.H) {
	c.JSON(http.StatusCreated, envelope(message, data))
}

func envelope(message string, data gin.H) gin.H {
	body := gin.H{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range data {
		body[k] = v
	}
	return body
}
