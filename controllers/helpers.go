package controllers

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"zyncchat-api/utils"
)

// bindJSON decodes the request body into dst. An empty body leaves dst
// zero valued so handlers can report missing fields themselves.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		_ = c.Error(utils.InvalidArgument("Invalid request body"))
		return false
	}
	return true
}
