package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/explainify/explainify-server-go/internal/httperror"
	"github.com/explainify/explainify-server-go/internal/middleware"
)

func writeError(c *gin.Context, err error) {
	if c == nil {
		return
	}
	status, payload := httperror.Response(err, middleware.GetRequestID(c))
	c.JSON(status, payload)
}

func bindJSON(c *gin.Context, out any) bool {
	if c == nil {
		return false
	}
	if err := c.ShouldBindJSON(out); err != nil {
		writeError(c, httperror.NewValidationError(err))
		return false
	}
	return true
}
