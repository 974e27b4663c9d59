package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
)

// requestContext resolves the context to pass down to the service layer.
// Handlers invoked outside an HTTP request, as some tests do, get a
// background context instead of a nil dereference.
func requestContext(c *gin.Context) context.Context {
	if c == nil || c.Request == nil {
		return context.Background()
	}
	return c.Request.Context()
}
