// Package middleware provides gin middleware shared by every feature router.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// ContextRequestID is the gin context key holding the request id.
	ContextRequestID = "requestID"
	// HeaderRequestID is the response header carrying the request id.
	HeaderRequestID = "X-Request-ID"
)

// RequestID assigns a fresh correlation id to every request and exposes it
// through the gin context and the X-Request-ID response header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		c.Set(ContextRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// GetRequestID returns the request id stored by RequestID. When the
// middleware is not installed (handler unit tests), a new id is generated and
// stored so that every response of a request shares the same value.
func GetRequestID(c *gin.Context) string {
	if v, ok := c.Get(ContextRequestID); ok {
		if id, ok := v.(string); ok && id != "" {
			return id
		}
	}
	id := uuid.NewString()
	c.Set(ContextRequestID, id)
	c.Header(HeaderRequestID, id)
	return id
}
