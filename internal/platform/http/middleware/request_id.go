// Package middleware provides gin middleware shared by all features.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// HeaderRequestID is the header used to propagate request identifiers.
	HeaderRequestID = "X-Request-ID"
	// ContextRequestID is the gin context key holding the request identifier.
	ContextRequestID = "requestID"

	maxRequestIDLength = 128
)

// RequestIDMiddleware reuses an inbound X-Request-ID or generates a UUID,
// stores it in the gin context and echoes it on the response.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}
		c.Set(ContextRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// RequestID returns the request identifier set by RequestIDMiddleware, or "" if absent.
func RequestID(c *gin.Context) string {
	return c.GetString(ContextRequestID)
}
