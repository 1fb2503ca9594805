package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/vamgard/vamgard-backend/internal/analytics"
)

// VisitRecorder hands every completed request to rec. Recording happens
// after the handler chain, on a context detached from request cancellation,
// and never alters the response. A nil recorder turns the middleware into a
// pass-through.
func VisitRecorder(rec *analytics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if rec == nil {
			return
		}
		rec.Record(context.WithoutCancel(c.Request.Context()), analytics.Hit{
			Method:    c.Request.Method,
			Path:      c.Request.URL.Path,
			Status:    c.Writer.Status(),
			UserAgent: c.Request.UserAgent(),
			ClientIP:  c.ClientIP(),
		})
	}
}
