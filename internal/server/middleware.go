package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/portfolio-grader/internal/common"
)

const headerRequestID = "X-Request-ID"

// RequestContext gives every request an id and a logger carrying it, and logs
// the request once it completes.
func RequestContext(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		rid := c.GetHeader(headerRequestID)
		if _, err := uuid.Parse(rid); err != nil {
			rid = uuid.New().String()
		}
		c.Header(headerRequestID, rid)

		reqLog := logger.With(zap.String("req_id", rid))
		ctx := common.WithRequestID(c.Request.Context(), rid)
		ctx = common.WithLogger(ctx, reqLog)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		reqLog.Info("http.request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Int("bytes", c.Writer.Size()),
			zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
		)
	}
}
