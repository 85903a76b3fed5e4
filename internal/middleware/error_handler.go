package middleware

import (
	"net/http"
	"time"

	"carbonledger/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// abortInternal ends the request with the generic 500 body. Internals (SQL
// text, file paths, panic values) stay in the log, keyed by request id.
func abortInternal(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.New("internal server error"))
}

// ErrorHandler turns errors collected via c.Error into a generic 500 once
// the handler chain is done.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 {
			return
		}
		log.Error().
			Str("request_id", c.GetString(RequestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Err(c.Errors.Last().Err).
			Msg("unhandled error")
		abortInternal(c)
	}
}

// Recovery turns panics into 500 responses instead of dropped connections.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			log.Error().
				Str("request_id", c.GetString(RequestIDKey)).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Interface("panic", r).
				Msg("panic recovered")
			abortInternal(c)
		}()
		c.Next()
	}
}

// Logger emits one structured line per request. The path is captured before
// the handlers run so rewrites do not change what gets logged.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()
		log.Info().
			Str("request_id", c.GetString(RequestIDKey)).
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
