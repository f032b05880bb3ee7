package middleware

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/frontierlab/labdesk/pkg/errors"
	"github.com/frontierlab/labdesk/pkg/httputil"
)

// ErrorHandler turns errors recorded with c.Error into the JSON error
// envelope. Handlers that already wrote a response are left alone.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		logger := requestLogger(c)
		for _, e := range c.Errors {
			event := logger.Warn()
			if apperrors.CodeOf(e.Err) >= apperrors.ErrPersistence {
				event = logger.Error()
			}
			event.
				Err(e.Err).
				Str("path", c.Request.URL.Path).
				Str("method", c.Request.Method).
				Msg("Request error")
		}

		if c.Writer.Written() {
			return
		}
		httputil.RespondWithError(c, c.Errors.Last().Err)
	}
}
