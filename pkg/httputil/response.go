package httputil

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/frontierlab/labdesk/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
}

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

const contextRequestID = "request_id"

func RespondWithSuccess(c *gin.Context, data interface{}) {
	RespondWithStatus(c, http.StatusOK, data)
}

func RespondWithStatus(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithError maps err onto a status and a message that is safe to show.
// Errors without a code are reported as internal errors without detail.
func RespondWithError(c *gin.Context, err error) {
	status, message := http.StatusInternalServerError, "internal server error"
	if appErr, ok := errors.As(err); ok {
		status, message = appErr.HTTPStatus(), appErr.Message
	}
	RespondWithMessage(c, status, message)
}

func RespondWithMessage(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Response{
		Success: false,
		Error:   &Error{Code: status, Message: message},
		TraceID: c.GetString(contextRequestID),
	})
}

// RespondWithPartial reports a batch where some items failed. The data still
// carries every item's outcome.
func RespondWithPartial(c *gin.Context, data interface{}, err *errors.AppError) {
	c.JSON(err.HTTPStatus(), Response{
		Success: false,
		Data:    data,
		Error:   &Error{Code: err.HTTPStatus(), Message: err.Message},
		TraceID: c.GetString(contextRequestID),
	})
}

// RespondWithDocument writes a self-contained HTML document, as an
// attachment named filename when download is set.
func RespondWithDocument(c *gin.Context, status int, doc []byte, filename string, download bool) {
	if download && filename != "" {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	}
	c.Data(status, "text/html; charset=utf-8", doc)
}
