// Package handler holds helpers shared by the HTTP handlers in its
// subpackages.
package handler

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/frontierlab/labdesk/pkg/errors"
)

// ParamID reads a positive numeric path parameter.
func ParamID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.Validation(fmt.Sprintf("invalid %s", name))
	}
	return id, nil
}

// Download reports whether the caller asked for an attachment.
func Download(c *gin.Context) bool {
	v, _ := strconv.ParseBool(c.Query("download"))
	return v
}
