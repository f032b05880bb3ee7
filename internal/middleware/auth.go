package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/frontierlab/labdesk/internal/model"
	"github.com/frontierlab/labdesk/pkg/auth"
	"github.com/frontierlab/labdesk/pkg/httputil"
)

const (
	ContextOperator = "operator"
	HeaderOperator  = "X-Operator-ID"

	anonymousOperator = "anonymous"
)

type OperatorAuth struct {
	tokens  *auth.TokenService
	enabled bool
}

func NewOperatorAuth(tokens *auth.TokenService, enabled bool) *OperatorAuth {
	return &OperatorAuth{tokens: tokens, enabled: enabled}
}

// Authenticate resolves the operator making the request. With auth enabled a
// bearer token is required for writes and must be valid whenever present.
// With auth disabled the operator is taken from X-Operator-ID.
func (m *OperatorAuth) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.enabled {
			id := strings.TrimSpace(c.GetHeader(HeaderOperator))
			if id == "" {
				id = anonymousOperator
			}
			c.Set(ContextOperator, model.Operator{ID: id})
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if header == "" {
			if isWrite(c.Request.Method) {
				httputil.RespondWithMessage(c, http.StatusUnauthorized, "missing authorization header")
				return
			}
			c.Next()
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || scheme != "Bearer" {
			httputil.RespondWithMessage(c, http.StatusUnauthorized, "invalid authorization format")
			return
		}

		op, err := m.tokens.Parse(token)
		if err != nil {
			httputil.RespondWithMessage(c, http.StatusUnauthorized, "invalid token")
			return
		}

		c.Set(ContextOperator, op)
		c.Next()
	}
}

func isWrite(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	default:
		return true
	}
}

// OperatorFrom returns the operator resolved by Authenticate.
func OperatorFrom(c *gin.Context) model.Operator {
	if v, ok := c.Get(ContextOperator); ok {
		if op, ok := v.(model.Operator); ok {
			return op
		}
	}
	return model.Operator{ID: anonymousOperator}
}
