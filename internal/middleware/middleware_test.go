package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frontierlab/labdesk/internal/model"
	"github.com/frontierlab/labdesk/pkg/auth"
	apperrors "github.com/frontierlab/labdesk/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), ErrorHandler())
	r.Use(mw...)
	whoami := func(c *gin.Context) { c.String(http.StatusOK, OperatorFrom(c).ID) }
	r.GET("/visits", whoami)
	r.POST("/visits", whoami)
	r.GET("/fail", func(c *gin.Context) { _ = c.Error(apperrors.NotFound("visit", nil)) })
	r.GET("/panic", func(*gin.Context) { panic("boom") })
	return r
}

func do(r http.Handler, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestOperatorAuthEnabled(t *testing.T) {
	tokens := auth.NewTokenService("secret")
	r := newEngine(NewOperatorAuth(tokens, true).Authenticate())

	token, err := tokens.Issue(model.Operator{ID: "u-7", Name: "Desk"}, time.Hour)
	require.NoError(t, err)

	w := do(r, http.MethodPost, "/visits", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodGet, "/visits", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodPost, "/visits", map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u-7", w.Body.String())

	w = do(r, http.MethodGet, "/visits", map[string]string{"Authorization": "Bearer nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodPost, "/visits", map[string]string{"Authorization": "Token " + token})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOperatorAuthDisabled(t *testing.T) {
	r := newEngine(NewOperatorAuth(nil, false).Authenticate())

	w := do(r, http.MethodPost, "/visits", map[string]string{HeaderOperator: "desk-2"})
	assert.Equal(t, "desk-2", w.Body.String())

	w = do(r, http.MethodPost, "/visits", nil)
	assert.Equal(t, "anonymous", w.Body.String())
}

func TestErrorHandlerMapsAppErrors(t *testing.T) {
	r := newEngine()

	w := do(r, http.MethodGet, "/fail", map[string]string{HeaderXRequestID: "req-1"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "visit not found")
	assert.Contains(t, w.Body.String(), "req-1")
	assert.Equal(t, "req-1", w.Header().Get(HeaderXRequestID))
}

func TestRecovery(t *testing.T) {
	r := newEngine(Recovery())

	w := do(r, http.MethodGet, "/panic", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestRateLimitPerClient(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 1, Burst: 2})
	r := newEngine(rl.RateLimit())

	first := map[string]string{"X-Forwarded-For": "10.0.0.1"}
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/visits", first).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/visits", first).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodGet, "/visits", first).Code)

	second := map[string]string{"X-Forwarded-For": "10.0.0.2"}
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/visits", second).Code)
}

func TestBindingError(t *testing.T) {
	RegisterValidators()

	type body struct {
		Name string `json:"name" binding:"notblank"`
		Age  int    `json:"age" binding:"gte=0,lte=150"`
	}

	r := gin.New()
	r.POST("/", func(c *gin.Context) {
		var b body
		if err := c.ShouldBindJSON(&b); err != nil {
			err = BindingError(err)
			assert.True(t, apperrors.IsValidation(err))
			c.String(http.StatusBadRequest, err.Error())
			return
		}
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"  ","age":200}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "name must not be blank")
	assert.Contains(t, w.Body.String(), "age is too large")
}
