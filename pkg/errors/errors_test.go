package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		status int
	}{
		{"validation", Validation("patient name is required"), http.StatusBadRequest},
		{"not found", NotFound("visit", nil), http.StatusNotFound},
		{"persistence", Persistence("commit visit", fmt.Errorf("boom")), http.StatusInternalServerError},
		{"partial", PartialBatch(3, 1), http.StatusMultiStatus},
		{"unauthorized", Unauthorized(nil), http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.HTTPStatus())
		})
	}
}

func TestCodeOfWrapped(t *testing.T) {
	err := fmt.Errorf("service: %w", NotFound("visit", nil))

	assert.True(t, IsNotFound(err))
	assert.False(t, IsValidation(err))
	assert.Equal(t, ErrInternal, CodeOf(fmt.Errorf("plain")))
}

func TestPartialBatchMessage(t *testing.T) {
	assert.Equal(t, "2 of 5 results failed to save", PartialBatch(3, 2).Error())
}
