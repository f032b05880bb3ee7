package middleware

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	apperrors "github.com/frontierlab/labdesk/pkg/errors"
)

var messages = map[string]string{
	"required": "is required",
	"notblank": "must not be blank",
	"min":      "is too small",
	"max":      "is too large",
	"gte":      "is too small",
	"lte":      "is too large",
	"oneof":    "has an unsupported value",
}

var registerOnce sync.Once

// RegisterValidators installs the custom tags on gin's validator and makes
// field errors use json names.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
}

// BindingError converts a bind failure into a validation error naming the
// offending fields.
func BindingError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.Validation(fmt.Sprintf("invalid request body: %v", err))
	}

	parts := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msg, ok := messages[e.Tag()]
		if !ok {
			msg = "is invalid"
		}
		parts = append(parts, e.Field()+" "+msg)
	}
	return apperrors.Validation(strings.Join(parts, "; "))
}
