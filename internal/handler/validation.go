package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Validator adapts go-playground/validator to echo.Validator.  Errors name
// fields by their JSON key.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v}
}

// Validate implements echo.Validator.
func (cv *Validator) Validate(i any) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		switch fe.Tag() {
		case "required":
			return echo.NewHTTPError(http.StatusBadRequest, fe.Field()+" is required")
		case "email":
			return echo.NewHTTPError(http.StatusBadRequest, fe.Field()+" must be a valid email")
		case "oneof":
			return echo.NewHTTPError(http.StatusBadRequest, fe.Field()+" must be one of "+fe.Param())
		}
		return echo.NewHTTPError(http.StatusBadRequest, fe.Field()+" is invalid")
	}
	return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
}

// ValidEmail reports whether s is a syntactically valid address.
func (cv *Validator) ValidEmail(s string) bool {
	return cv.v.Var(s, "required,email") == nil
}

// bind decodes the request into dst and validates it.
func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return c.Validate(dst)
}
