package handler

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// RequestValidator plugs go-playground/validator into echo.  Set it as
// e.Validator so c.Validate works in every handler.
type RequestValidator struct {
	v *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{v: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate returns the first failing field as a readable error.
func (rv *RequestValidator) Validate(i any) error {
	err := rv.v.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	var msg string
	switch fe.Tag() {
	case "required":
		msg = "is required"
	case "email":
		msg = "must be a valid email"
	case "min", "gte":
		msg = "is below minimum " + fe.Param()
	case "max", "lte":
		msg = "exceeds maximum " + fe.Param()
	case "datetime":
		msg = "must match format " + fe.Param()
	case "oneof":
		msg = "must be one of: " + fe.Param()
	default:
		msg = "is invalid"
	}
	return fmt.Errorf("%s %s", fe.Field(), msg)
}
