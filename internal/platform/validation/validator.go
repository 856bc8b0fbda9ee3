package validation

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type defaultValidator struct{ v *validator.Validate }

func (d *defaultValidator) Validate(i interface{}) error {
	return d.v.Struct(i)
}

// New returns an echo.Validator implementation. Besides the built-in tags it
// understands `contact_email`, which applies ValidEmail after normalization.
func New() echo.Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("contact_email", func(fl validator.FieldLevel) bool {
		return ValidEmail(NormalizeEmail(fl.Field().String()))
	})
	_ = v.RegisterValidation("notblank_trimmed", func(fl validator.FieldLevel) bool {
		return !Blank(fl.Field().String())
	})
	return &defaultValidator{v: v}
}
