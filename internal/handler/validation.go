package handler

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Status and type codes are PascalCase-ish identifiers: letters, digits,
// underscores, starting with a letter.
var codePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// RegisterValidations installs custom binding validations on gin's
// validator engine. Called once at startup.
func RegisterValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("code", func(fl validator.FieldLevel) bool {
			return codePattern.MatchString(fl.Field().String())
		})
	}
}
