package validator

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate - валидация структуры запроса по тегам validate
func Validate(s interface{}) error {
	return validate.Struct(s)
}
