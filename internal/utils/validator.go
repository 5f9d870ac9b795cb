package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct runs validator tags on a request struct and flattens the
// failures into one human-readable message.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	msgs := make([]string, len(ve))
	for i, fe := range ve {
		switch fe.Tag() {
		case "required":
			msgs[i] = fmt.Sprintf("%s is required", fe.Field())
		case "email":
			msgs[i] = fmt.Sprintf("%s must be a valid email address", fe.Field())
		case "len":
			msgs[i] = fmt.Sprintf("%s must be exactly %s characters long", fe.Field(), fe.Param())
		case "oneof":
			msgs[i] = fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
		default:
			msgs[i] = fmt.Sprintf("%s failed validation on '%s'", fe.Field(), fe.Tag())
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
