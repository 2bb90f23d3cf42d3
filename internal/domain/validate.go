package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name so messages match the stored layout
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct runs tag validation and turns the first failure into a readable error
func validateStruct(kind string, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s %s is required", kind, fe.Field())
	case "email":
		return fmt.Errorf("%s %s %q is not a valid email address", kind, fe.Field(), fe.Value())
	case "oneof":
		return fmt.Errorf("%s %s must be one of: %s", kind, fe.Field(), fe.Param())
	case "min", "gte":
		return fmt.Errorf("%s %s must be at least %s", kind, fe.Field(), fe.Param())
	default:
		return fmt.Errorf("%s %s failed %q validation", kind, fe.Field(), fe.Tag())
	}
}
