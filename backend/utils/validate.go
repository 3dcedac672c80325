package utils

import "github.com/go-playground/validator/v10"

var validate = validator.New()

// ValidateStruct checks a request DTO against its validate tags and
// returns field -> failed-rule pairs for the response body.
func ValidateStruct(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	out := make(map[string]string)
	if errs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range errs {
			out[fe.Field()] = fe.Tag()
		}
	} else {
		out["_"] = err.Error()
	}
	return out
}
