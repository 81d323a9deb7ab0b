package validator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kuldeepjain-work/URLShortner/pkg/response"
)

var validate *validator.Validate

// Codes that would shadow fixed routes if allowed as custom codes.
var reservedKeywords = map[string]bool{
	"shorten": true,
	"stats":   true,
	"healthz": true,
	"readyz":  true,
}

func init() {
	validate = validator.New()

	validate.RegisterValidation("shortcode", validateShortCode)
}

func Validate(data interface{}) []response.ValidationError {
	var validationErrors []response.ValidationError

	err := validate.Struct(data)
	if err != nil {
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, response.ValidationError{
				Field:   err.Field(),
				Message: getErrorMessage(err),
			})
		}
	}

	return validationErrors
}

func validateShortCode(fl validator.FieldLevel) bool {
	code := fl.Field().String()

	matched, _ := regexp.MatchString(`^[a-zA-Z0-9_-]+$`, code)
	return matched
}

func IsReservedKeyword(code string) bool {
	return reservedKeywords[strings.ToLower(code)]
}

func getErrorMessage(err validator.FieldError) string {
	field := err.Field()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, err.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, err.Param())
	case "shortcode":
		return fmt.Sprintf("%s may only contain letters, digits, '-' and '_'", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
