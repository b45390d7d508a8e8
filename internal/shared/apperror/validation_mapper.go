package apperror

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func formatFieldName(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	caser := cases.Title(language.English)
	return caser.String(s)
}

// MapValidationError turns a gin binding error into a single AppError whose
// Details carry a field -> message map for every failed rule.
func MapValidationError(err error) error {
	if errs, ok := err.(validator.ValidationErrors); ok {
		fields := make(map[string]string, len(errs))
		for _, e := range errs {
			human := formatFieldName(e.Field())
			switch e.Tag() {
			case "required":
				fields[e.Field()] = human + " is required"
			case "oneof":
				fields[e.Field()] = human + " must be one of: " + e.Param()
			case "uuid":
				fields[e.Field()] = human + " must be a valid UUID"
			case "email":
				fields[e.Field()] = human + " must be a valid email"
			default:
				fields[e.Field()] = human + " is invalid"
			}
		}
		return New(
			CodeInvalidInput,
			"Input validation failed",
			http.StatusBadRequest,
		).WithDetails(fields)
	}

	return New(
		CodeInvalidInput,
		"Invalid input",
		http.StatusBadRequest,
	)
}
