package handler

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// fieldLabels maps struct field names to the labels shown on the forms.
var fieldLabels = map[string]string{
	"Username":       "Username",
	"Email":          "E-mail",
	"Password":       "Password",
	"ImageURL":       "Image URL",
	"HeaderImageURL": "Header image URL",
	"Bio":            "Bio",
	"Location":       "Location",
	"Text":           "Message",
}

// validateForm returns one human-readable message per failed field, or nil.
func validateForm(form any) []string {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{"Invalid form data."}
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return msgs
}

func fieldMessage(fe validator.FieldError) string {
	label, ok := fieldLabels[fe.Field()]
	if !ok {
		label = fe.Field()
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", label)
	case "email":
		return "Please enter a valid e-mail address."
	case "min":
		return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
	case "url|startswith=/", "url", "startswith":
		return fmt.Sprintf("%s must be a URL.", label)
	}
	return fmt.Sprintf("%s is invalid.", label)
}
