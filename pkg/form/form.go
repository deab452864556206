// Package form validates submitted form fields.
package form

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/doodlesbykumbi/flasky-in-go/pkg/model"
)

// FieldErrors maps a field name to its validation messages
type FieldErrors map[string][]string

func (e FieldErrors) Error() string {
	var parts []string
	for field, msgs := range e {
		parts = append(parts, field+": "+strings.Join(msgs, ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records a message for field
func (e FieldErrors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Get returns the messages recorded for field
func (e FieldErrors) Get(field string) []string {
	return e[field]
}

// NameForm is the single-field form on the index page
type NameForm struct {
	Name string `validate:"required,max=64"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// InvalidCharactersMessage rejects names that are not valid UTF-8 or contain NUL
const InvalidCharactersMessage = "Field contains invalid characters."

// ValidateName checks a submitted name. Valid input is returned as-is; it is
// never trimmed.
func ValidateName(name string) (string, error) {
	errs := FieldErrors{}

	if strings.TrimSpace(name) == "" {
		errs.Add("name", "This field is required.")
		return "", errs
	}

	// PostgreSQL text columns reject invalid UTF-8 and NUL
	if !utf8.ValidString(name) || strings.ContainsRune(name, 0) {
		errs.Add("name", InvalidCharactersMessage)
		return "", errs
	}

	if err := validate.Struct(NameForm{Name: name}); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return "", err
		}
		for _, fe := range verrs {
			errs.Add("name", message(fe))
		}
		return "", errs
	}

	return name, nil
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return "Field cannot be longer than " + fe.Param() + " characters."
	}
	return "Invalid value."
}

// MaxNameLength mirrors the column width of users.username
const MaxNameLength = model.MaxNameLength
