package auth

import (
	"errors"
	"strings"
	"unicode"

	"github.com/desertthunder/marquee/internal/shared"
	"github.com/go-playground/validator/v10"
)

const passwordSymbols = "!@#$%^&*"

// Credentials are the values submitted by the login and signup forms.
type Credentials struct {
	Name     string `json:"name,omitempty" validate:"required_if=Signup true"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,strongpw"`
	Signup   bool   `json:"-"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("strongpw", strongPassword)
	return v
}

// strongPassword requires eight characters drawn from upper, lower, digit and symbol classes.
func strongPassword(fl validator.FieldLevel) bool {
	pw := fl.Field().String()
	if len(pw) < 8 {
		return false
	}

	var upper, lower, digit, symbol bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		}
	}
	return upper && lower && digit && symbol
}

// Normalize trims whitespace and lowercases the email.
func (c Credentials) Normalize() Credentials {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	return c
}

// Validate reports the first failing field as a [shared.ValidationError].
func (c Credentials) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return shared.NewValidationError("credentials", err.Error())
	}

	fe := fieldErrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required", "required_if":
		return shared.NewValidationError(field, "is required")
	case "email":
		return shared.NewValidationError(field, "is not a valid email address")
	case "strongpw":
		return shared.NewValidationError(field, "must be at least 8 characters with upper and lower case letters, a digit and one of "+passwordSymbols)
	default:
		return shared.NewValidationError(field, "is invalid")
	}
}
