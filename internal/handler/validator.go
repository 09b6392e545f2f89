package handler

import (
	"errors"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/store-rating/internal/apperror"
	"github.com/iliyamo/store-rating/internal/model"
)

// passwordSpecials is the set of characters that satisfy the "special
// character" requirement of the password policy.
const passwordSpecials = `!@#$%^&*(),.?":{}|<>`

const maxPasswordBytes = 72

// Validator adapts validator/v10 to echo.Validator. Field names in
// messages are the JSON names.
type Validator struct {
	v *validator.Validate
}

// NewValidator registers the custom rules:
//
//	strongpwd  8-50 characters with upper, lower, digit and special
//	role       one of user, admin, store_owner (case-insensitive)
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("strongpwd", func(fl validator.FieldLevel) bool {
		return StrongPassword(fl.Field().String())
	})
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		_, ok := model.ParseRole(fl.Field().String())
		return ok
	})
	return &Validator{v: v}
}

// Validate runs the struct rules and reports the first violation as a
// Validation error.
func (cv *Validator) Validate(i interface{}) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperror.Validation(fe.Field() + " " + fieldMessage(fe))
	}
	return apperror.Validation("invalid payload")
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		if fe.Kind() == reflect.String {
			return "must be at least " + fe.Param() + " characters long"
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return "must be at most " + fe.Param() + " characters long"
		}
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "strongpwd":
		return "must be 8-50 characters with uppercase, lowercase, number and special character"
	case "role":
		return "must be one of: user, admin, store_owner"
	}
	return "is invalid"
}

// StrongPassword reports whether p satisfies the password policy. bcrypt
// only accepts up to 72 bytes, so multi-byte passwords are bounded by that
// too.
func StrongPassword(p string) bool {
	if n := len([]rune(p)); n < 8 || n > 50 || len(p) > maxPasswordBytes {
		return false
	}
	var upper, lower, digit, special bool
	for _, r := range p {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	return upper && lower && digit && special
}
