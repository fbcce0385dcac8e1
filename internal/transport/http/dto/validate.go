package dto

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entrans "github.com/go-playground/validator/v10/translations/en"

	"github.com/imedia765/a-051853/internal/domain"
)

var (
	validate *validator.Validate
	trans    ut.Translator
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name so error meta matches the request body.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	english := en.New()
	trans, _ = ut.New(english, english).GetTranslator("en")
	if err := entrans.RegisterDefaultTranslations(validate, trans); err != nil {
		panic(err)
	}

	mustRegister("member_number", validateMemberNumber, "{0} must contain only letters and digits")
}

func mustRegister(tag string, fn validator.Func, text string) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
	err := validate.RegisterTranslation(tag, trans,
		func(u ut.Translator) error { return u.Add(tag, text, true) },
		func(u ut.Translator, fe validator.FieldError) string {
			t, _ := u.T(tag, fe.Field())
			return t
		},
	)
	if err != nil {
		panic(err)
	}
}

func validateMemberNumber(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return false
	}
	for _, c := range s {
		isLetter := (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
		isDigit := c >= '0' && c <= '9'
		if !isLetter && !isDigit {
			return false
		}
	}
	return true
}

// check validates v and converts the first failure into a domain validation error.
func check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		return domain.ErrInvalidField("body", err.Error())
	}
	return fieldError(ves[0])
}

func fieldError(fe validator.FieldError) error {
	switch fe.Tag() {
	case "required":
		return domain.ErrMissingField(fe.Field())
	default:
		return domain.ErrInvalidField(fe.Field(), fe.Translate(trans))
	}
}
