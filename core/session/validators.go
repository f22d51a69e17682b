package session

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/masomo/core"
)

// InitValidators registers the session validations on an initialized validator.
func InitValidators(validate *validator.Validate, _ ut.Translator) {
	validate.RegisterStructValidation(sessionStructValidation, NewSession{}, UpdateSession{})
}

func sessionStructValidation(sl validator.StructLevel) {
	switch s := sl.Current().Interface().(type) {
	case NewSession:
		core.ReportDateRange(sl, s.StartsAt, s.EndsAt, "endsAt", "EndsAt")
	case UpdateSession:
		if s.StartsAt != nil && s.EndsAt != nil {
			core.ReportDateRange(sl, *s.StartsAt, *s.EndsAt, "endsAt", "EndsAt")
		}
	}
}
