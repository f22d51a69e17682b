package project

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/masomo/core"
)

// InitValidators registers the project validations on an initialized validator.
func InitValidators(validate *validator.Validate, _ ut.Translator) {
	validate.RegisterStructValidation(projectStructValidation, NewProject{}, UpdateProject{})
}

// projectStructValidation checks that the end date of a project comes after its start date.
func projectStructValidation(sl validator.StructLevel) {
	switch p := sl.Current().Interface().(type) {
	case NewProject:
		if p.EndDate.Valid {
			core.ReportDateRange(sl, p.StartDate, p.EndDate.Time, "endDate", "EndDate")
		}
	case UpdateProject:
		if p.StartDate != nil && p.EndDate != nil && p.EndDate.Valid {
			core.ReportDateRange(sl, *p.StartDate, p.EndDate.Time, "endDate", "EndDate")
		}
	}
}
