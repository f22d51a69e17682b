package task

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/masomo/core"
)

var (
	dueDatePastTag  = "duepast"
	dueDatePastText = "{0} cannot be in the past"

	// nowFunc is replaced in tests.
	nowFunc = time.Now
)

// InitValidators registers the task validations on an initialized validator.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(newTaskStructValidation, NewTask{})
	core.RegisterCustomTranslation(validate, translator, dueDatePastTag, dueDatePastText)
}

// newTaskStructValidation rejects new tasks due before today.
func newTaskStructValidation(sl validator.StructLevel) {
	nt := sl.Current().Interface().(NewTask)
	if !nt.DueDate.Valid {
		return
	}
	today := nowFunc().UTC().Truncate(24 * time.Hour)
	if nt.DueDate.Time.UTC().Before(today) {
		sl.ReportError(nt.DueDate, "dueDate", "DueDate", dueDatePastTag, "")
	}
}
