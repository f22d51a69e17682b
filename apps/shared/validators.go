package shared

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/masomo/core"
	"github.com/trezcool/masomo/core/project"
	"github.com/trezcool/masomo/core/session"
	"github.com/trezcool/masomo/core/task"
	"github.com/trezcool/masomo/core/user"
)

// InitValidators registers every validation and translation of the domain packages.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	project.InitValidators(validate, translator)
	task.InitValidators(validate, translator)
	session.InitValidators(validate, translator)
}

// NewValidator returns a validator ready for the domain payloads, and its translator.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	InitValidators(validate, translator)
	return validate, translator
}
