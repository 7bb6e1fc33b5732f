package eval

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/tathmini/core"
)

var (
	// custom validation tags & texts
	compStateTag  = "compstate"
	compStateText = "invalid competency state"

	verdictTag  = "verdict"
	verdictText = "invalid verdict"

	paramSlotTag  = "paramslot"
	paramSlotText = "invalid parameter slot"
)

// InitValidators registers the evaluation payload validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(compStateTag, compStateValidation)
	core.RegisterCustomTranslation(validate, translator, compStateTag, compStateText)

	_ = validate.RegisterValidation(verdictTag, verdictValidation)
	core.RegisterCustomTranslation(validate, translator, verdictTag, verdictText)

	_ = validate.RegisterValidation(paramSlotTag, paramSlotValidation)
	core.RegisterCustomTranslation(validate, translator, paramSlotTag, paramSlotText)
}

// Custom Validators

// compStateValidation only allows the four terminal competency states.
func compStateValidation(fl validator.FieldLevel) bool {
	return CompetencyState(fl.Field().String()).Scorable()
}

// verdictValidation only allows the two terminal verdicts.
func verdictValidation(fl validator.FieldLevel) bool {
	v := Verdict(fl.Field().String())
	return v == VerdictSatisfactory || v == VerdictNonSatisfactory
}

func paramSlotValidation(fl validator.FieldLevel) bool {
	s := ParamSlot(fl.Field().String())
	return s == SlotPrimary || s == SlotSecondary
}
