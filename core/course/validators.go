package course

import (
	"encoding/json"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/neuropeak/backend/core"
)

var (
	markingKeyTag  = "markingkey"
	markingKeyText = "marking key must be a JSON object mapping each question to a non-empty answer"
)

// InitValidators registers the course package's custom validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(markingKeyTag, markingKeyValidation)
	core.RegisterCustomTranslation(validate, translator, markingKeyTag, markingKeyText)
}

// markingKeyValidation checks that the marking key parses as a non-empty JSON
// object of question id -> non-empty answer.
func markingKeyValidation(fl validator.FieldLevel) bool {
	var key map[string]string
	if err := json.Unmarshal([]byte(fl.Field().String()), &key); err != nil {
		return false
	}
	if len(key) == 0 {
		return false
	}
	for _, answer := range key {
		if answer == "" {
			return false
		}
	}
	return true
}
