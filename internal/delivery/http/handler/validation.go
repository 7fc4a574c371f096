package handler

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// ContactModes are the channels a member may disclose on a match request.
var ContactModes = []string{"WhatsApp", "Phone", "Email"}

// RegisterValidators adds the custom binding tags used by request DTOs.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return v.RegisterValidation("contactmode", validContactMode)
}

func validContactMode(fl validator.FieldLevel) bool {
	mode := fl.Field().String()
	for _, m := range ContactModes {
		if m == mode {
			return true
		}
	}
	return false
}
