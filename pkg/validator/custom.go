package validator

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

const maxAreaNameLen = 64

func RegisterCustomValidations(validate *validator.Validate) {
	validate.RegisterValidation("area", validateAreaName)
	validate.RegisterValidation("image_ref", validateImageRef)
}

// validateAreaName accepts a city or taluka name: non-blank after trimming,
// bounded length, no control characters.
func validateAreaName(fl validator.FieldLevel) bool {
	s := strings.TrimSpace(fl.Field().String())
	if s == "" || len(s) > maxAreaNameLen {
		return false
	}
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			return false
		}
	}
	return true
}

// validateImageRef accepts an opaque image reference (URL or storage key).
func validateImageRef(fl validator.FieldLevel) bool {
	s := strings.TrimSpace(fl.Field().String())
	return s != "" && len(s) <= 2048 && !strings.ContainsAny(s, " \t\r\n")
}
