package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"mangashelf/pkg/models"
)

// Init registers catalog-specific rules on gin's binding engine. Call once
// before any routes are wired.
func Init() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("readstatus", func(fl validator.FieldLevel) bool {
		return models.ValidReadStatus(fl.Field().String())
	})
}
