package middleware

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/model"
)

// RegisterValidators installs domain validators on gin's binding engine and
// makes validation errors report JSON field names rather than Go ones.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	if err := v.RegisterValidation("staffrole", validStaffRole); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("patientstatus", validPatientStatus); err != nil {
		panic(err)
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return fld.Name
		}
		return name
	})
}

func validStaffRole(fl validator.FieldLevel) bool {
	_, ok := model.ParseStaffRole(fl.Field().String())
	return ok
}

func validPatientStatus(fl validator.FieldLevel) bool {
	_, ok := model.ParsePatientStatus(fl.Field().String())
	return ok
}
