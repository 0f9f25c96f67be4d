package config

import (
	"reflect"

	"github.com/Masterminds/semver/v3"
	"github.com/go-playground/validator/v10"
	"github.com/mazznoer/csscolorparser"
)

// RegisterCustomValidators registers custom validation functions
func RegisterCustomValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("css_color", validateCSSColor); err != nil {
		return err
	}
	if err := v.RegisterValidation("ascending", validateAscending); err != nil {
		return err
	}
	return v.RegisterValidation("semver_constraint", validateSemverConstraint)
}

// validateCSSColor accepts any CSS color that resolves to a concrete value
func validateCSSColor(fl validator.FieldLevel) bool {
	_, err := csscolorparser.Parse(fl.Field().String())
	return err == nil
}

// validateAscending requires a strictly increasing list of positive integers
func validateAscending(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.Slice {
		return false
	}
	prev := int64(0)
	for i := 0; i < field.Len(); i++ {
		n := field.Index(i).Int()
		if n <= prev {
			return false
		}
		prev = n
	}
	return true
}

func validateSemverConstraint(fl validator.FieldLevel) bool {
	_, err := semver.NewConstraint(fl.Field().String())
	return err == nil
}
