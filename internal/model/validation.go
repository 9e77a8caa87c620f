package model

import (
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// timeOfDay validates the HH:MM wall-clock strings used by templates and
// booking submissions.
func timeOfDay(fl validator.FieldLevel) bool {
	_, err := time.Parse(TimeFormat, fl.Field().String())
	return err == nil
}

// isoDate validates YYYY-MM-DD calendar dates.
func isoDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(DateFormat, fl.Field().String())
	return err == nil
}

// RegisterValidations installs the custom binding validators on gin's
// validator engine. Must run before the first request is bound.
func RegisterValidations() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	if err := v.RegisterValidation("timeofday", timeOfDay); err != nil {
		return err
	}
	return v.RegisterValidation("isodate", isoDate)
}
