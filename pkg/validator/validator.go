package validator

import (
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// MaxCount is the largest quantity the count tag accepts. Stored documents
// decode counts up to the same bound.
const MaxCount = math.MaxInt32

var maxCount = decimal.NewFromInt(MaxCount)

type ErrorResponse struct {
	FailedField string
	Tag         string
	Value       string
}

var validate = validator.New()

func init() {
	// Non-negative decimal amount, e.g. a price typed into a form
	validate.RegisterValidation("decimal", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && !d.IsNegative()
	})
	// Non-negative whole number, e.g. a stock quantity
	validate.RegisterValidation("count", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && !d.IsNegative() && d.IsInteger() && d.LessThanOrEqual(maxCount)
	})
}

func ValidateStruct(data interface{}) []*ErrorResponse {
	var errors []*ErrorResponse
	err := validate.Struct(data)
	if err != nil {
		for _, err := range err.(validator.ValidationErrors) {
			var element ErrorResponse
			element.FailedField = err.StructNamespace()
			element.Tag = err.Tag()
			element.Value = err.Param()
			errors = append(errors, &element)
		}
	}
	return errors
}

// ValidateVar checks one value against a tag list such as "required,email".
func ValidateVar(value interface{}, tags string) error {
	if tags == "" {
		return nil
	}
	return validate.Var(value, tags)
}
