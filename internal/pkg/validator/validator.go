package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerCustomValidations()
}

func registerCustomValidations() {
	// Payment method validation
	validate.RegisterValidation("payment_method", func(fl validator.FieldLevel) bool {
		method := fl.Field().String()
		return method == "credits" || method == "transfer"
	})

	// Order status validation (admin transitions only)
	validate.RegisterValidation("order_status", func(fl validator.FieldLevel) bool {
		status := fl.Field().String()
		return status == "confirmed" || status == "rejected"
	})

	// Payment status validation (admin transitions only)
	validate.RegisterValidation("payment_status", func(fl validator.FieldLevel) bool {
		status := fl.Field().String()
		return status == "verified" || status == "rejected"
	})

	// Catalog item kind validation
	validate.RegisterValidation("item_kind", func(fl validator.FieldLevel) bool {
		kind := fl.Field().String()
		return kind == "product" || kind == "service"
	})
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	errors := make(map[string]string)
	for _, err := range err.(validator.ValidationErrors) {
		field := err.Field()
		switch err.Tag() {
		case "required":
			errors[field] = "This field is required"
		case "min":
			errors[field] = "Value is too small (min: " + err.Param() + ")"
		case "max":
			errors[field] = "Value is too large (max: " + err.Param() + ")"
		case "gte":
			errors[field] = "Value must be at least " + err.Param()
		case "lte":
			errors[field] = "Value must be at most " + err.Param()
		case "url":
			errors[field] = "Invalid URL format"
		case "payment_method":
			errors[field] = "Invalid payment method. Must be: credits or transfer"
		case "order_status":
			errors[field] = "Invalid status. Must be: confirmed or rejected"
		case "payment_status":
			errors[field] = "Invalid payment status. Must be: verified or rejected"
		case "item_kind":
			errors[field] = "Invalid item type. Must be: product or service"
		default:
			errors[field] = "Invalid value"
		}
	}

	return errors
}

// ValidateVar validates a single variable
func ValidateVar(field interface{}, tag string) error {
	return validate.Var(field, tag)
}
