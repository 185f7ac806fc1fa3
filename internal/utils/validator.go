package utils

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// mongoURIRegex accepts standard and SRV connection strings
	mongoURIRegex = regexp.MustCompile(`^mongodb(\+srv)?://[^\s]+$`)

	// Custom error messages for validation errors
	validationErrorMessages = map[string]string{
		"required":        "This field is required",
		"min":             "Value must be greater than or equal to %s",
		"max":             "Value must be less than or equal to %s",
		"gtefield":        "Value must be greater than or equal to %s",
		"oneof":           "Value must be one of: %s",
		"mongouri":        "Must be a mongodb:// or mongodb+srv:// connection string",
		"collection_name": "Must be a valid MongoDB collection name",
	}
)

func init() {
	validate = validator.New()

	// Configuration structs are decoded by viper, so report mapstructure names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	_ = validate.RegisterValidation("mongouri", validateMongoURI)
	_ = validate.RegisterValidation("collection_name", validateCollectionName)
}

// Validate performs validation on the given struct and returns validation errors.
func Validate(s any) error {
	return validate.Struct(s)
}

// ValidateVar validates a single variable with the given tag and returns errors.
func ValidateVar(field any, tag string) error {
	return validate.Var(field, tag)
}

// FormatValidationErrors formats validation errors into a field to message map.
// Errors that did not come from the validator are reported under "_".
func FormatValidationErrors(err error) map[string]string {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		message, exists := validationErrorMessages[fe.Tag()]
		if !exists {
			message = "Invalid value"
		}
		if param := fe.Param(); param != "" && strings.Contains(message, "%s") {
			message = strings.Replace(message, "%s", param, 1)
		}
		out[fieldPath(fe.Namespace())] = message
	}
	return out
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func validateMongoURI(fl validator.FieldLevel) bool {
	return mongoURIRegex.MatchString(fl.Field().String())
}

// validateCollectionName follows the server's naming restrictions.
func validateCollectionName(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	switch {
	case name == "":
		return false
	case strings.ContainsAny(name, "$\x00"):
		return false
	case strings.HasPrefix(name, "system."):
		return false
	}
	return true
}

// GetValidator returns the validator instance.
func GetValidator() *validator.Validate {
	return validate
}
