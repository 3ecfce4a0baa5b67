package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Validator wraps the go-playground validator
type Validator struct {
	validate *validator.Validate
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Tag     string `json:"tag"`
	Value   string `json:"value,omitempty"`
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (v ValidationErrors) Error() string {
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Message)
	}
	return strings.Join(messages, "; ")
}

var (
	datePattern     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.\-]+$`)
)

// New creates a new validator instance
func New() *Validator {
	v := validator.New()

	// Register custom tag name function to use JSON tags
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterValidation("dateformat", validateDateFormat)
	v.RegisterValidation("dronestatus", validateDroneStatus)
	v.RegisterValidation("username", validateUsername)

	return &Validator{validate: v}
}

// Validate validates a struct and returns validation errors
func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	var validationErrs ValidationErrors
	for _, fe := range fieldErrs {
		validationErrs = append(validationErrs, ValidationError{
			Field:   fe.Field(),
			Message: msgForTag(fe),
			Tag:     fe.Tag(),
			Value:   fmt.Sprintf("%v", fe.Value()),
		})
	}

	return validationErrs
}

// msgForTag returns a human-readable error message for a validation tag
func msgForTag(fe validator.FieldError) string {
	field := fe.Field()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "dateformat":
		return fmt.Sprintf("%s must be in YYYY-MM-DD format", field)
	case "dronestatus":
		return fmt.Sprintf("%s must be one of: ready, unstable, faulty", field)
	case "username":
		return fmt.Sprintf("%s may only contain letters, numbers and _.-", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}

// Custom validators

// validateDateFormat validates YYYY-MM-DD format and that the date exists
func validateDateFormat(fl validator.FieldLevel) bool {
	return IsDate(fl.Field().String())
}

func validateDroneStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "ready", "unstable", "faulty":
		return true
	}
	return false
}

func validateUsername(fl validator.FieldLevel) bool {
	return usernamePattern.MatchString(fl.Field().String())
}

// IsDate reports whether s is a calendar date in YYYY-MM-DD form.
func IsDate(s string) bool {
	if !datePattern.MatchString(s) {
		return false
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// Check collects field errors outside of struct tags, for partial updates.
type Check struct {
	errs ValidationErrors
}

// Fail records a failed rule for field.
func (c *Check) Fail(field, tag, message string) {
	c.errs = append(c.errs, ValidationError{Field: field, Tag: tag, Message: message})
}

// Required fails when a present value is blank.
func (c *Check) Required(field, value string) {
	if strings.TrimSpace(value) == "" {
		c.Fail(field, "required", fmt.Sprintf("%s is required", field))
	}
}

// Date fails when a present value is not a YYYY-MM-DD date.
func (c *Check) Date(field, value string) {
	if !IsDate(value) {
		c.Fail(field, "dateformat", fmt.Sprintf("%s must be in YYYY-MM-DD format", field))
	}
}

// Err returns the collected errors, or nil.
func (c *Check) Err() error {
	if len(c.errs) == 0 {
		return nil
	}
	return c.errs
}
