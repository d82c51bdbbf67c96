package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// New creates a new validator instance with custom validations registered.
// This ensures consistent validation across the application and tests.
func New() *validator.Validate {
	v := validator.New()

	// Register custom "notblank" validator - rejects whitespace-only strings
	// This is used for fields like coupon names that must have meaningful content
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		str, ok := fl.Field().Interface().(string)
		if !ok {
			return true // Not a string, let other validators handle it
		}
		return strings.TrimSpace(str) != ""
	})

	return v
}

// Messages converts validator errors into one message per violated rule, in field order.
// Errors that are not validation errors yield a single generic message.
func Messages(err error) []string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return []string{"'Request' is invalid."}
	}

	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fieldMessages(fe)...)
	}
	return msgs
}

// Message joins all violations into a single multi-line string, each line
// terminated by a newline. This is the form placed in the response envelope.
func Message(err error) string {
	var b strings.Builder
	for _, m := range Messages(err) {
		b.WriteString(m)
		b.WriteString("\n")
	}
	return b.String()
}

func fieldMessages(fe validator.FieldError) []string {
	name := displayName(fe.Field())

	switch fe.Tag() {
	case "required", "notblank":
		// A zero Id violates both the presence and the positive rule.
		if fe.Field() == "ID" {
			return []string{
				fmt.Sprintf("'%s' must not be empty.", name),
				fmt.Sprintf("'%s' must be greater than '0'.", name),
			}
		}
		return []string{fmt.Sprintf("'%s' must not be empty.", name)}
	case "gt":
		return []string{fmt.Sprintf("'%s' must be greater than '%s'.", name, fe.Param())}
	case "gte", "lte":
		if fe.Field() == "Percent" {
			return []string{fmt.Sprintf("'%s' must be between 1 and 100. You entered %v.", name, fe.Value())}
		}
		return []string{fmt.Sprintf("'%s' is out of range.", name)}
	default:
		return []string{fmt.Sprintf("'%s' is invalid.", name)}
	}
}

func displayName(field string) string {
	if field == "ID" {
		return "Id"
	}
	return field
}
