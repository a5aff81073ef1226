package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidateRequired checks if a required string field is not empty
func ValidateRequired(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return ValidationError{
			Field:   field,
			Value:   value,
			Message: "is required",
		}
	}
	return nil
}

// ValidateOneOf checks if a value is in a list of allowed values
func ValidateOneOf(field, value string, allowed []string) error {
	for _, allowedValue := range allowed {
		if value == allowedValue {
			return nil
		}
	}
	return ValidationError{
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")),
	}
}

// ValidatePositive checks that an integer field is greater than zero
func ValidatePositive(field string, value int) error {
	if value <= 0 {
		return ValidationError{
			Field:   field,
			Value:   value,
			Message: "must be greater than zero",
		}
	}
	return nil
}

// Validate checks the configuration and collects every problem found.
func (c Config) Validate() *ConfigurationErrorCollection {
	errs := NewConfigurationErrorCollection()
	add := func(err error, suggestions ...string) {
		if err == nil {
			return
		}
		ve, _ := err.(ValidationError)
		errs.Add(ConfigurationError{
			Field:       ve.Field,
			ErrorType:   "validation",
			Message:     ve.Message,
			Suggestions: suggestions,
		})
	}

	add(ValidateRequired("mapping", c.Mapping),
		"Set 'mapping' to the identifier mapping JSON file", "Or export POLARIZER_MAPPING")
	add(ValidateRequired("definitions-path", c.DefinitionsPath),
		"Set 'definitions-path' to a definition YAML file or directory", "Or export POLARIZER_DEFINITIONS_PATH")
	add(ValidateOneOf("transport.kind", c.Transport.Kind,
		[]string{TransportHTTP, TransportWebSocket, TransportExec}))
	add(ValidatePositive("transport.max-attempts", c.Transport.MaxAttempts))

	if c.Transport.PollInterval.Duration < 0 {
		add(ValidationError{Field: "transport.poll-interval", Message: "must not be negative"})
	}
	if c.Transport.Kind == TransportExec && len(c.Transport.Command) == 0 {
		add(ValidationError{Field: "transport.command", Message: "is required for the exec transport"})
	}
	if (c.Transport.Kind == TransportHTTP || c.Transport.Kind == TransportWebSocket) &&
		c.Transport.URL == "" && c.Servers.Polarion.URL == "" {
		add(ValidationError{Field: "transport.url", Message: "is required when servers.polarion.url is not set"})
	}

	return errs
}
