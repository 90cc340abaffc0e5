package schedule

import (
	"errors"
	"fmt"
)

// ConfigurationError marks a malformed Dispatch. A dispatch with a
// configuration error never fires and is reported on every tick until fixed.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid dispatch configuration: %s: %s", e.Field, e.Reason)
}

func NewConfigurationError(field, reason string) error {
	return &ConfigurationError{Field: field, Reason: reason}
}

// IsConfigurationError reports whether err is a ConfigurationError.
func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}
