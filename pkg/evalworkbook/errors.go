package evalworkbook

import (
	"errors"
	"fmt"
)

var (
	// ErrNoMetrics is returned when neither metric group has a row.
	ErrNoMetrics = errors.New("please select at least one metric")
	// ErrModelCount is returned when the model sheet count is outside [1, 26].
	ErrModelCount = errors.New("model sheet count must be between 1 and 26")
	// ErrEmptyFilename is returned when an output filename is required but blank.
	ErrEmptyFilename = errors.New("please provide a filename")
)

// ConfigurationError rejects a configuration before any sheet is created.
type ConfigurationError struct {
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration (%s): %v", e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// GenerationError reports a failure while composing a sheet.
// It keeps only the message of the underlying error so excelize types never leak to callers.
type GenerationError struct {
	Step    string
	Message string
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("workbook generation failed at %s: %s", e.Step, e.Message)
}

// IsConfigurationError reports whether err is a *ConfigurationError.
func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}
