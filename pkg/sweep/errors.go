package sweep

import "fmt"

// ConfigError reports missing, malformed or invalid task options. Its
// message is meant to be shown to the operator verbatim.
type ConfigError struct {
	Message string
	Cause   error // decode error, nil for validation failures
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause error.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// NewConfigError creates a new ConfigError.
func NewConfigError(message string, cause error) *ConfigError {
	return &ConfigError{Message: message, Cause: cause}
}

// ExecutionError reports a failure while locating or destroying records.
type ExecutionError struct {
	Kind      Kind  // record kind being swept
	Processed int   // records destroyed before the failure
	Cause     error // underlying store error
}

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	return fmt.Sprintf("sweep error [kind=%s, processed=%d]: %v", e.Kind, e.Processed, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// NewExecutionError creates a new ExecutionError.
func NewExecutionError(kind Kind, processed int, cause error) *ExecutionError {
	return &ExecutionError{Kind: kind, Processed: processed, Cause: cause}
}
