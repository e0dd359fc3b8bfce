package domain

import "fmt"

// NotFoundError reports a source path that does not exist or cannot be read
type NotFoundError struct {
	Path string
	Err  error
}

func (e *NotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("file not found: %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("file not found: %s", e.Path)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// ValidationError reports a metadata field that is missing or malformed
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid metadata: %s %s", e.Field, e.Reason)
}

// AuthError reports a credential rejected by the storage service
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("authentication failed (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("authentication failed (status %d): %s", e.StatusCode, e.Message)
}

// NetworkError reports a transport failure before a response was received
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServiceError reports a non-success response from the storage service
type ServiceError struct {
	StatusCode int
	Name       string
	Message    string
}

func (e *ServiceError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("storage service error (status %d): %s: %s", e.StatusCode, e.Name, e.Message)
	}
	return fmt.Sprintf("storage service error (status %d): %s", e.StatusCode, e.Message)
}

// ConfigError reports a required configuration value that is missing
type ConfigError struct {
	Key  string
	Hint string
}

func (e *ConfigError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("missing configuration %s (%s)", e.Key, e.Hint)
	}
	return fmt.Sprintf("missing configuration %s", e.Key)
}
