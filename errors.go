package coiserve

import (
	"errors"
	"fmt"
)

// ErrServerClosed is returned by Start, Listen and Serve after Stop has been called.
var ErrServerClosed = errors.New("coiserve: server closed")

// BindError is returned when the listening address cannot be bound,
// e.g. because the port is in use or the process lacks permission.
type BindError struct {
	Addr string
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("cannot bind %s: %v", e.Addr, e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}

// ConfigError is returned when the server configuration is unusable,
// e.g. the document root does not exist or is not a directory.
type ConfigError struct {
	Field string
	Value string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s '%s': %v", e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
