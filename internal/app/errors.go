package app

import (
	"errors"
	"fmt"
)

// ErrMetricsDisabled indicates no metrics address is configured.
var ErrMetricsDisabled = errors.New("metrics endpoint disabled")

// InitError reports a component that failed to initialize.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("initializing %s: %v", e.Component, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}
