package pipeline

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrPluginNotFound  = errors.New("plugin not found")
	ErrFactoryNotFound = errors.New("factory not found")
	ErrInvalidModel    = errors.New("invalid pipeline model")
	ErrInvalidCatalog  = errors.New("invalid catalogue")
)

// ResolveError is returned when a FactoryID cannot be resolved against a
// catalogue.
type ResolveError struct {
	ID    FactoryID // The reference that failed to resolve
	Cause error     // ErrPluginNotFound or ErrFactoryNotFound
}

// Error implements the error interface.
func (e *ResolveError) Error() string {
	return fmt.Sprintf("resolve %s: %v", e.ID, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *ResolveError) Unwrap() error {
	return e.Cause
}

// IsNotFound returns true if the error is a resolution miss of either kind.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPluginNotFound) || errors.Is(err, ErrFactoryNotFound)
}
