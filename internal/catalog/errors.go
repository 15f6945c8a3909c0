package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownDimension is returned when a filter names a dimension the schema does not declare.
	ErrUnknownDimension = errors.New("catalog: unknown filter dimension")
	// ErrInvalidFilter is returned when a dimension value cannot be interpreted (e.g. a non-numeric decade).
	ErrInvalidFilter = errors.New("catalog: invalid filter value")
	// ErrUnknownSort is returned for a sort mode the schema does not declare.
	ErrUnknownSort = errors.New("catalog: unknown sort mode")
	// ErrUnknownResource is returned by the registry for unregistered resource names.
	ErrUnknownResource = errors.New("catalog: unknown resource")
	// ErrUnavailable wraps a failed or discarded collection fetch.
	ErrUnavailable = errors.New("catalog: collection unavailable")
	// ErrNotLoaded is returned when an operation needs the collection before the fetch settled.
	ErrNotLoaded = errors.New("catalog: collection still loading")
	// ErrUnmounted is returned by a screen after Unmount.
	ErrUnmounted = errors.New("catalog: screen unmounted")
)

// ErrNotFound reports a missing record within a resource.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}
