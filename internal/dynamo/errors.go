package dynamo

import (
	"errors"
	"fmt"
)

// Precondition errors for tree mutation. The tree is left untouched when one is returned.
var (
	// ErrAlreadyCaptured indicates an attempt to capture a body that already has a parent.
	ErrAlreadyCaptured = errors.New("dynamo: body is already captured")

	// ErrSelfCapture indicates an attempt to capture a body into itself.
	ErrSelfCapture = errors.New("dynamo: body cannot capture itself")

	// ErrCycle indicates that the capture would make a body its own ancestor.
	ErrCycle = errors.New("dynamo: capture would create a cycle")

	// ErrNotChild indicates an attempt to release a body that is not a direct sub-body.
	ErrNotChild = errors.New("dynamo: body is not a sub-body")
)

// CaptureError wraps a capture precondition failure with the bodies involved.
type CaptureError struct {
	Head    string
	Part    string
	Wrapped error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("capture %q into %q: %v", e.Part, e.Head, e.Wrapped)
}

func (e *CaptureError) Unwrap() error {
	return e.Wrapped
}

// ReleaseError wraps a release precondition failure with the bodies involved.
type ReleaseError struct {
	Head    string
	Part    string
	Wrapped error
}

func (e *ReleaseError) Error() string {
	return fmt.Sprintf("release %q from %q: %v", e.Part, e.Head, e.Wrapped)
}

func (e *ReleaseError) Unwrap() error {
	return e.Wrapped
}
