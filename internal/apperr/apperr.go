// Package apperr defines the error kinds shared across the sonaris core.
//
// Components wrap one of these sentinels together with the underlying cause, e.g.
//
//	fmt.Errorf("%w: huggingface request failed: %w", apperr.ErrProvider, err)
//
// so callers can branch with errors.Is without depending on provider or device details.
package apperr

import "errors"

var (
	// ErrAuth means a credential is missing or was rejected by the backend.
	ErrAuth = errors.New("authentication error")
	// ErrProvider means a generative backend or the network failed.
	ErrProvider = errors.New("provider error")
	// ErrPermission means access to the capture device was denied.
	ErrPermission = errors.New("permission error")
	// ErrState means the operation is not valid for the current phase or status.
	ErrState = errors.New("state error")
	// ErrBusy means an exclusive resource is already engaged.
	ErrBusy = errors.New("busy")
	// ErrIO means persistence failed.
	ErrIO = errors.New("io error")
	// ErrNotFound means a requested recording does not exist.
	ErrNotFound = errors.New("not found")
)
