package domain

import (
	"errors"
	"fmt"
)

// Error categories. Every validation failure wraps exactly one of them, so
// transports can classify with errors.Is without listing each concrete error.
var (
	// ErrInvalidArgument marks input that is present but unacceptable.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrMissingArgument marks a required input that was not supplied.
	ErrMissingArgument = errors.New("missing argument")

	// ErrNotFound marks a reference to an entity that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInsufficientPayment marks an attached payment below the product price.
	ErrInsufficientPayment = errors.New("insufficient payment")

	// ErrPermissionDenied marks a call the caller is not allowed to make.
	ErrPermissionDenied = errors.New("permission denied")
)

// Product errors
var (
	ErrEmptyProductName = fmt.Errorf("%w: product name cannot be empty", ErrInvalidArgument)
	ErrZeroPrice        = fmt.Errorf("%w: price must be greater than 0", ErrInvalidArgument)
	ErrProductNotFound  = fmt.Errorf("product %w", ErrNotFound)
)

// Order errors
var (
	ErrMissingProductID = fmt.Errorf("%w: product id is required", ErrMissingArgument)
	ErrOrderNotFound    = fmt.Errorf("order %w", ErrNotFound)
	ErrMissingOrderID   = fmt.Errorf("%w: order id is required", ErrMissingArgument)
)

// ErrMissingCaller is returned when the host did not identify the caller.
var ErrMissingCaller = fmt.Errorf("%w: caller account is required", ErrMissingArgument)

// ErrPrivateCallback is returned when anyone but the service itself invokes a settlement callback.
var ErrPrivateCallback = fmt.Errorf("%w: callback may only be invoked by the service account", ErrPermissionDenied)
