package escrow

import "errors"

var (
	// ErrNotFound marks lookups for escrow identifiers that were never
	// assigned.
	ErrNotFound = errors.New("escrow: not found")
	// ErrArbiterNotFound is returned when the designated arbiter is absent
	// from the directory or has been deactivated.
	ErrArbiterNotFound = errors.New("escrow: arbiter not found")
	// ErrDepositNotFound marks refunds where the funding deposit record is
	// missing.
	ErrDepositNotFound = errors.New("escrow: deposit not found")
	// ErrUnauthorized is returned when the caller lacks the role an
	// operation requires.
	ErrUnauthorized = errors.New("escrow: unauthorized")
	// ErrInvalidState is returned when an operation is not valid for the
	// escrow's current status.
	ErrInvalidState = errors.New("escrow: invalid state")
	// ErrInvalidParams marks malformed or out-of-range inputs.
	ErrInvalidParams = errors.New("escrow: invalid parameters")
	// ErrAlreadyFunded is returned on a second funding attempt.
	ErrAlreadyFunded = errors.New("escrow: already funded")
	// ErrInsufficientFunds is returned when the fee split would exceed the
	// funded principal. No transfer is attempted in that case.
	ErrInsufficientFunds = errors.New("escrow: insufficient funds")
	// ErrExpired is returned when an operation requires an unexpired escrow.
	ErrExpired = errors.New("escrow: expired")
	// ErrTransferFailed is returned when the underlying value-movement
	// primitive declines; the whole enclosing operation is aborted.
	ErrTransferFailed = errors.New("escrow: transfer failed")
	// ErrInvalidPercentage marks dispute splits outside [0, 10000] bps.
	ErrInvalidPercentage = errors.New("escrow: percentage out of range")
)
