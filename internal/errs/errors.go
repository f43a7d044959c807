package errs

import "errors"

// Common sentinel errors for cross-layer signaling.
var (
	ErrNotFound = errors.New("not_found")
	ErrConflict = errors.New("conflict")
	ErrInvalid  = errors.New("invalid")
	// ErrUnprocessable is used for semantic validation failures (HTTP 422)
	ErrUnprocessable = errors.New("unprocessable")
	// ErrNoLines indicates a transaction posted without journal lines
	ErrNoLines = errors.New("no_lines")
	// ErrUnbalanced indicates sum(debits) != sum(credits) across a transaction
	ErrUnbalanced = errors.New("unbalanced_entry")
	// ErrInsufficientStock indicates a sale would drive product quantity negative
	ErrInsufficientStock = errors.New("insufficient_stock")
	// ErrAccountInUse indicates an account referenced by journal entries cannot be deleted
	ErrAccountInUse = errors.New("account_in_use")
	// ErrImmutable indicates an attempt to change immutable fields on a referenced account
	ErrImmutable = errors.New("immutable")
)
