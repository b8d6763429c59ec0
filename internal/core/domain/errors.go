package domain

import "errors"

// ErrorKind classifies a domain error so transports can map it without
// knowing every sentinel.
type ErrorKind string

const (
	KindNotFound           ErrorKind = "not_found"
	KindUnavailable        ErrorKind = "unavailable"
	KindInvalidCredentials ErrorKind = "invalid_credentials"
	KindConflict           ErrorKind = "conflict"
	KindInvalid            ErrorKind = "invalid"
	KindStoreFailure       ErrorKind = "store_failure"
)

// Error is a caller-visible failure with a kind and a human-readable reason.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string { return e.Message }

var (
	ErrBookNotFound         = &Error{Kind: KindNotFound, Message: "book not found"}
	ErrUserNotFound         = &Error{Kind: KindNotFound, Message: "user not found"}
	ErrLoanNotFound         = &Error{Kind: KindNotFound, Message: "loan not found"}
	ErrBookUnavailable      = &Error{Kind: KindUnavailable, Message: "book not available"}
	ErrInvalidCredentials   = &Error{Kind: KindInvalidCredentials, Message: "invalid credentials"}
	ErrLoanAlreadyReturned  = &Error{Kind: KindConflict, Message: "loan already returned"}
	ErrDuplicateISBN        = &Error{Kind: KindConflict, Message: "a book with this isbn already exists"}
	ErrUserExists           = &Error{Kind: KindConflict, Message: "user already exists"}
	ErrCopiesOnLoan         = &Error{Kind: KindConflict, Message: "total copies cannot drop below copies on loan"}
	ErrIdempotencyKeyReused = &Error{Kind: KindConflict, Message: "idempotency key was used for a different request"}
	ErrIdempotencyInFlight  = &Error{Kind: KindConflict, Message: "a request with this idempotency key is still in progress"}
	ErrInvalidDueDate       = &Error{Kind: KindInvalid, Message: "due date must be in the future"}
	ErrInvalidRole          = &Error{Kind: KindInvalid, Message: "role must be admin or student"}
	ErrInvalidLoanStatus    = &Error{Kind: KindInvalid, Message: "status must be active, returned or overdue"}
	ErrInvalidCopies        = &Error{Kind: KindInvalid, Message: "total copies cannot be negative"}
	ErrInvalidBook          = &Error{Kind: KindInvalid, Message: "title, author and isbn are required"}
	ErrInvalidUser          = &Error{Kind: KindInvalid, Message: "username and password are required"}

	// ErrStoreFailure wraps every underlying database or broker error.
	// Repositories join it with the cause: fmt.Errorf("%w: op: %w", ErrStoreFailure, err).
	ErrStoreFailure = &Error{Kind: KindStoreFailure, Message: "store failure"}
)

// KindOf returns the kind of the first domain error in err's chain.
// Errors that carry no kind are reported as store failures.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindStoreFailure
}
