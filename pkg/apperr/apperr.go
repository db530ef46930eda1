package apperr

import "errors"

// Sentinel error kinds shared by the service layer. Services wrap them with
// fmt.Errorf("%w: ...") so callers can branch with errors.Is while keeping
// the human-readable detail.
var (
	// ErrValidation marks a missing or invalid required field.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks an unknown license/order/customer/purchase id.
	ErrNotFound = errors.New("record not found")
	// ErrConflict marks an illegal state transition or duplicate key.
	ErrConflict = errors.New("conflict")
	// ErrIntegrity marks a failed verification (bad MAC, malformed or
	// expired offline code).
	ErrIntegrity = errors.New("integrity check failed")
	// ErrUnauthorized marks an actor lacking the role for the operation.
	ErrUnauthorized = errors.New("unauthorized")
)

func IsValidation(err error) bool   { return errors.Is(err, ErrValidation) }
func IsNotFound(err error) bool     { return errors.Is(err, ErrNotFound) }
func IsConflict(err error) bool     { return errors.Is(err, ErrConflict) }
func IsIntegrity(err error) bool    { return errors.Is(err, ErrIntegrity) }
func IsUnauthorized(err error) bool { return errors.Is(err, ErrUnauthorized) }
