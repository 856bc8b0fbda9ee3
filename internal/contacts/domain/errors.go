package domain

import "errors"

var (
	// ErrValidation reports a blank name or a malformed email.
	ErrValidation = errors.New("invalid contact")
	// ErrDuplicateEmail reports an email already held by another contact of the owner.
	ErrDuplicateEmail = errors.New("duplicate contact email")
	// ErrLimitExceeded reports an owner already at the per-owner maximum.
	ErrLimitExceeded = errors.New("contact limit reached")
	// ErrNotFound reports an unknown contact id for the owner.
	ErrNotFound = errors.New("contact not found")
	// ErrPersistence reports a failure to read or write the backing store.
	ErrPersistence = errors.New("contact store unavailable")
)
