package domain

import "errors"

var (
	// ErrNotFound means no link exists for the given code or id.
	ErrNotFound = errors.New("link not found")
	// ErrCodeTaken is returned by the repository when a short code collides
	// with an existing row. The service retries allocation; it is never
	// surfaced to callers.
	ErrCodeTaken = errors.New("short code already exists")
	// ErrCodeExhausted means the allocation retry budget ran out.
	ErrCodeExhausted = errors.New("could not allocate a unique short code")

	ErrEmptyDestination = errors.New("destination is required")
	ErrInvalidURL       = errors.New("destination is not a valid url")
	ErrInvalidFormat    = errors.New("image format must be png or svg")
)

// IsNotFound reports whether err is a not-found condition.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsConflict reports whether err indicates a short-code uniqueness conflict.
func IsConflict(err error) bool { return errors.Is(err, ErrCodeTaken) }

// IsValidation reports whether err was caused by bad caller input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrEmptyDestination) ||
		errors.Is(err, ErrInvalidURL) ||
		errors.Is(err, ErrInvalidFormat)
}
