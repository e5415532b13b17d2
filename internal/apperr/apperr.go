// Package apperr holds the error kinds shared by repositories, services and handlers.
// Errors are wrapped with fmt.Errorf("...: %w", apperr.ErrX) and inspected with errors.Is.
package apperr

import "errors"

var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrDuplicateDeck      = errors.New("deck name already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token expired")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("concurrent modification")
	ErrUpstream           = errors.New("upstream service failure")
	ErrStore              = errors.New("store failure")
)

// Kind returns the taxonomy sentinel err wraps, or nil if it wraps none.
func Kind(err error) error {
	for _, kind := range []error{
		ErrValidation,
		ErrDuplicateEmail,
		ErrDuplicateDeck,
		ErrInvalidCredentials,
		ErrInvalidToken,
		ErrExpiredToken,
		ErrNotFound,
		ErrConflict,
		ErrUpstream,
		ErrStore,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
