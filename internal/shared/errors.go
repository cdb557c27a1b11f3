package shared

import "errors"

var (
	// ErrInvalidCursor indicates a malformed or tampered pagination token.
	ErrInvalidCursor = errors.New("invalid cursor")
	// ErrUnsupportedEntity indicates an unknown entity kind.
	ErrUnsupportedEntity = errors.New("unsupported entity kind")
	// ErrInvalidRange indicates a date range or bound outside accepted limits.
	ErrInvalidRange = errors.New("invalid range")
	// ErrStoreUnavailable indicates a transient store failure after retries.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrStoreTimeout indicates the bounded wait on the store was exceeded.
	ErrStoreTimeout = errors.New("store timeout")
)

// Retryable reports whether the error is a transient store failure that the
// caller may retry. Validation errors are deterministic and never retryable.
func Retryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable) || errors.Is(err, ErrStoreTimeout)
}
