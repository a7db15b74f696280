package weather

import "errors"

// Input validation errors. These are reported immediately and never retried.
var (
	ErrEmptyQuery         = errors.New("please enter a city or region name")
	ErrQueryTooShort      = errors.New("city name must be at least 2 characters")
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

// Fetch errors. A lookup that fails with one of these is retried.
var (
	ErrLocationNotFound = errors.New("location not found")
	ErrRateLimited      = errors.New("rate limited by weather provider")
	ErrUnauthorized     = errors.New("weather provider rejected credentials")
	ErrUpstream         = errors.New("weather provider unavailable")
	ErrMalformedPayload = errors.New("malformed weather payload")
)

// ErrPermissionDenied is returned when the user refuses geolocation or
// notification access. It is surfaced immediately.
var ErrPermissionDenied = errors.New("permission denied")

// IsValidationError reports whether err stems from bad user input.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrEmptyQuery) ||
		errors.Is(err, ErrQueryTooShort) ||
		errors.Is(err, ErrInvalidCoordinates)
}

// IsRetryable reports whether a lookup failing with err may be attempted again.
func IsRetryable(err error) bool {
	return err != nil && !IsValidationError(err) && !errors.Is(err, ErrPermissionDenied)
}
