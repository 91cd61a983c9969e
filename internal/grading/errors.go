package grading

import "errors"

// Common errors returned by grading providers.
var (
	// ErrProviderUnavailable is returned when credentials are missing or the
	// provider transport fails. It triggers automatic fallback to the
	// ink-mark heuristic and is never fatal to the request.
	ErrProviderUnavailable = errors.New("grading provider unavailable")

	// ErrUngradeableResponse is returned when the provider responded but no
	// JSON shape could be recovered after the full escalation chain. The raw
	// response is logged for offline diagnosis; the error is not retried.
	ErrUngradeableResponse = errors.New("ungradeable provider response")

	// ErrTruncatedResponse is an internal error raised when the provider
	// stopped at its output budget. It is always retried once with a larger
	// budget before becoming fatal.
	ErrTruncatedResponse = errors.New("provider response truncated")

	// ErrNoExpectedItems is returned when grading is requested with an
	// empty expected-item list.
	ErrNoExpectedItems = errors.New("no expected items to grade")

	// ErrInvalidConfig is returned when the grader configuration is invalid.
	ErrInvalidConfig = errors.New("invalid grader configuration")
)
