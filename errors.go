package hxbind

import "errors"

// Sentinel errors for container operations.
var (
	// ErrConfig indicates a container's declarative configuration is invalid
	// (for example a missing hb-program attribute). Initialization of that
	// container is aborted; sibling containers are unaffected.
	ErrConfig = errors.New("hxbind: invalid container configuration")

	// ErrTemplate indicates a container has no capturable template child.
	// The container is skipped and logged; no retries occur.
	ErrTemplate = errors.New("hxbind: template capture failed")

	// ErrProvider indicates the data provider failed after the retry policy
	// exhausted its attempts. The container enters the error state.
	ErrProvider = errors.New("hxbind: provider request failed")

	// ErrExhausted indicates a load was requested past the last available
	// page. Not surfaced to the host; filter changes clear it.
	ErrExhausted = errors.New("hxbind: no further pages")

	// ErrInvalidFormat indicates a state token that could not be decoded.
	ErrInvalidFormat = errors.New("hxbind: invalid state token format")

	// ErrSignatureInvalid indicates a state token whose signature did not
	// verify.
	ErrSignatureInvalid = errors.New("hxbind: state token signature verification failed")
)

// IsConfigError checks if err is a container configuration error.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfig)
}

// IsTemplateError checks if err is a template capture error.
func IsTemplateError(err error) bool {
	return errors.Is(err, ErrTemplate)
}

// IsProviderError checks if err is a terminal provider error.
func IsProviderError(err error) bool {
	return errors.Is(err, ErrProvider)
}

// IsTokenError checks if err is a state token decode or signature error.
func IsTokenError(err error) bool {
	return errors.Is(err, ErrInvalidFormat) || errors.Is(err, ErrSignatureInvalid)
}
