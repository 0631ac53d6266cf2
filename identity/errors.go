package identity

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by request construction and redirect parsing. Every
// precondition violation is a hard failure naming the offending field; nothing
// is sent to the network once any of these is returned. Match with errors.Is.
var (
	// ErrMissingRequiredValue indicates a field the current grant requires
	// was absent or blank.
	ErrMissingRequiredValue = errors.New("missing required value")

	// ErrConflictingValues indicates two mutually exclusive fields were both
	// set.
	ErrConflictingValues = errors.New("conflicting values")

	// ErrInvalidValue indicates a field was present but not acceptable.
	ErrInvalidValue = errors.New("invalid value")

	// ErrMalformedURL indicates a URL could not be parsed.
	ErrMalformedURL = errors.New("malformed url")

	// ErrMissingRedirectPayload indicates a captured redirect carried neither
	// a query nor a fragment component.
	ErrMissingRedirectPayload = errors.New("missing redirect payload")

	// ErrUpstreamHTTP wraps network failures and error statuses returned by
	// the identity platform. These pass through unchanged, never retried.
	ErrUpstreamHTTP = errors.New("upstream http failure")

	// ErrTimeout indicates the interactive redirect was not captured within
	// the configured deadline.
	ErrTimeout = errors.New("timed out waiting for authorization redirect")
)

// MissingRequiredValue reports that field was required but absent or blank.
func MissingRequiredValue(field string) error {
	return fmt.Errorf("%w: %s", ErrMissingRequiredValue, field)
}

// ConflictingValues reports that fieldA and fieldB must not both be set.
func ConflictingValues(fieldA, fieldB string) error {
	return fmt.Errorf("%w: %s and %s must not both be set", ErrConflictingValues, fieldA, fieldB)
}

// InvalidValue reports that field carried an unacceptable value.
func InvalidValue(field, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidValue, field, reason)
}
