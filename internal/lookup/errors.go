package lookup

import (
	"errors"
	"fmt"
)

// FailureKind classifies a failed lookup. Every kind is terminal for the
// call that produced it; nothing is retried internally.
type FailureKind string

const (
	KindCityNotFound               FailureKind = "city_not_found"
	KindLocationServiceUnavailable FailureKind = "location_service_unavailable"
	KindWeatherServiceUnavailable  FailureKind = "weather_service_unavailable"
	KindNetworkUnreachable         FailureKind = "network_unreachable"
)

// Error carries a message safe to render (or speak) to the end user.
// The underlying cause is kept for logs via Unwrap but never leaks into
// Error().
type Error struct {
	Kind    FailureKind
	Message string
	cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

func newCityNotFound(city string) *Error {
	return &Error{
		Kind:    KindCityNotFound,
		Message: fmt.Sprintf("I couldn't find a city called '%s'. Please check the spelling or try another city.", city),
	}
}

func newLocationServiceUnavailable(cause error) *Error {
	return &Error{
		Kind:    KindLocationServiceUnavailable,
		Message: "The location service is temporarily unavailable. Please try again later.",
		cause:   cause,
	}
}

func newWeatherServiceUnavailable(cause error) *Error {
	return &Error{
		Kind:    KindWeatherServiceUnavailable,
		Message: "The weather service is temporarily unavailable. Please try again later.",
		cause:   cause,
	}
}

func newNetworkUnreachable(cause error) *Error {
	return &Error{
		Kind:    KindNetworkUnreachable,
		Message: "Unable to connect to the weather service. Please check your internet connection and try again.",
		cause:   cause,
	}
}

// KindOf returns the failure kind of err, or "" when err is not a lookup
// failure.
func KindOf(err error) FailureKind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return ""
}
