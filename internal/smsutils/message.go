// Package smsutils classifies inbound SMS text into ride intents.
package smsutils

import (
	"fmt"

	"sms-ride-workers/internal/common/gmaps"
)

// Kind is the intent a message was classified as.
type Kind string

const (
	KindRideRequest Kind = "ride_request"
	KindYes         Kind = "yes"
	KindNo          Kind = "no"
	KindCancel      Kind = "cancel"
	KindUnknown     Kind = "unknown"
)

// RideRequestParams holds the first geocode match for each endpoint.
type RideRequestParams struct {
	From gmaps.Result `json:"from"`
	To   gmaps.Result `json:"to"`
}

// Intent is the classifier's output. Params is set only for KindRideRequest.
type Intent struct {
	Kind   Kind               `json:"type"`
	Params *RideRequestParams `json:"params,omitempty"`
}

func newIntent(kind Kind) *Intent {
	return &Intent{Kind: kind}
}

func newRideRequest(from, to gmaps.Result) *Intent {
	return &Intent{
		Kind:   KindRideRequest,
		Params: &RideRequestParams{From: from, To: to},
	}
}

// ErrorKind classifies why a ride request could not be resolved.
type ErrorKind string

const (
	ZeroResults        ErrorKind = "zero_results"
	ServiceUnavailable ErrorKind = "service_unavailable"
)

// ClassificationError is returned when a well-formed ride request fails
// geocoding. Err holds the underlying lookup failures.
type ClassificationError struct {
	Kind ErrorKind
	Err  error
}

var (
	ErrZeroResults        = &ClassificationError{Kind: ZeroResults}
	ErrServiceUnavailable = &ClassificationError{Kind: ServiceUnavailable}
)

func (e *ClassificationError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *ClassificationError) Unwrap() error {
	return e.Err
}

// Is matches any ClassificationError of the same kind, so
// errors.Is(err, ErrZeroResults) works on wrapped results.
func (e *ClassificationError) Is(target error) bool {
	t, ok := target.(*ClassificationError)
	return ok && t.Kind == e.Kind
}
