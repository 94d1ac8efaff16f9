package weather

import (
	"errors"
	"fmt"
)

var (
	ErrLocationDisabled    = errors.New("location provider disabled")
	ErrLocationUnavailable = errors.New("last known location unavailable")
	ErrNetworkUnavailable  = errors.New("network unavailable")
	ErrBadRequest          = errors.New("bad request")
	ErrNotFound            = errors.New("not found")
	ErrGenericServerError  = errors.New("generic server error")
	ErrTransport           = errors.New("transport failure")
)

// FailureKind names the reason a pipeline run ended in RequestFailed.
type FailureKind string

const (
	FailureNone                FailureKind = ""
	FailureLocationUnavailable FailureKind = "location_unavailable"
	FailureBadRequest          FailureKind = "bad_request"
	FailureNotFound            FailureKind = "not_found"
	FailureGenericServerError  FailureKind = "generic_server_error"
	FailureTransport           FailureKind = "transport"
	FailurePermissionRequest   FailureKind = "permission_request"
)

// ClientError is returned by weather clients for every failed fetch that
// reached the provider (or tried to).
type ClientError struct {
	Kind       FailureKind
	StatusCode int
	Reason     string
}

func (e *ClientError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("weather client: %s (status %d): %s", e.Kind, e.StatusCode, e.Reason)
	}
	return fmt.Sprintf("weather client: %s: %s", e.Kind, e.Reason)
}

// Unwrap maps the kind back to its sentinel so callers can use errors.Is.
func (e *ClientError) Unwrap() error {
	switch e.Kind {
	case FailureBadRequest:
		return ErrBadRequest
	case FailureNotFound:
		return ErrNotFound
	case FailureTransport:
		return ErrTransport
	default:
		return ErrGenericServerError
	}
}

// ClassifyStatus maps a non-2xx HTTP status to its failure kind.
func ClassifyStatus(status int) FailureKind {
	switch status {
	case 400:
		return FailureBadRequest
	case 404:
		return FailureNotFound
	default:
		return FailureGenericServerError
	}
}

// FailureOf reports the failure kind carried by err, if any.
func FailureOf(err error) FailureKind {
	var ce *ClientError
	switch {
	case errors.As(err, &ce):
		return ce.Kind
	case errors.Is(err, ErrLocationUnavailable):
		return FailureLocationUnavailable
	case errors.Is(err, ErrBadRequest):
		return FailureBadRequest
	case errors.Is(err, ErrNotFound):
		return FailureNotFound
	case errors.Is(err, ErrTransport):
		return FailureTransport
	default:
		return FailureGenericServerError
	}
}
