package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorKind classifies an APIError for retry/handling decisions.
type ErrorKind string

const (
	// KindConfig: missing or invalid connector configuration. Not retryable.
	KindConfig ErrorKind = "config"
	// KindNotFound: no connector stored under the requested id.
	KindNotFound ErrorKind = "not_found"
	// KindAuth: token acquisition exhausted all strategies.
	KindAuth ErrorKind = "auth"
	// KindTransport: network or connection failure. Caller may retry later.
	KindTransport ErrorKind = "transport"
	// KindVendor: non-2xx response with a vendor-supplied code/message.
	KindVendor ErrorKind = "vendor"
	// KindResponseShape: a successful response whose body could not be
	// interpreted as the requested shape. A contract error, not transient.
	KindResponseShape ErrorKind = "response_shape"
	// KindPersistence: a token was obtained but could not be persisted.
	// Fatal for the call to avoid masking cached-state drift.
	KindPersistence ErrorKind = "persistence"
)

// APIError is the uniform error carrier propagated to all callers. Raw
// transport errors never cross a component boundary.
type APIError struct {
	Kind       ErrorKind
	StatusCode int    // 0 for transport-level failures
	ErrorID    string // vendor-defined symbolic code, if any
	Message    string
	Detail     string
	Raw        []byte // opaque vendor payload, for diagnostics
	Cause      error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (%s %d)", e.Message, e.Kind, e.StatusCode)
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Kind)
}

func (e *APIError) Unwrap() error { return e.Cause }

// IsKind reports whether err is an APIError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Kind == kind
}

// AsAPIError normalizes any error into an APIError, wrapping unknown
// errors as transport failures.
func AsAPIError(err error) *APIError {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae
	}
	return &APIError{Kind: KindTransport, Message: err.Error(), Cause: err}
}

func NewConfigError(msg string) *APIError {
	return &APIError{Kind: KindConfig, Message: msg}
}

func NewNotFoundError(id string) *APIError {
	return &APIError{Kind: KindNotFound, Message: fmt.Sprintf("connector %s not found", id)}
}

func NewAuthError(msg string, cause error) *APIError {
	return &APIError{Kind: KindAuth, Message: msg, Cause: cause}
}

func NewTransportError(msg string, cause error) *APIError {
	return &APIError{Kind: KindTransport, Message: msg, Cause: cause}
}

func NewPersistenceError(msg string, cause error) *APIError {
	return &APIError{Kind: KindPersistence, Message: msg, Cause: cause}
}

// VendorErrorBody is the vendor's error envelope. ErrorID values in the
// auth class ("sessionExpired", "unauthorized") trigger the dispatcher's
// one-shot token refresh.
type VendorErrorBody struct {
	ErrorID     string `json:"errorId,omitempty"`
	ErrorString string `json:"errorString,omitempty"`
}

// NewVendorError builds the carrier for a non-2xx vendor response,
// extracting the symbolic code and message when the body parses.
func NewVendorError(statusCode int, body []byte) *APIError {
	var vb VendorErrorBody
	_ = json.Unmarshal(body, &vb)
	msg := vb.ErrorString
	if msg == "" {
		msg = fmt.Sprintf("vendor returned status %d", statusCode)
	}
	return &APIError{
		Kind:       KindVendor,
		StatusCode: statusCode,
		ErrorID:    vb.ErrorID,
		Message:    msg,
		Raw:        body,
	}
}

// IsAuthFailure reports whether err is a vendor response that the
// dispatcher may heal with a forced token refresh: HTTP 401 or an
// auth-class symbolic code.
func IsAuthFailure(err error) bool {
	var ae *APIError
	if !errors.As(err, &ae) || ae.Kind != KindVendor {
		return false
	}
	if ae.StatusCode == 401 {
		return true
	}
	switch ae.ErrorID {
	case "sessionExpired", "unauthorized":
		return true
	}
	return false
}
