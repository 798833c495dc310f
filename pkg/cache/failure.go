package cache

import (
	"context"
	"encoding/json"
	"errors"
	"net"
)

// FailureKind classifies expected cache failures so call sites can log a
// stable tag instead of raw error strings.
type FailureKind string

const (
	// FailureUnavailable covers connection refusals, broken pipes and
	// every other store-side error that is not a timeout.
	FailureUnavailable FailureKind = "unavailable"

	// FailureTimeout covers deadline and network timeouts.
	FailureTimeout FailureKind = "timeout"

	// FailureSerialization covers values that cannot be encoded to or
	// decoded from JSON.
	FailureSerialization FailureKind = "serialization_failed"
)

// KindOf maps an error to its failure kind. Nil errors map to the empty
// kind.
func KindOf(err error) FailureKind {
	if err == nil {
		return ""
	}

	var jsonSyntax *json.SyntaxError
	var jsonType *json.UnmarshalTypeError
	var jsonMarshaler *json.MarshalerError
	var jsonUnsupportedType *json.UnsupportedTypeError
	var jsonUnsupportedValue *json.UnsupportedValueError
	if errors.As(err, &jsonSyntax) || errors.As(err, &jsonType) ||
		errors.As(err, &jsonMarshaler) || errors.As(err, &jsonUnsupportedType) ||
		errors.As(err, &jsonUnsupportedValue) {
		return FailureSerialization
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTimeout
	}

	return FailureUnavailable
}
