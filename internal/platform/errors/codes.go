// Package errors provides structured error handling with HTTP status mapping.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// CodeUnauthenticated indicates the request carries no valid session.
	CodeUnauthenticated Code = "UNAUTHENTICATED"

	// CodeInvalidArgument indicates request input failed validation.
	CodeInvalidArgument Code = "INVALID_ARGUMENT"

	// CodePermissionDenied indicates the principal does not own the record.
	CodePermissionDenied Code = "PERMISSION_DENIED"

	// CodeNotFound indicates no matching record exists for the principal.
	CodeNotFound Code = "NOT_FOUND"

	// CodeInternal indicates a data-layer or infrastructure failure.
	CodeInternal Code = "INTERNAL"
)

// HTTPStatus maps the error code to an HTTP status code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeInvalidArgument:
		return http.StatusBadRequest
	case CodePermissionDenied:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
