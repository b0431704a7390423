// Package enum defines enumerations shared across packages.
// ErrorKind and AuditResult keep snake_case wire values, the rest are generated with go-pkgz/enum.
package enum

import (
	"fmt"
)

// ErrorKind classifies a failed proxy result.
type ErrorKind string

// error kinds, see KindForStatus for the http status mapping
const (
	ErrorKindNone               ErrorKind = ""
	ErrorKindUnauthorized       ErrorKind = "unauthorized"
	ErrorKindForbidden          ErrorKind = "forbidden"
	ErrorKindNotFound           ErrorKind = "not_found"
	ErrorKindBadRequest         ErrorKind = "bad_request"
	ErrorKindValidation         ErrorKind = "validation"
	ErrorKindConflict           ErrorKind = "conflict"
	ErrorKindRateLimited        ErrorKind = "rate_limited"
	ErrorKindUnsupportedMedia   ErrorKind = "unsupported_media"
	ErrorKindBackendError       ErrorKind = "backend_error"
	ErrorKindBackendUnreachable ErrorKind = "backend_unreachable"
	ErrorKindTimeout            ErrorKind = "timeout"
)

// String returns the kind name.
func (k ErrorKind) String() string { return string(k) }

// KindForStatus maps a backend http status to an error kind.
// Returns ErrorKindNone for non-error statuses.
func KindForStatus(status int) ErrorKind {
	switch {
	case status < 400:
		return ErrorKindNone
	case status == 401:
		return ErrorKindUnauthorized
	case status == 403:
		return ErrorKindForbidden
	case status == 404:
		return ErrorKindNotFound
	case status == 409:
		return ErrorKindConflict
	case status == 415:
		return ErrorKindUnsupportedMedia
	case status == 422:
		return ErrorKindValidation
	case status == 429:
		return ErrorKindRateLimited
	case status == 504:
		return ErrorKindTimeout
	case status < 500:
		return ErrorKindBadRequest
	default:
		return ErrorKindBackendError
	}
}

// AuditResult is the outcome recorded in the audit trail.
type AuditResult string

// audit results
const (
	AuditResultSuccess     AuditResult = "success"
	AuditResultDenied      AuditResult = "denied"
	AuditResultNotFound    AuditResult = "not_found"
	AuditResultFailed      AuditResult = "failed"
	AuditResultUnavailable AuditResult = "unavailable"
)

// String returns the result name.
func (a AuditResult) String() string { return string(a) }

// ParseAuditResult parses an audit result.
func ParseAuditResult(s string) (AuditResult, error) {
	for _, v := range []AuditResult{AuditResultSuccess, AuditResultDenied, AuditResultNotFound, AuditResultFailed, AuditResultUnavailable} {
		if s == string(v) {
			return v, nil
		}
	}
	return "", fmt.Errorf("invalid audit result %q", s)
}
