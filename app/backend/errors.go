package backend

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// sentinel errors for backend responses and transport failures
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrTimeout      = errors.New("backend timeout")
	ErrUnreachable  = errors.New("backend unreachable")
	ErrNoToken      = errors.New("no session token in login response")
)

// ResponseError represents an HTTP error response from the backend.
type ResponseError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *ResponseError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("backend: HTTP %d: %s", e.StatusCode, e.Message)
}

// transportError wraps a failed round trip with ErrTimeout or ErrUnreachable.
func transportError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", ErrUnreachable, err)
}
