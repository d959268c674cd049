package ssrwatch

import (
	"context"
	"errors"
)

// Sentinel errors, one per class of fatal condition.
var (
	// ErrEnvironment covers missing tools, privileged identity, bad config and bad positions files.
	ErrEnvironment = errors.New("environment error")
	// ErrTransport covers timeouts, connection failures and non-success HTTP statuses.
	ErrTransport = errors.New("cannot download SSR list")
	// ErrEmptyList is returned when the download succeeded but carried no content.
	ErrEmptyList = errors.New("SSR list is empty")
	// ErrRateLimited is returned when the upstream served a denial page instead of the list.
	ErrRateLimited = errors.New("could not pull SSR list, likely rate-limited")
	// ErrDelivery is returned when a notification email could not be submitted.
	ErrDelivery = errors.New("cannot deliver notification")
)

// Reason returns a short label for the class of err, for logs and metrics.
func Reason(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	case errors.Is(err, ErrEnvironment):
		return "environment"
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrEmptyList):
		return "empty"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrDelivery):
		return "delivery"
	default:
		return "other"
	}
}
