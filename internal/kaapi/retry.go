package kaapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"
)

// SleepWithContext blocks for d, returning early if ctx is cancelled.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsRetriable reports whether err is a transient condition worth another
// attempt: rate limiting, server errors, timeouts, and dropped connections.
func IsRetriable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var status *StatusError
	if errors.As(err, &status) {
		return status.StatusCode == http.StatusTooManyRequests || status.StatusCode >= 500
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	message := strings.ToLower(err.Error())
	for _, token := range []string{
		"timeout",
		"connection reset",
		"connection refused",
		"temporary failure",
		"eof",
	} {
		if strings.Contains(message, token) {
			return true
		}
	}
	return false
}
