package provider

import (
	"errors"
	"net"
	"strings"
)

// retryableStatus reports whether an HTTP status code from the transport
// warrants an in-provider retry: 429, 500, 502, 503 and 504. Other 5xx
// codes are not retried.
func retryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

// retryableNetworkError reports whether err looks like a transport-level
// failure (connection reset, timeout, DNS) rather than a decoded API error.
func retryableNetworkError(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return false
}

// quarantineWorthy reports whether err's text matches one of the fallback
// chain's three quarantine triggers. Matching is deliberately on the
// error's rendered text, not a status code, because providers in the
// chain may not always surface a structured status.
func quarantineWorthy(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "rate limit")
}
