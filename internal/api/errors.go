package api

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"
	"syscall"
)

// describeTransportError turns a failed round trip into a message a user
// can act on.
func describeTransportError(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return "Request timed out - the analysis server took too long to answer"
	}
	if errors.Is(err, context.Canceled) {
		return "Request cancelled"
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return "Request timed out - the analysis server took too long to answer"
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		var errno syscall.Errno
		if errors.As(opErr.Err, &errno) {
			switch errno {
			case syscall.ECONNREFUSED:
				return "Connection refused - check that the analysis server is running and the base URL is correct"
			case syscall.ECONNRESET:
				return "Connection reset by server"
			case syscall.ENETUNREACH, syscall.EHOSTUNREACH:
				return "Network unreachable - check your network connection"
			}
		}
	}

	return describeTransportMessage(err.Error())
}

// describeTransportMessage is the string-based fallback used when the
// error chain carries no typed cause.
func describeTransportMessage(msg string) string {
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(lower, "deadline exceeded") || strings.Contains(lower, "timeout"):
		return "Request timed out - the analysis server took too long to answer"
	case strings.Contains(lower, "no such host") || strings.Contains(lower, "dial tcp: lookup"):
		return "DNS resolution failed - verify the base URL hostname"
	case strings.Contains(lower, "connection refused"):
		return "Connection refused - check that the analysis server is running and the base URL is correct"
	case strings.Contains(lower, "connection reset"):
		return "Connection reset by server"
	case strings.Contains(lower, "x509") || strings.Contains(lower, "certificate") || strings.Contains(lower, "tls"):
		return "TLS error - the server certificate could not be verified: " + msg
	case strings.Contains(lower, "unsupported protocol") || strings.Contains(lower, "invalid url"):
		return "Invalid base URL - use http:// or https://"
	case strings.Contains(lower, "eof"):
		return "Connection closed unexpectedly by the server"
	}

	return "Request failed: " + msg
}
