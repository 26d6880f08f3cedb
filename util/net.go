package util

import (
	"errors"
	"io"
	"net"
)

// IsNetworkClosed checks if the given error tells closing of network connection
func IsNetworkClosed(err error) bool {
	if errors.Is(err, io.EOF) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Err.Error() == "use of closed network connection"
	}
	return false
}

// IsNetworkTimeout checks if the given error is network timeout
func IsNetworkTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// IsNetworkError checks if the given error comes from network I/O rather than local logic
func IsNetworkError(err error) bool {
	var opErr *net.OpError
	return errors.Is(err, io.EOF) || errors.As(err, &opErr)
}
