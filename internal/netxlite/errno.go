package netxlite

import (
	"errors"
	"syscall"
)

// errnoFailures maps the system call errors a probe may observe to
// failure strings. The syscall package defines these values on every
// platform we build for (on Windows they are invented values that the
// runtime maps WSA errors to).
var errnoFailures = []struct {
	errno   syscall.Errno
	failure string
}{
	{syscall.ECONNREFUSED, FailureConnectionRefused},
	{syscall.ECONNRESET, FailureConnectionReset},
	{syscall.ECONNABORTED, FailureConnectionAborted},
	{syscall.EHOSTUNREACH, FailureHostUnreachable},
	{syscall.ENETUNREACH, FailureNetworkUnreachable},
	{syscall.ENETDOWN, FailureNetworkDown},
	{syscall.EHOSTDOWN, FailureHostDown},
	{syscall.EADDRNOTAVAIL, FailureAddressNotAvailable},
	{syscall.EACCES, FailurePermissionDenied},
	{syscall.EPERM, FailurePermissionDenied},
	{syscall.ETIMEDOUT, FailureTimedOut},
}

// classifySyscallError returns the failure string of a system call
// error or the empty string if err is not a known system call error.
func classifySyscallError(err error) string {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return ""
	}
	for _, entry := range errnoFailures {
		if errno == entry.errno {
			return entry.failure
		}
	}
	return ""
}
