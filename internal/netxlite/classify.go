package netxlite

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ClassifyGenericError maps an error occurred during an operation
// to a failure string. This specific classifier is the most
// generic one. You usually use it when mapping I/O errors. You should
// check whether there is a specific classifier for more specific
// operations (e.g., DNS resolution, ICMP echo).
//
// If the input error is an *ErrWrapper we don't perform
// the classification again and we return its Failure.
//
// If everything else fails, this classifier returns a string
// like "unknown_failure: XXX" where XXX is the original error text.
func ClassifyGenericError(err error) string {
	var errwrapper *ErrWrapper
	if errors.As(err, &errwrapper) {
		return errwrapper.Error() // we've already wrapped it
	}

	// Classify system errors first. Matching strings would
	// not work on Windows where the messages are different.
	if failure := classifySyscallError(err); failure != "" {
		return failure
	}

	if errors.Is(err, context.Canceled) {
		return FailureInterrupted
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return FailureGenericTimeoutError
	}

	if failure := classifyWithStringSuffix(err); failure != "" {
		return failure
	}

	return fmt.Sprintf("unknown_failure: %s", err.Error())
}

// classifyWithStringSuffix is a subset of ClassifyGenericError that
// performs classification by looking at error suffixes. This function
// will return an empty string if it cannot classify the error.
func classifyWithStringSuffix(err error) string {
	s := err.Error()
	if strings.HasSuffix(s, "operation was canceled") {
		return FailureInterrupted
	}
	if strings.HasSuffix(s, "EOF") {
		return FailureEOFError
	}
	if strings.HasSuffix(s, "context deadline exceeded") {
		return FailureGenericTimeoutError
	}
	if strings.HasSuffix(s, "i/o timeout") {
		return FailureGenericTimeoutError
	}
	if strings.HasSuffix(s, "TLS handshake timeout") {
		return FailureGenericTimeoutError
	}
	if strings.HasSuffix(s, DNSNoSuchHostSuffix) {
		return FailureDNSNXDOMAINError
	}
	if strings.HasSuffix(s, DNSServerMisbehavingSuffix) {
		return FailureDNSServerMisbehaving
	}
	if strings.HasSuffix(s, DNSNoAnswerSuffix) {
		return FailureDNSNoAnswer
	}
	if strings.HasSuffix(s, "use of closed network connection") {
		return FailureConnectionAlreadyClosed
	}
	return "" // not found
}

// We use these strings to string-match errors in the standard library
// and map such errors to failure strings.
const (
	DNSNoSuchHostSuffix        = "no such host"
	DNSServerMisbehavingSuffix = "server misbehaving"
	DNSNoAnswerSuffix          = "no answer from DNS server"
)

// These errors are returned by the DNS-over-UDP resolver. Their suffix
// matches the equivalent unexported errors of the standard library.
var (
	ErrOODNSNoSuchHost  = fmt.Errorf("safenet resolver: %s", DNSNoSuchHostSuffix)
	ErrOODNSRefused     = errors.New("safenet resolver: refused")
	ErrOODNSMisbehaving = fmt.Errorf("safenet resolver: %s", DNSServerMisbehavingSuffix)
	ErrOODNSNoAnswer    = fmt.Errorf("safenet resolver: %s", DNSNoAnswerSuffix)
)

// ClassifyResolverError maps DNS resolution errors to failure strings.
//
// If this classifier fails, it calls ClassifyGenericError and
// returns to the caller its return value.
func ClassifyResolverError(err error) string {
	var errwrapper *ErrWrapper
	if errors.As(err, &errwrapper) {
		return errwrapper.Error() // we've already wrapped it
	}
	if errors.Is(err, ErrOODNSRefused) {
		return FailureDNSRefusedError
	}
	return ClassifyGenericError(err)
}

// These errors are returned by the ICMP echo code when the reply
// is not an echo reply matching the request we sent.
var (
	ErrICMPDestinationUnreachable = errors.New("icmp: destination unreachable")
	ErrICMPTTLExceeded            = errors.New("icmp: time exceeded")
	ErrICMPProtocol               = errors.New("icmp: protocol error")
)

// ClassifyICMPError maps errors occurring while exchanging
// ICMP echo messages to failure strings.
//
// If this classifier fails, it calls ClassifyGenericError and
// returns to the caller its return value.
func ClassifyICMPError(err error) string {
	var errwrapper *ErrWrapper
	if errors.As(err, &errwrapper) {
		return errwrapper.Error() // we've already wrapped it
	}
	if errors.Is(err, ErrICMPDestinationUnreachable) {
		return FailureICMPDestinationUnreachable
	}
	if errors.Is(err, ErrICMPTTLExceeded) {
		return FailureICMPTTLExceeded
	}
	if errors.Is(err, ErrICMPProtocol) {
		return FailureICMPProtocolError
	}
	return ClassifyGenericError(err)
}

// ErrHTTPUnexpectedStatusCode is the error returned when the HTTP
// response status is outside of the success and redirect ranges.
var ErrHTTPUnexpectedStatusCode = errors.New("http: unexpected status code")

// ClassifyHTTPError maps errors occurring during an HTTP round
// trip to failure strings.
func ClassifyHTTPError(err error) string {
	var errwrapper *ErrWrapper
	if errors.As(err, &errwrapper) {
		return errwrapper.Error() // we've already wrapped it
	}
	if errors.Is(err, ErrHTTPUnexpectedStatusCode) {
		return FailureHTTPUnexpectedStatusCode
	}
	return ClassifyGenericError(err)
}

// IsProtocolFailure tells whether failure is an ICMP protocol failure, as
// opposed to a timeout or an OS/network failure.
func IsProtocolFailure(failure string) bool {
	switch failure {
	case FailureICMPDestinationUnreachable, FailureICMPTTLExceeded, FailureICMPProtocolError:
		return true
	default:
		return false
	}
}

// IsTimeoutFailure tells whether failure is a timeout.
func IsTimeoutFailure(failure string) bool {
	return failure == FailureGenericTimeoutError || failure == FailureTimedOut
}
