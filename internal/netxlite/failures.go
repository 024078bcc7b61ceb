package netxlite

//
// Failure strings and operations.
//
// The failure strings are a subset of the OONI failure strings
// (https://github.com/ooni/spec/blob/master/data-formats/df-007-errors.md)
// extended with the ICMP and HTTP failures that safenet observes.
//

const (
	// FailureConnectionRefused means ECONNREFUSED.
	FailureConnectionRefused = "connection_refused"

	// FailureConnectionReset means ECONNRESET.
	FailureConnectionReset = "connection_reset"

	// FailureConnectionAborted means ECONNABORTED.
	FailureConnectionAborted = "connection_aborted"

	// FailureConnectionAlreadyClosed means we used a closed connection.
	FailureConnectionAlreadyClosed = "connection_already_closed"

	// FailureHostUnreachable means EHOSTUNREACH.
	FailureHostUnreachable = "host_unreachable"

	// FailureNetworkUnreachable means ENETUNREACH.
	FailureNetworkUnreachable = "network_unreachable"

	// FailureNetworkDown means ENETDOWN.
	FailureNetworkDown = "network_down"

	// FailureHostDown means EHOSTDOWN.
	FailureHostDown = "host_down"

	// FailureAddressNotAvailable means EADDRNOTAVAIL.
	FailureAddressNotAvailable = "address_not_available"

	// FailurePermissionDenied means EACCES or EPERM.
	FailurePermissionDenied = "permission_denied"

	// FailureTimedOut means ETIMEDOUT.
	FailureTimedOut = "timed_out"

	// FailureGenericTimeoutError means some timer has expired.
	FailureGenericTimeoutError = "generic_timeout_error"

	// FailureInterrupted means that the user interrupted us.
	FailureInterrupted = "interrupted"

	// FailureEOFError means we got unexpected EOF on connection.
	FailureEOFError = "eof_error"

	// FailureDNSNXDOMAINError means we got NXDOMAIN in DNS reply.
	FailureDNSNXDOMAINError = "dns_nxdomain_error"

	// FailureDNSNoAnswer means the DNS reply had no usable answer.
	FailureDNSNoAnswer = "dns_no_answer"

	// FailureDNSServerMisbehaving means the DNS server is misbehaving.
	FailureDNSServerMisbehaving = "dns_server_misbehaving"

	// FailureDNSRefusedError means the DNS server refused our query.
	FailureDNSRefusedError = "dns_refused_error"

	// FailureICMPDestinationUnreachable means we received an ICMP
	// destination unreachable message instead of an echo reply.
	FailureICMPDestinationUnreachable = "icmp_destination_unreachable"

	// FailureICMPTTLExceeded means we received an ICMP time
	// exceeded message instead of an echo reply.
	FailureICMPTTLExceeded = "icmp_ttl_exceeded"

	// FailureICMPProtocolError means we received an ICMP message
	// that we could not parse or did not expect.
	FailureICMPProtocolError = "icmp_protocol_error"

	// FailureHTTPUnexpectedStatusCode means the HTTP server replied with
	// a status code outside of the success and redirect ranges.
	FailureHTTPUnexpectedStatusCode = "http_unexpected_status_code"

	// FailureInvalidAddress means we could not parse the address to probe.
	FailureInvalidAddress = "invalid_address"
)

const (
	// ResolveOperation is the operation where we resolve a domain name.
	ResolveOperation = "resolve"

	// ConnectOperation is the operation where we do a TCP connect.
	ConnectOperation = "connect"

	// HTTPRoundTripOperation is the HTTP round trip.
	HTTPRoundTripOperation = "http_round_trip"

	// ICMPListenOperation is when we open an ICMP socket.
	ICMPListenOperation = "icmp_listen"

	// ICMPEchoOperation is an ICMP echo request/reply exchange.
	ICMPEchoOperation = "icmp_echo"

	// TopLevelOperation is used when the failure happens at top level.
	TopLevelOperation = "top_level"
)
