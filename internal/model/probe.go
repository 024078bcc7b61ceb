package model

//
// Probes, policies and the values they exchange.
//

import (
	"context"
	"time"
)

// ProbeKind identifies how a target is probed.
type ProbeKind string

const (
	// ProbeKindPing probes using ICMP echo requests.
	ProbeKindPing = ProbeKind("ping")

	// ProbeKindTCP probes using a TCP connect.
	ProbeKindTCP = ProbeKind("tcp")

	// ProbeKindHTTP probes using an HTTP HEAD request.
	ProbeKindHTTP = ProbeKind("http")
)

// AllProbeKinds lists the supported probe kinds.
var AllProbeKinds = []ProbeKind{ProbeKindPing, ProbeKindTCP, ProbeKindHTTP}

// ProbeResult is the transient result of running a probe once.
type ProbeResult struct {
	// Available is true when the endpoint responded.
	Available bool

	// Detail is a human readable description of what happened.
	Detail string

	// Failure is the classified failure string (e.g., connection_refused)
	// or the empty string when the endpoint was available.
	Failure string

	// Elapsed is the time spent probing.
	Elapsed time.Duration

	// Ping contains the ping statistics. It is nil unless the
	// result has been produced by a ping probe.
	Ping *PingStats
}

// PingStats contains diagnostics about a multi-attempt ping. The
// round trip statistics only consider successful attempts.
type PingStats struct {
	Sent      int
	Received  int
	MinRTT    time.Duration
	AvgRTT    time.Duration
	MaxRTT    time.Duration
	StdDevRTT time.Duration

	// Failures contains the failure of each attempt or the empty
	// string for attempts that received a reply.
	Failures []string

	// Timeouts, ProtocolErrors and NetworkErrors count the failed
	// attempts by class. Interrupted attempts are not counted.
	Timeouts       int
	ProtocolErrors int
	NetworkErrors  int
}

// Probe determines whether a network endpoint currently responds.
//
// Implementations MUST NOT return network errors to the caller: any
// failure degrades the result to unavailable. Every resource opened
// by IsAvailable MUST be released before it returns.
type Probe interface {
	// Kind returns the probe kind.
	Kind() ProbeKind

	// Address returns the probed address (host, IP or URL).
	Address() string

	// IsAvailable probes the endpoint once.
	IsAvailable(ctx context.Context) *ProbeResult
}

// Verdict is the outcome of evaluating a policy.
type Verdict struct {
	// Passed is true when the observed state matches the policy.
	Passed bool

	// Message is the classification (e.g., "is safe").
	Message string
}

// PolicyName names a policy.
type PolicyName string

const (
	// PolicyExpectAvailable is the policy of "safe" targets.
	PolicyExpectAvailable = PolicyName("expect-available")

	// PolicyExpectBlocked is the policy of "unsafe" targets.
	PolicyExpectBlocked = PolicyName("expect-blocked")
)

// Policy interprets a probe's availability.
type Policy interface {
	// Name returns the policy name.
	Name() PolicyName

	// Evaluate converts availability into a verdict.
	Evaluate(available bool) Verdict
}
