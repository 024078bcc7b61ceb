// Package probe implements the availability probes.
//
// A probe performs one reachability test against an address and
// returns a *model.ProbeResult. Probes never return errors: network
// failures are classified using netxlite and degrade the result to
// unavailable. Every socket a probe opens is closed before IsAvailable
// returns.
package probe

import (
	"errors"
	"time"

	"github.com/jheddings/safenet/internal/netxlite"
)

const (
	// DefaultCount is the default number of ping attempts.
	DefaultCount = 3

	// DefaultTimeout is the default timeout of a TCP or HTTP probe
	// and of each ping attempt.
	DefaultTimeout = 5 * time.Second

	// DefaultTTL is the default TTL of ping requests.
	DefaultTTL = 64

	// DefaultSize is the default payload size of ping requests.
	DefaultSize = 56
)

// timeoutOrDefault returns timeout or DefaultTimeout when it is not positive.
func timeoutOrDefault(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return DefaultTimeout
	}
	return timeout
}

// failureDetail describes a classified error for humans.
func failureDetail(err error) (failure, detail string) {
	failure = netxlite.FailureOf(err)
	var ew *netxlite.ErrWrapper
	if !errors.As(err, &ew) || ew.Operation == "" {
		return failure, failure
	}
	return failure, ew.Operation + ": " + failure
}
