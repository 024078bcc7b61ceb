// Package policy implements the safety policies.
//
// A policy interprets the availability reported by a probe and
// never probes anything itself, so any probe pairs with any policy.
package policy

import "github.com/jheddings/safenet/internal/model"

// ExpectAvailable is the policy of targets that must respond.
type ExpectAvailable struct{}

var _ model.Policy = ExpectAvailable{}

// Name implements model.Policy.
func (ExpectAvailable) Name() model.PolicyName {
	return model.PolicyExpectAvailable
}

// Evaluate implements model.Policy.
func (ExpectAvailable) Evaluate(available bool) model.Verdict {
	if available {
		return model.Verdict{Passed: true, Message: "is available"}
	}
	return model.Verdict{Passed: false, Message: "is not available"}
}

// ExpectBlocked is the policy of targets that must not respond.
type ExpectBlocked struct{}

var _ model.Policy = ExpectBlocked{}

// Name implements model.Policy.
func (ExpectBlocked) Name() model.PolicyName {
	return model.PolicyExpectBlocked
}

// Evaluate implements model.Policy.
func (ExpectBlocked) Evaluate(available bool) model.Verdict {
	if available {
		return model.Verdict{Passed: false, Message: "is not safe"}
	}
	return model.Verdict{Passed: true, Message: "is safe"}
}

// FromSafe returns the policy selected by the safe flag of a
// target declaration.
func FromSafe(safe bool) model.Policy {
	if safe {
		return ExpectAvailable{}
	}
	return ExpectBlocked{}
}
