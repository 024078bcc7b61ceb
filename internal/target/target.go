// Package target composes a probe and a policy into a checkable target.
package target

import (
	"context"
	"sync"
	"time"

	"github.com/jheddings/safenet/internal/model"
)

// Target is one thing to check during a scan. The zero value is
// invalid; please, use New to construct a new instance.
type Target struct {
	name   string
	logger model.Logger
	policy model.Policy
	probe  model.Probe

	mu   sync.Mutex
	last *Outcome
}

// Outcome is the outcome of checking a target once.
type Outcome struct {
	// Name is the target name.
	Name string

	// Kind is the probe kind.
	Kind model.ProbeKind

	// Address is the probed address.
	Address string

	// Policy is the policy name.
	Policy model.PolicyName

	// Result is the probe result.
	Result *model.ProbeResult

	// Verdict is the policy verdict.
	Verdict model.Verdict

	// Elapsed is the time spent checking.
	Elapsed time.Duration
}

// New creates a new Target and logs its initialization.
func New(name string, probe model.Probe, policy model.Policy, logger model.Logger) *Target {
	logger = model.ValidLoggerOrDefault(logger)
	logger.Infof("initializing target: %s", name)
	return &Target{
		name:   name,
		logger: logger,
		policy: policy,
		probe:  probe,
	}
}

// Name returns the target name.
func (t *Target) Name() string {
	return t.name
}

// Address returns the probed address.
func (t *Target) Address() string {
	return t.probe.Address()
}

// Kind returns the probe kind.
func (t *Target) Kind() model.ProbeKind {
	return t.probe.Kind()
}

// Policy returns the policy name.
func (t *Target) Policy() model.PolicyName {
	return t.policy.Name()
}

// Check probes the target once and tells whether it complies
// with its policy.
func (t *Target) Check(ctx context.Context) bool {
	return t.Evaluate(ctx).Verdict.Passed
}

// Evaluate is like Check but returns the whole outcome.
func (t *Target) Evaluate(ctx context.Context) *Outcome {
	start := time.Now()
	result := t.probe.IsAvailable(ctx)
	verdict := t.policy.Evaluate(result.Available)
	outcome := &Outcome{
		Name:    t.name,
		Kind:    t.probe.Kind(),
		Address: t.probe.Address(),
		Policy:  t.policy.Name(),
		Result:  result,
		Verdict: verdict,
		Elapsed: time.Since(start),
	}
	if verdict.Passed {
		t.logger.Infof("[%s] %s", t.name, verdict.Message)
	} else {
		t.logger.Warnf("[%s] %s", t.name, verdict.Message)
	}
	if result.Detail != "" {
		t.logger.Debugf("[%s] %s %s: %s", t.name, outcome.Kind, outcome.Address, result.Detail)
	}
	t.mu.Lock()
	t.last = outcome
	t.mu.Unlock()
	return outcome
}

// Last returns the outcome of the most recent check or nil.
func (t *Target) Last() *Outcome {
	defer t.mu.Unlock()
	t.mu.Lock()
	return t.last
}
