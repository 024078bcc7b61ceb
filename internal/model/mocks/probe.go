package mocks

import (
	"context"

	"github.com/jheddings/safenet/internal/model"
)

// Probe is a mockable Probe.
type Probe struct {
	MockKind        func() model.ProbeKind
	MockAddress     func() string
	MockIsAvailable func(ctx context.Context) *model.ProbeResult
}

// Kind calls MockKind.
func (p *Probe) Kind() model.ProbeKind {
	return p.MockKind()
}

// Address calls MockAddress.
func (p *Probe) Address() string {
	return p.MockAddress()
}

// IsAvailable calls MockIsAvailable.
func (p *Probe) IsAvailable(ctx context.Context) *model.ProbeResult {
	return p.MockIsAvailable(ctx)
}

// Policy is a mockable Policy.
type Policy struct {
	MockName     func() model.PolicyName
	MockEvaluate func(available bool) model.Verdict
}

// Name calls MockName.
func (p *Policy) Name() model.PolicyName {
	return p.MockName()
}

// Evaluate calls MockEvaluate.
func (p *Policy) Evaluate(available bool) model.Verdict {
	return p.MockEvaluate(available)
}

var (
	_ model.Probe  = &Probe{}
	_ model.Policy = &Policy{}
)
