package mocks

import (
	"context"
	"testing"

	"github.com/jheddings/safenet/internal/model"
)

func TestProbe(t *testing.T) {
	t.Run("Kind", func(t *testing.T) {
		p := &Probe{
			MockKind: func() model.ProbeKind {
				return model.ProbeKindTCP
			},
		}
		if p.Kind() != model.ProbeKindTCP {
			t.Fatal("unexpected kind")
		}
	})

	t.Run("Address", func(t *testing.T) {
		p := &Probe{
			MockAddress: func() string {
				return "10.0.0.1"
			},
		}
		if p.Address() != "10.0.0.1" {
			t.Fatal("unexpected address")
		}
	})

	t.Run("IsAvailable", func(t *testing.T) {
		expected := &model.ProbeResult{Available: true}
		p := &Probe{
			MockIsAvailable: func(ctx context.Context) *model.ProbeResult {
				return expected
			},
		}
		if p.IsAvailable(context.Background()) != expected {
			t.Fatal("unexpected result")
		}
	})
}

func TestPolicy(t *testing.T) {
	t.Run("Name", func(t *testing.T) {
		p := &Policy{
			MockName: func() model.PolicyName {
				return model.PolicyExpectBlocked
			},
		}
		if p.Name() != model.PolicyExpectBlocked {
			t.Fatal("unexpected name")
		}
	})

	t.Run("Evaluate", func(t *testing.T) {
		p := &Policy{
			MockEvaluate: func(available bool) model.Verdict {
				return model.Verdict{Passed: !available, Message: "antani"}
			},
		}
		if v := p.Evaluate(false); !v.Passed || v.Message != "antani" {
			t.Fatal("unexpected verdict", v)
		}
	})
}
