package target

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/jheddings/safenet/internal/model"
	"github.com/jheddings/safenet/internal/model/mocks"
	"github.com/jheddings/safenet/internal/policy"
)

func newProbe(kind model.ProbeKind, available bool) *mocks.Probe {
	return &mocks.Probe{
		MockKind:    func() model.ProbeKind { return kind },
		MockAddress: func() string { return "10.0.0.1" },
		MockIsAvailable: func(ctx context.Context) *model.ProbeResult {
			return &model.ProbeResult{Available: available}
		},
	}
}

type recordingLogger struct {
	infos []string
	warns []string
}

func (rl *recordingLogger) logger() model.Logger {
	return &mocks.Logger{
		MockDebugf: func(format string, v ...any) {},
		MockInfof: func(format string, v ...any) {
			rl.infos = append(rl.infos, fmt.Sprintf(format, v...))
		},
		MockWarnf: func(format string, v ...any) {
			rl.warns = append(rl.warns, fmt.Sprintf(format, v...))
		},
	}
}

func TestNew(t *testing.T) {
	rl := &recordingLogger{}
	tg := New("gateway", newProbe(model.ProbeKindPing, true), policy.ExpectAvailable{}, rl.logger())
	if len(rl.infos) != 1 || rl.infos[0] != "initializing target: gateway" {
		t.Fatal("unexpected logs", rl.infos)
	}
	if tg.Name() != "gateway" || tg.Address() != "10.0.0.1" {
		t.Fatal("unexpected identity")
	}
	if tg.Kind() != model.ProbeKindPing || tg.Policy() != model.PolicyExpectAvailable {
		t.Fatal("unexpected kind or policy")
	}
	if tg.Last() != nil {
		t.Fatal("expected no outcome before the first check")
	}
}

// Any probe kind pairs with any policy.
func TestCheckOrthogonality(t *testing.T) {
	for _, kind := range model.AllProbeKinds {
		for _, safe := range []bool{true, false} {
			for _, available := range []bool{true, false} {
				name := fmt.Sprintf("%s/safe=%v/available=%v", kind, safe, available)
				t.Run(name, func(t *testing.T) {
					tg := New("x", newProbe(kind, available), policy.FromSafe(safe), model.DiscardLogger)
					if got := tg.Check(context.Background()); got != (safe == available) {
						t.Fatal("unexpected verdict", got)
					}
				})
			}
		}
	}
}

func TestEvaluate(t *testing.T) {
	t.Run("logs passing checks at info", func(t *testing.T) {
		rl := &recordingLogger{}
		tg := New("dns", newProbe(model.ProbeKindTCP, false), policy.ExpectBlocked{}, rl.logger())
		outcome := tg.Evaluate(context.Background())
		if !outcome.Verdict.Passed {
			t.Fatal("expected pass")
		}
		if rl.infos[len(rl.infos)-1] != "[dns] is safe" {
			t.Fatal("unexpected log", rl.infos)
		}
		if len(rl.warns) != 0 {
			t.Fatal("unexpected warnings", rl.warns)
		}
	})

	t.Run("logs failing checks at warn", func(t *testing.T) {
		rl := &recordingLogger{}
		tg := New("web", newProbe(model.ProbeKindHTTP, false), policy.ExpectAvailable{}, rl.logger())
		outcome := tg.Evaluate(context.Background())
		if outcome.Verdict.Passed {
			t.Fatal("expected failure")
		}
		if len(rl.warns) != 1 || !strings.HasSuffix(rl.warns[0], "is not available") {
			t.Fatal("unexpected warnings", rl.warns)
		}
	})

	t.Run("records the last outcome", func(t *testing.T) {
		tg := New("web", newProbe(model.ProbeKindHTTP, true), policy.ExpectAvailable{}, model.DiscardLogger)
		outcome := tg.Evaluate(context.Background())
		if tg.Last() != outcome {
			t.Fatal("unexpected last outcome")
		}
		if outcome.Name != "web" || outcome.Kind != model.ProbeKindHTTP || outcome.Policy != model.PolicyExpectAvailable {
			t.Fatal("unexpected outcome identity")
		}
	})

	t.Run("probes once per check", func(t *testing.T) {
		var calls int
		probe := newProbe(model.ProbeKindPing, true)
		probe.MockIsAvailable = func(ctx context.Context) *model.ProbeResult {
			calls++
			return &model.ProbeResult{Available: true}
		}
		tg := New("x", probe, policy.ExpectAvailable{}, model.DiscardLogger)
		tg.Check(context.Background())
		if calls != 1 {
			t.Fatal("unexpected number of probes", calls)
		}
	})
}
