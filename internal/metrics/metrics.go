// Package metrics exports scan results as Prometheus metrics.
package metrics

//
// Metrics definitions
//

import (
	"strconv"

	"github.com/jheddings/safenet/internal/scanner"
	"github.com/jheddings/safenet/internal/target"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector collects the metrics of a scan into its own registry.
type Collector struct {
	registry *prometheus.Registry

	// targetsTotal gauges the number of declared targets.
	targetsTotal prometheus.Gauge

	// targetsFailed gauges the number of targets violating their policy.
	targetsFailed prometheus.Gauge

	// targetsSkipped gauges the number of targets not checked.
	targetsSkipped prometheus.Gauge

	// targetCompliant is 1 when a target complies with its policy.
	targetCompliant *prometheus.GaugeVec

	// targetAvailable is 1 when a target's endpoint responded.
	targetAvailable *prometheus.GaugeVec

	// probeDurationSeconds gauges the time spent probing a target.
	probeDurationSeconds *prometheus.GaugeVec

	// scanDurationSeconds gauges the duration of the whole scan.
	scanDurationSeconds prometheus.Gauge
}

var _ scanner.Observer = &Collector{}

// NewCollector creates a new Collector with an empty registry.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &Collector{
		registry: registry,
		targetsTotal: factory.NewGauge(prometheus.GaugeOpts{
			Name: "safenet_targets_total",
			Help: "Number of declared targets",
		}),
		targetsFailed: factory.NewGauge(prometheus.GaugeOpts{
			Name: "safenet_targets_failed",
			Help: "Number of targets violating their policy",
		}),
		targetsSkipped: factory.NewGauge(prometheus.GaugeOpts{
			Name: "safenet_targets_skipped",
			Help: "Number of targets not checked because the scan was interrupted",
		}),
		targetCompliant: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "safenet_target_compliant",
			Help: "Whether the target complies with its policy (1) or not (0)",
		}, []string{"index", "target", "kind", "policy"}),
		targetAvailable: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "safenet_target_available",
			Help: "Whether the target responded (1) or not (0)",
		}, []string{"index", "target", "kind"}),
		probeDurationSeconds: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "safenet_probe_duration_seconds",
			Help: "Time spent probing the target (in seconds)",
		}, []string{"index", "target", "kind"}),
		scanDurationSeconds: factory.NewGauge(prometheus.GaugeOpts{
			Name: "safenet_scan_duration_seconds",
			Help: "Time spent scanning all the targets (in seconds)",
		}),
	}
}

// Registry returns the registry containing the metrics.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// OnTargetDone implements scanner.Observer.
//
// Series carry the declaration index since target names may repeat.
func (c *Collector) OnTargetDone(index, total int, outcome *target.Outcome) {
	idx := strconv.Itoa(index)
	kind := string(outcome.Kind)
	c.targetCompliant.WithLabelValues(idx, outcome.Name, kind, string(outcome.Policy)).Set(boolToFloat(outcome.Verdict.Passed))
	c.targetAvailable.WithLabelValues(idx, outcome.Name, kind).Set(boolToFloat(outcome.Result.Available))
	c.probeDurationSeconds.WithLabelValues(idx, outcome.Name, kind).Set(outcome.Elapsed.Seconds())
}

// ObserveScan records the totals of a completed scan.
func (c *Collector) ObserveScan(result *scanner.Result) {
	c.targetsTotal.Set(float64(result.Total))
	c.targetsFailed.Set(float64(result.Failed))
	c.targetsSkipped.Set(float64(result.Skipped))
	c.scanDurationSeconds.Set(result.Duration.Seconds())
}

// WriteToTextfile writes the metrics in the text exposition format
// used by the node_exporter textfile collector.
func (c *Collector) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}

func boolToFloat(v bool) float64 {
	if v {
		return 1
	}
	return 0
}
