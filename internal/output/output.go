// Package output emits the typed log events rendered by the CLI
// log handler and serialized by the structured ones.
package output

import (
	"github.com/apex/log"
	"github.com/jheddings/safenet/internal/scanner"
	"github.com/jheddings/safenet/internal/target"
)

// SectionTitle logs a section_title event.
func SectionTitle(logger log.Interface, text string) {
	logger.WithFields(log.Fields{
		"type":  "section_title",
		"title": text,
	}).Info(text)
}

// TargetResult logs a target_result event.
func TargetResult(logger log.Interface, index, total int, outcome *target.Outcome) {
	logger.WithFields(log.Fields{
		"type":      "target_result",
		"index":     index,
		"total":     total,
		"name":      outcome.Name,
		"kind":      string(outcome.Kind),
		"address":   outcome.Address,
		"policy":    string(outcome.Policy),
		"passed":    outcome.Verdict.Passed,
		"verdict":   outcome.Verdict.Message,
		"available": outcome.Result.Available,
		"failure":   outcome.Result.Failure,
		"detail":    outcome.Result.Detail,
		"elapsed":   outcome.Elapsed.Seconds(),
	}).Info("target result")
}

// ScanSummary logs a scan_summary event.
func ScanSummary(logger log.Interface, result *scanner.Result) {
	logger.WithFields(log.Fields{
		"type":        "scan_summary",
		"total":       result.Total,
		"checked":     result.Checked,
		"failed":      result.Failed,
		"skipped":     result.Skipped,
		"interrupted": result.Interrupted,
		"duration":    result.Duration.Seconds(),
	}).Info("scan summary")
}

// ScanReport logs the section title, the result of each checked
// target in declaration order, and the summary.
func ScanReport(logger log.Interface, result *scanner.Result) {
	SectionTitle(logger, "Scan results")
	for idx, outcome := range result.Outcomes {
		if outcome == nil {
			continue
		}
		TargetResult(logger, idx, result.Total, outcome)
	}
	ScanSummary(logger, result)
}
