// Package run implements the run command.
package run

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/jheddings/safenet/internal/cli/root"
	"github.com/jheddings/safenet/internal/metrics"
	"github.com/jheddings/safenet/internal/output"
	"github.com/jheddings/safenet/internal/scanner"
	"github.com/jheddings/safenet/internal/target"
	"github.com/jheddings/safenet/internal/targetloading"
	pkgerrors "github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
)

// maxFailuresExitCode is the largest exit status used to report
// failures, since 255 is reserved for fatal errors.
const maxFailuresExitCode = 254

// Options contains the run command options.
type Options struct {
	ConfigPath  string
	Parallel    int
	MetricsFile string
	Progress    bool
}

func init() {
	cmd := root.Command("run", "Check every target and report policy violations.").Alias("check")
	opts := &Options{}
	cmd.Flag("config", "Path to the configuration file.").Short('f').
		Default("safenet.yaml").Envar("SAFENET_CONFIG").StringVar(&opts.ConfigPath)
	cmd.Flag("parallel", "Number of targets checked at the same time (overrides scan.parallelism).").
		IntVar(&opts.Parallel)
	cmd.Flag("metrics-file", "Write Prometheus metrics to this file after the scan.").
		StringVar(&opts.MetricsFile)
	cmd.Flag("progress", "Show a progress bar while scanning.").BoolVar(&opts.Progress)

	cmd.Action(func(_ *kingpin.ParseContext) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return Run(ctx, opts)
	})
}

// Run loads the configuration, checks every target and returns an
// error carrying the exit status when any target failed.
func Run(ctx context.Context, opts *Options) error {
	sess, err := root.Init(opts.ConfigPath)
	if err != nil {
		return err
	}
	defer sess.Close()
	logger := sess.Logger

	loader := &targetloading.Loader{Config: sess.Config, Logger: logger}
	targets, err := loader.Load()
	if err != nil {
		return pkgerrors.Wrap(err, "loading targets")
	}

	parallelism := sess.Config.Scan.Parallelism
	if opts.Parallel > 0 {
		parallelism = opts.Parallel
	}
	s := &scanner.Scanner{Parallelism: parallelism, Logger: logger}

	var collector *metrics.Collector
	if opts.MetricsFile != "" {
		collector = metrics.NewCollector()
		s.Observers = append(s.Observers, collector)
	}
	if opts.Progress {
		bar := newProgressBar(len(targets))
		defer bar.Finish()
		s.Observers = append(s.Observers, scanner.ObserverFunc(func(int, int, *target.Outcome) {
			bar.Add(1)
		}))
	}

	result := s.Run(ctx, targets)
	output.ScanReport(sess.Reporter, result)

	if collector != nil {
		collector.ObserveScan(result)
		if err := collector.WriteToTextfile(opts.MetricsFile); err != nil {
			return pkgerrors.Wrapf(err, "writing metrics to %s", opts.MetricsFile)
		}
		logger.Debugf("metrics written to %s", opts.MetricsFile)
	}

	if result.Interrupted {
		logger.Warnf("scan interrupted")
	}
	return resultToError(result)
}

// resultToError maps the result of a scan to the error returned by
// the command, which determines the process exit status.
func resultToError(result *scanner.Result) error {
	switch {
	case result.Interrupted:
		return root.ErrInterrupted
	case result.Failed > 0:
		return &root.ExitError{Code: min(result.Failed, maxFailuresExitCode)}
	default:
		return nil
	}
}

func newProgressBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(
		total,
		progressbar.OptionSetDescription("scanning"),
		progressbar.OptionShowDescriptionAtLineEnd(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetWriter(os.Stderr),
	)
}
