// Package root contains the root command and the state shared
// by the commands needing the configuration.
package root

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/apex/log"
	"github.com/apex/log/handlers/discard"
	"github.com/apex/log/handlers/json"
	"github.com/apex/log/handlers/text"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/jheddings/safenet/internal/config"
	"github.com/jheddings/safenet/internal/log/handlers/cli"
	"github.com/jheddings/safenet/internal/version"
	pkgerrors "github.com/pkg/errors"
	"github.com/rogpeppe/go-internal/lockedfile"
)

// Cmd is the root command
var Cmd = kingpin.New("safenet", "Verify that network targets are reachable or blocked as declared.")

// Command is syntax sugar for defining sub-commands
var Command = Cmd.Command

var (
	verbose *int
	quiet   *bool
)

func init() {
	verbose = Cmd.Flag("verbose", "Increase log verbosity (repeat for debug).").Short('v').Counter()
	quiet = Cmd.Flag("quiet", "Only log errors.").Short('q').Bool()
	Cmd.HelpFlag.Short('h')

	Cmd.PreAction(func(ctx *kingpin.ParseContext) error {
		log.SetHandler(cli.Default)
		log.SetLevel(levelFromFlags(config.DefaultLogLevel))
		log.Debugf("safenet version %s", version.Version)
		return nil
	})
}

// ExitError is returned by commands to exit with a specific status
// without logging an error.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// ErrInterrupted indicates that a command was interrupted by a signal.
var ErrInterrupted = errors.New("interrupted")

// Session is the state of a command using the configuration.
type Session struct {
	// Config is the loaded configuration.
	Config *config.Config

	// Logger carries the scan_id field and is used for every
	// log line emitted by the command.
	Logger *log.Entry

	// Reporter logs the typed report events. It shares the
	// handler of Logger but is not subject to the log level.
	Reporter log.Interface

	// ScanID identifies this run.
	ScanID string

	closer io.Closer
}

// Close releases the resources used by the session.
func (s *Session) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// Init loads the configuration at path and configures logging. The
// caller owns the returned session and must close it when done.
func Init(path string) (*Session, error) {
	log.Debugf("reading config file from %s", path)
	c, err := config.ReadConfig(path)
	if err != nil {
		return nil, err
	}

	handler, closer, err := newHandler(c.Logging)
	if err != nil {
		return nil, err
	}
	log.SetHandler(handler)
	log.SetLevel(levelFromFlags(c.Logging.Level))

	reportLevel := log.InfoLevel
	if *quiet {
		reportLevel = log.ErrorLevel
	}

	scanID := uuid.Must(uuid.NewRandom()).String()
	sess := &Session{
		Config:   c,
		Logger:   log.WithField("scan_id", scanID),
		Reporter: (&log.Logger{Handler: handler, Level: reportLevel}).WithField("scan_id", scanID),
		ScanID:   scanID,
		closer:   closer,
	}
	sess.Logger.Debugf("loaded %d targets from %s", len(c.AllTargets()), c.Path())
	return sess, nil
}

// levelFromFlags returns the log level given the configured level
// and the verbosity flags, which take precedence.
func levelFromFlags(configured string) log.Level {
	switch {
	case *quiet:
		return log.ErrorLevel
	case *verbose >= 2:
		return log.DebugLevel
	case *verbose == 1:
		return log.InfoLevel
	}
	level, err := log.ParseLevel(configured)
	if err != nil {
		return log.WarnLevel
	}
	return level
}

// newHandler returns the handler for the given logging settings
// and the file to close when done, if any.
func newHandler(settings config.Logging) (log.Handler, io.Closer, error) {
	var (
		w      io.Writer = os.Stderr
		closer io.Closer
	)
	if settings.File != "" {
		f, err := lockedfile.OpenFile(settings.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, pkgerrors.Wrapf(err, "opening log file %s", settings.File)
		}
		w, closer = f, f
		color.NoColor = true
	}
	switch settings.Format {
	case "json":
		return json.New(w), closer, nil
	case "text":
		return text.New(w), closer, nil
	case "discard":
		return discard.New(), closer, nil
	default:
		return cli.New(w), closer, nil
	}
}
