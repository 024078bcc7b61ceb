// Package app contains the entry point of the safenet CLI.
package app

import (
	"errors"
	"os"

	"github.com/apex/log"
	"github.com/jheddings/safenet/internal/cli/root"
	"github.com/jheddings/safenet/internal/version"
)

// ExitCodeFatal is the exit status of fatal errors.
const ExitCodeFatal = 255

// Run the app. This is the main app entry point
func Run() error {
	root.Cmd.Version(version.Version)
	_, err := root.Cmd.Parse(os.Args[1:])
	return err
}

// Main runs the app and returns the process exit status.
func Main() int {
	err := Run()
	code := ExitCode(err)
	if code == ExitCodeFatal && !errors.Is(err, root.ErrInterrupted) {
		log.WithError(err).Error("fatal error")
	}
	return code
}

// ExitCode maps the error returned by Run to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *root.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitCodeFatal
}
