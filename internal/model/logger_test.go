package model

import (
	"io"
	"testing"

	"github.com/apex/log"
)

func TestDiscardLoggerWorksAsIntended(t *testing.T) {
	logger := DiscardLogger
	logger.Debug("foo")
	logger.Debugf("%s", "foo")
	logger.Info("foo")
	logger.Infof("%s", "foo")
	logger.Warn("foo")
	logger.Warnf("%s", "foo")
}

func TestApexLoggersAreLoggers(t *testing.T) {
	var _ Logger = log.Log
	var _ Logger = log.WithField("scan_id", "xo")
}

func TestErrorToStringOrOK(t *testing.T) {
	t.Run("on success", func(t *testing.T) {
		if ErrorToStringOrOK(nil) != "ok" {
			t.Fatal("expected ok")
		}
	})

	t.Run("on failure", func(t *testing.T) {
		err := io.EOF
		if got := ErrorToStringOrOK(err); got != err.Error() {
			t.Fatal("not the result we expected", got)
		}
	})
}

func TestValidLoggerOrDefault(t *testing.T) {
	t.Run("with nil logger", func(t *testing.T) {
		if ValidLoggerOrDefault(nil) != DiscardLogger {
			t.Fatal("expected the discard logger")
		}
	})

	t.Run("with valid logger", func(t *testing.T) {
		if ValidLoggerOrDefault(log.Log) != log.Log {
			t.Fatal("expected the same logger")
		}
	})
}
