package root

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/apex/log"
	"github.com/apex/log/handlers/json"
	"github.com/jheddings/safenet/internal/config"
	"github.com/jheddings/safenet/internal/log/handlers/cli"
)

func TestLevelFromFlags(t *testing.T) {
	defer func(v int, q bool) { *verbose, *quiet = v, q }(*verbose, *quiet)

	cases := []struct {
		name       string
		verbose    int
		quiet      bool
		configured string
		expect     log.Level
	}{
		{"configured level", 0, false, "error", log.ErrorLevel},
		{"invalid configured level", 0, false, "chatty", log.WarnLevel},
		{"verbose once", 1, false, "warn", log.InfoLevel},
		{"verbose twice", 2, false, "warn", log.DebugLevel},
		{"quiet wins", 2, true, "debug", log.ErrorLevel},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			*verbose, *quiet = tc.verbose, tc.quiet
			if got := levelFromFlags(tc.configured); got != tc.expect {
				t.Fatal("unexpected level", got)
			}
		})
	}
}

func TestNewHandler(t *testing.T) {
	t.Run("defaults to the cli handler", func(t *testing.T) {
		handler, closer, err := newHandler(config.Logging{Format: "cli"})
		if err != nil || closer != nil {
			t.Fatal(err, closer)
		}
		if _, ok := handler.(*cli.Handler); !ok {
			t.Fatalf("unexpected handler %T", handler)
		}
	})

	t.Run("writes to a log file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "safenet.log")
		handler, closer, err := newHandler(config.Logging{Format: "json", File: path})
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := handler.(*json.Handler); !ok {
			t.Fatalf("unexpected handler %T", handler)
		}
		logger := &log.Logger{Handler: handler, Level: log.InfoLevel}
		logger.WithField("scan_id", "abc").Info("hello")
		if err := closer.Close(); err != nil {
			t.Fatal(err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), `"message":"hello"`) {
			t.Fatal("unexpected log file", string(data))
		}
	})

	t.Run("with an unwritable log file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "safenet.log")
		_, _, err := newHandler(config.Logging{File: path})
		if !errors.Is(err, os.ErrNotExist) {
			t.Fatal("unexpected error", err)
		}
	})
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "safenet.yaml")
	doc := "logging:\n  format: discard\nsystems:\n  - name: gateway\n    address: 127.0.0.1\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	sess, err := Init(path)
	if err != nil {
		t.Fatal(err)
	}
	defer sess.Close()
	if len(sess.ScanID) != 36 || sess.Logger.Fields["scan_id"] != sess.ScanID {
		t.Fatal("unexpected scan id", sess.ScanID)
	}
	if len(sess.Config.Systems) != 1 {
		t.Fatal("unexpected config")
	}
}
